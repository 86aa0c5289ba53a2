package framepump

import "github.com/wagiedev/frame-pump-go/internal/errors"

// Re-export error types from internal package

// SpawnError indicates the executable was not found or could not be started.
type SpawnError = errors.SpawnError

// TimeoutError indicates a wait, join or communicate deadline elapsed.
type TimeoutError = errors.TimeoutError

// ReassemblyError indicates a reader returned more bytes than a frame can hold.
type ReassemblyError = errors.ReassemblyError

// PumpError wraps a failure captured on a pump goroutine.
type PumpError = errors.PumpError

// ExitError indicates the child exited with a non-zero status.
type ExitError = errors.ExitError

// FramePumpError is the base interface for all frame pump errors.
type FramePumpError = errors.FramePumpError

// Re-export sentinel errors from internal package.
var (
	// ErrAlreadyRunning indicates Start was called on a pump that is not idle.
	ErrAlreadyRunning = errors.ErrAlreadyRunning

	// ErrNotStarted indicates Join was called on a pump that was never started.
	ErrNotStarted = errors.ErrNotStarted

	// ErrStdoutClaimed indicates the process stdout already has a consumer.
	ErrStdoutClaimed = errors.ErrStdoutClaimed

	// ErrStreamNotPiped indicates an operation needs a stream that is not piped.
	ErrStreamNotPiped = errors.ErrStreamNotPiped

	// ErrInvalidFrameSize indicates a frame size that is not positive.
	ErrInvalidFrameSize = errors.ErrInvalidFrameSize

	// ErrTimeout is matched by every TimeoutError.
	ErrTimeout = errors.ErrTimeout

	// ErrInvalidSpec indicates a pipeline spec failed validation.
	ErrInvalidSpec = errors.ErrInvalidSpec
)
