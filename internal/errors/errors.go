package errors

import (
	"errors"
	"fmt"
	"time"
)

// FramePumpError is the base interface for all frame pump errors.
type FramePumpError interface {
	error
	IsFramePumpError() bool
}

// Compile-time verification that all error types implement FramePumpError.
var (
	_ FramePumpError = (*SpawnError)(nil)
	_ FramePumpError = (*TimeoutError)(nil)
	_ FramePumpError = (*ReassemblyError)(nil)
	_ FramePumpError = (*PumpError)(nil)
	_ FramePumpError = (*ExitError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrAlreadyRunning indicates Start was called on a pump that is not idle.
	ErrAlreadyRunning = errors.New("pump already running")

	// ErrNotStarted indicates Join was called on a pump that was never started.
	ErrNotStarted = errors.New("pump not started")

	// ErrStdoutClaimed indicates the process stdout is already consumed by
	// a pump or by Communicate. Stdout has exactly one reader.
	ErrStdoutClaimed = errors.New("process stdout already claimed")

	// ErrStreamNotPiped indicates an operation needs a stream that was not
	// configured with StreamPipe.
	ErrStreamNotPiped = errors.New("stream not piped")

	// ErrInvalidFrameSize indicates a frame size that is not a positive integer.
	ErrInvalidFrameSize = errors.New("frame size must be positive")

	// ErrTimeout is matched by every *TimeoutError via errors.Is.
	ErrTimeout = errors.New("timeout")

	// ErrInvalidSpec indicates a pipeline spec failed validation.
	ErrInvalidSpec = errors.New("invalid pipeline spec")
)

// SpawnError indicates the executable could not be found or the OS refused
// to create the process. No handle is returned alongside it.
type SpawnError struct {
	Name          string
	SearchedPaths []string
	Err           error
}

func (e *SpawnError) Error() string {
	if len(e.SearchedPaths) > 0 {
		if e.Err == nil {
			return fmt.Sprintf("spawn %s: not found in %v", e.Name, e.SearchedPaths)
		}

		return fmt.Sprintf("spawn %s: %v (searched %v)", e.Name, e.Err, e.SearchedPaths)
	}

	return fmt.Sprintf("spawn %s: %v", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsFramePumpError implements FramePumpError.
func (e *SpawnError) IsFramePumpError() bool { return true }

// TimeoutError indicates a caller deadline elapsed before the operation
// finished. The process is left running.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s: timed out after %s", e.Op, e.Timeout)
	}

	return fmt.Sprintf("%s: timed out", e.Op)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// IsFramePumpError implements FramePumpError.
func (e *TimeoutError) IsFramePumpError() bool { return true }

// ReassemblyError reports a chunk that, combined with the pending
// remainder, exceeds one frame. It is a programming defect in the reader
// and is never truncated away.
type ReassemblyError struct {
	FrameSize int
	Remainder int
	Chunk     int
}

func (e *ReassemblyError) Error() string {
	return fmt.Sprintf(
		"reassembly invariant violated: remainder %d + chunk %d exceeds frame size %d",
		e.Remainder, e.Chunk, e.FrameSize,
	)
}

// IsFramePumpError implements FramePumpError.
func (e *ReassemblyError) IsFramePumpError() bool { return true }

// PumpError wraps a failure captured on a pump goroutine, including errors
// and panics raised by the frame handler.
type PumpError struct {
	PumpID string
	Frames uint64
	Err    error
}

func (e *PumpError) Error() string {
	return fmt.Sprintf("pump %s failed after %d frames: %v", e.PumpID, e.Frames, e.Err)
}

func (e *PumpError) Unwrap() error {
	return e.Err
}

// IsFramePumpError implements FramePumpError.
func (e *PumpError) IsFramePumpError() bool { return true }

// ExitError indicates the child process exited with a non-zero status.
//
// Code semantics: positive = exit status, negative = terminated by that signal.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("process exited with code %d: %v", e.Code, e.Err)
	}

	return fmt.Sprintf("process exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// IsFramePumpError implements FramePumpError.
func (e *ExitError) IsFramePumpError() bool { return true }
