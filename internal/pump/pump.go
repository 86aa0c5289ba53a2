package pump

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/frame-pump-go/internal/errors"
	"github.com/wagiedev/frame-pump-go/internal/frame"
)

// Source is the side of a child process a pump needs: its stdout, claimed
// exclusively, and a non-blocking exit check.
type Source interface {
	// ClaimStdout returns stdout to its single consumer.
	ClaimStdout() (io.ReadCloser, error)

	// Poll reports whether the process has exited. It must not block.
	Poll() (int, bool)
}

// State is the lifecycle stage of a Pump.
type State int32

const (
	// StateIdle is a constructed pump that has not been started.
	StateIdle State = iota
	// StateRunning is a pump reading while the process is alive.
	StateRunning
	// StateDraining is a pump reading what is left after the process exited.
	StateDraining
	// StateStopped is a pump whose goroutine has returned.
	StateStopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Stats are the pump's counters. They may be read while the pump runs.
type Stats struct {
	// Frames is the number of frames the handler accepted.
	Frames uint64
	// BytesRead is the number of bytes read from stdout.
	BytesRead uint64
	// DroppedBytes is the length of the truncated tail discarded at end of
	// stream.
	DroppedBytes uint64
}

// Pump moves bytes from a Source's stdout through a frame.Reassembler to a
// frame.Handler on its own goroutine.
type Pump struct {
	log     *slog.Logger
	id      string
	src     Source
	stdout  io.ReadCloser
	asm     *frame.Reassembler
	handler frame.Handler
	sink    frame.Handler // handler plus frame counting

	state atomic.Int32
	done  chan struct{}
	errs  errorSlot

	frames    atomic.Uint64
	bytesRead atomic.Uint64
	dropped   atomic.Uint64
}

// New binds a pump to src for frames of frameSize bytes.
//
// It claims src's stdout immediately, so a second pump over the same
// process fails with errors.ErrStdoutClaimed. The pump does not own the
// process; stopping early means terminating or killing it.
func New(log *slog.Logger, src Source, frameSize int, handler frame.Handler) (*Pump, error) {
	if handler == nil {
		return nil, fmt.Errorf("new pump: nil frame handler")
	}

	asm, err := frame.New(frameSize)
	if err != nil {
		return nil, fmt.Errorf("new pump: %w", err)
	}

	stdout, err := src.ClaimStdout()
	if err != nil {
		return nil, fmt.Errorf("new pump: %w", err)
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	id := ulid.Make().String()

	p := &Pump{
		log:     log.With("component", "pump", "pump_id", id, "frame_size", frameSize),
		id:      id,
		src:     src,
		stdout:  stdout,
		asm:     asm,
		handler: handler,
		done:    make(chan struct{}),
	}
	p.sink = frame.HandlerFunc(p.deliver)

	return p, nil
}

// ID returns the identifier used to correlate this pump in logs and errors.
func (p *Pump) ID() string { return p.id }

// FrameSize returns the frame size in bytes.
func (p *Pump) FrameSize() int { return p.asm.Size() }

// State returns the current lifecycle stage.
func (p *Pump) State() State {
	return State(p.state.Load())
}

// Start launches the pump goroutine. It fails with errors.ErrAlreadyRunning
// unless the pump is idle.
func (p *Pump) Start() error {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return errors.ErrAlreadyRunning
	}

	p.log.Info("Pump started")

	go p.run()

	return nil
}

// IsAlive reports whether the pump goroutine is running or draining.
func (p *Pump) IsAlive() bool {
	switch p.State() {
	case StateRunning, StateDraining:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed when the pump goroutine returns.
func (p *Pump) Done() <-chan struct{} { return p.done }

// Join waits for the pump goroutine to return. A timeout <= 0 waits
// indefinitely; an elapsed timeout returns *errors.TimeoutError. Join does
// not report the pump's own failure; call Err afterwards.
func (p *Pump) Join(timeout time.Duration) error {
	if p.State() == StateIdle {
		return errors.ErrNotStarted
	}

	if timeout <= 0 {
		<-p.done

		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-timer.C:
		return &errors.TimeoutError{Op: "join", Timeout: timeout}
	}
}

// Err returns the failure captured on the pump goroutine as a
// *errors.PumpError, or nil. Every call returns the same error. It is only
// conclusive after Join has returned.
func (p *Pump) Err() error {
	return p.errs.get()
}

// Stats returns a snapshot of the pump's counters.
func (p *Pump) Stats() Stats {
	return Stats{
		Frames:       p.frames.Load(),
		BytesRead:    p.bytesRead.Load(),
		DroppedBytes: p.dropped.Load(),
	}
}

// deliver forwards one frame to the handler and counts it.
func (p *Pump) deliver(data []byte) error {
	if err := p.handler.OnFrame(data); err != nil {
		return fmt.Errorf("frame handler: %w", err)
	}

	p.frames.Add(1)

	return nil
}

// run is the pump goroutine. The error is stored before the state becomes
// stopped and before done is closed, so Join observes it.
func (p *Pump) run() {
	defer func() {
		if r := recover(); r != nil {
			p.fail(fmt.Errorf("panic: %v", r))
		}

		// Unblocks a child still writing after a failure.
		_ = p.stdout.Close()

		p.state.Store(int32(StateStopped))

		stats := p.Stats()
		p.log.Info("Pump stopped",
			"frames", stats.Frames,
			"bytes_read", stats.BytesRead,
			"dropped_bytes", stats.DroppedBytes,
		)

		close(p.done)
	}()

	if err := p.pump(); err != nil {
		p.fail(err)
	}
}

func (p *Pump) pump() error {
	buf := make([]byte, p.asm.Size())

	for {
		if code, exited := p.src.Poll(); exited {
			p.log.Debug("Process exited, draining", "exit_code", code)

			break
		}

		need := p.asm.Need()

		n, err := p.stdout.Read(buf[:need])
		if n < 0 || n > need {
			return &errors.ReassemblyError{FrameSize: p.asm.Size(), Remainder: p.asm.Pending(), Chunk: n}
		}

		if n > 0 {
			p.bytesRead.Add(uint64(n))

			if err := p.asm.Receive(buf[:n], p.sink); err != nil {
				return err
			}
		}

		if stderrors.Is(err, io.EOF) {
			p.log.Debug("Stdout reached EOF, draining")

			break
		}

		if err != nil {
			return fmt.Errorf("read stdout: %w", err)
		}
	}

	p.state.Store(int32(StateDraining))

	rest, err := io.ReadAll(p.stdout)
	if err != nil {
		return fmt.Errorf("drain stdout: %w", err)
	}

	p.bytesRead.Add(uint64(len(rest)))

	dropped, err := p.asm.Flush(rest, p.sink)
	p.dropped.Store(uint64(dropped))

	if dropped > 0 {
		p.log.Warn("Dropped truncated trailing frame", "dropped_bytes", dropped)
	}

	return err
}

// fail stores err in the error slot as a *errors.PumpError. Only the first
// failure is kept.
func (p *Pump) fail(err error) {
	pumpErr := &errors.PumpError{PumpID: p.id, Frames: p.frames.Load(), Err: err}

	if p.errs.set(pumpErr) {
		p.log.Error("Pump failed", "error", err)
	}
}
