package framepump

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/frame-pump-go/internal/errors"
	"github.com/wagiedev/frame-pump-go/internal/process"
	"github.com/wagiedev/frame-pump-go/internal/pump"
)

const (
	// maxStderrLineSize is the longest stderr line handed to a StderrCallback.
	maxStderrLineSize = 1024 * 1024 // 1MB
	// maxStderrTailSize bounds the stderr tail attached to an ExitError.
	maxStderrTailSize = 64 * 1024 // 64KB
)

// Result summarizes a finished Run.
type Result struct {
	// ExitCode is the child's exit code. A child killed by a signal on
	// POSIX reports the negated signal number.
	ExitCode int
	// Frames is the number of frames the handler accepted.
	Frames uint64
	// DroppedBytes is the length of the truncated tail discarded at the end
	// of the stream.
	DroppedBytes uint64
}

// Run spawns name, pumps its stdout to handler in frames of frameSize bytes
// and waits for both to finish.
//
// Cancelling ctx terminates the child, then kills it once the grace period
// (WithGracePeriod) elapses. A handler failure stops the child the same
// way. The returned error is, in order of precedence: the pump's
// *PumpError, a wait failure, ctx.Err(), or an *ExitError for a non-zero
// exit code. A non-nil Result accompanies every error raised after spawn.
//
// A piped stderr is always drained while Run is active. Each line goes to
// the StderrCallback if one is set, and the last lines are attached to the
// *ExitError.
//
// Example usage:
//
//	res, err := framepump.Run(ctx, "ffmpeg", args, 640*480*3,
//	    framepump.FrameHandlerFunc(func(frame []byte) error {
//	        return display.Upload(frame)
//	    }),
//	    framepump.WithLogger(log),
//	)
func Run(
	ctx context.Context,
	name string,
	args []string,
	frameSize int,
	handler FrameHandler,
	opts ...Option,
) (*Result, error) {
	return run(ctx, name, args, frameSize, handler, applyOptions(opts))
}

// RunSpec is Run driven by a pipeline spec. Spec fields take precedence
// over the matching opts.
func RunSpec(ctx context.Context, spec *PipelineSpec, handler FrameHandler, opts ...Option) (*Result, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spec", ErrInvalidSpec)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	options := applyOptions(opts)
	spec.Apply(options)

	return run(ctx, spec.Executable, spec.Args, spec.ResolvedFrameSize(), handler, options)
}

func run(
	ctx context.Context,
	name string,
	args []string,
	frameSize int,
	handler FrameHandler,
	options *Options,
) (*Result, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if frameSize <= 0 {
		return nil, fmt.Errorf("run %s: %w", name, ErrInvalidFrameSize)
	}

	if options.StderrCallback != nil {
		options.Stderr = StreamPipe
	}

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	options.Logger = log

	proc, err := process.Spawn(ctx, name, args, options)
	if err != nil {
		return nil, err
	}

	defer func() {
		if closeErr := proc.Close(); closeErr != nil {
			log.Warn("failed to close process pipes", "error", closeErr)
		}
	}()

	p, err := pump.New(log, proc, frameSize, handler)
	if err != nil {
		_ = proc.Kill()
		_, _ = proc.Wait(0)

		return nil, err
	}

	var (
		g    errgroup.Group
		tail stderrTail
	)

	// A child blocks once a piped stderr fills up, so it is read even
	// without a callback.
	if stderr := proc.Stderr(); stderr != nil {
		g.Go(func() error {
			drainStderr(log, stderr, options.StderrCallback, &tail)

			return nil
		})
	}

	if err := p.Start(); err != nil {
		_ = proc.Kill()
		_, _ = proc.Wait(0)

		return nil, err
	}

	code, waitErr := supervise(ctx, log, proc, p, options.EffectiveGracePeriod())

	// The child is gone, so its end of stdout is closed and the pump ends
	// once it has drained the pipe.
	_ = p.Join(0)
	_ = g.Wait()

	stats := p.Stats()
	result := &Result{
		ExitCode:     code,
		Frames:       stats.Frames,
		DroppedBytes: stats.DroppedBytes,
	}

	switch {
	case p.Err() != nil:
		return result, p.Err()
	case waitErr != nil:
		return result, waitErr
	case ctx.Err() != nil:
		return result, ctx.Err()
	case code != 0:
		return result, &errors.ExitError{Code: code, Err: tail.err()}
	}

	return result, nil
}

// supervise waits for the child to exit. A cancelled context or a failed
// pump stops it first.
func supervise(
	ctx context.Context,
	log *slog.Logger,
	proc *process.Process,
	p *pump.Pump,
	grace time.Duration,
) (int, error) {
	pumpDone := p.Done()

	for {
		select {
		case <-proc.Done():
			return proc.Wait(0)
		case <-pumpDone:
			pumpDone = nil

			if p.Err() != nil {
				log.Warn("Pump failed, stopping process", "pid", proc.PID())

				return stop(log, proc, grace)
			}
		case <-ctx.Done():
			log.Info("Context cancelled, stopping process", "pid", proc.PID())

			return stop(log, proc, grace)
		}
	}
}

// stop terminates proc and kills it if it outlives grace.
func stop(log *slog.Logger, proc *process.Process, grace time.Duration) (int, error) {
	if err := proc.Terminate(); err != nil {
		log.Warn("Failed to terminate process", "error", err)
	}

	code, err := proc.Wait(grace)
	if !stderrors.Is(err, errors.ErrTimeout) {
		return code, err
	}

	log.Warn("Process outlived grace period, killing", "grace_period", grace)

	if err := proc.Kill(); err != nil {
		return -1, fmt.Errorf("kill process: %w", err)
	}

	return proc.Wait(0)
}

// drainStderr reads stderr until the pipe closes, recording each line in
// tail and handing it to fn when fn is set.
func drainStderr(log *slog.Logger, stderr io.Reader, fn func(string), tail *stderrTail) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStderrLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		tail.add(line)

		if fn != nil {
			fn(line)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Debug("Stderr scanner error", "error", err)

		// An oversized line stops the scanner; the pipe must still drain.
		_, _ = io.Copy(io.Discard, stderr)
	}
}

// stderrTail keeps roughly the last maxStderrTailSize bytes of stderr.
type stderrTail struct {
	buf []byte
}

func (t *stderrTail) add(line string) {
	t.buf = append(t.buf, line...)
	t.buf = append(t.buf, '\n')

	if len(t.buf) > 2*maxStderrTailSize {
		t.buf = append([]byte(nil), t.buf[len(t.buf)-maxStderrTailSize:]...)
	}
}

// err returns the tail as an error, or nil if stderr was empty.
func (t *stderrTail) err() error {
	data := t.buf
	if len(data) > maxStderrTailSize {
		data = data[len(data)-maxStderrTailSize:]
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil
	}

	return stderrors.New(text)
}
