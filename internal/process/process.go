package process

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/frame-pump-go/internal/config"
	"github.com/wagiedev/frame-pump-go/internal/discovery"
	"github.com/wagiedev/frame-pump-go/internal/errors"
	"github.com/wagiedev/frame-pump-go/internal/platform"
)

// Process owns one spawned child: its pipes, its pid and its exit status.
//
// Stdout is always a pipe. It has exactly one consumer, claimed through
// ClaimStdout by a pump or by Communicate. Poll, Wait and the signal
// methods never touch stdout and are safe to call concurrently with the
// consumer.
type Process struct {
	log  *slog.Logger
	id   string
	path string
	args []string
	dir  string
	env  map[string]string

	cmd    *exec.Cmd
	stdin  *os.File // parent write end, nil unless piped
	stdout *os.File // parent read end
	stderr *os.File // parent read end, nil unless piped

	// done is closed by reap after exitCode and waitErr are set.
	done     chan struct{}
	exitCode atomic.Int32
	waitErr  error

	stdoutClaimed atomic.Bool
	closeOnce     sync.Once
}

// Spawn resolves name, starts it with args as a literal argv and begins
// reaping it in the background.
//
// Every failure is a *errors.SpawnError and no Process is returned; any
// pipes created on the way are closed.
func Spawn(ctx context.Context, name string, args []string, opts *config.Options) (*Process, error) {
	if opts == nil {
		opts = &config.Options{}
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	id := ulid.Make().String()
	log = log.With("component", "process", "process_id", id)

	path, err := discovery.NewDiscoverer(&discovery.Config{
		SearchPaths: opts.SearchPaths,
		Logger:      log,
	}).Discover(ctx, name)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // G204: launching a caller-chosen executable is the purpose of this package
	cmd := exec.Command(path, args...)
	cmd.Dir = opts.Cwd
	cmd.Env = mergeEnv(os.Environ(), opts.Env)
	cmd.SysProcAttr = platform.SysProcAttr()

	p := &Process{
		log:  log,
		id:   id,
		path: path,
		args: slices.Clone(args),
		dir:  opts.Cwd,
		env:  maps.Clone(opts.Env),
		cmd:  cmd,
		done: make(chan struct{}),
	}
	p.exitCode.Store(-1)

	// Child-side pipe ends, closed in the parent once the child holds them.
	var childEnds []*os.File

	fail := func(err error) (*Process, error) {
		closeAll(childEnds...)
		closeAll(p.stdin, p.stdout, p.stderr)
		log.Error("Failed to spawn process", "path", path, "error", err)

		return nil, &errors.SpawnError{Name: name, Err: err}
	}

	// Stdout is a plain os.Pipe: cmd.Wait in reap must not close it while a
	// reader is still draining buffered output.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return fail(fmt.Errorf("stdout pipe: %w", err))
	}

	p.stdout = stdoutR
	cmd.Stdout = stdoutW
	childEnds = append(childEnds, stdoutW)

	switch opts.Stdin.Normalize() {
	case config.StreamPipe:
		r, w, err := os.Pipe()
		if err != nil {
			return fail(fmt.Errorf("stdin pipe: %w", err))
		}

		p.stdin = w
		cmd.Stdin = r
		childEnds = append(childEnds, r)
	case config.StreamInherit:
		cmd.Stdin = os.Stdin
	case config.StreamDiscard:
		cmd.Stdin = nil
	}

	switch opts.Stderr.Normalize() {
	case config.StreamPipe:
		r, w, err := os.Pipe()
		if err != nil {
			return fail(fmt.Errorf("stderr pipe: %w", err))
		}

		p.stderr = r
		cmd.Stderr = w
		childEnds = append(childEnds, w)
	case config.StreamInherit:
		cmd.Stderr = os.Stderr
	case config.StreamDiscard:
		cmd.Stderr = nil
	}

	if err := cmd.Start(); err != nil {
		return fail(fmt.Errorf("start process: %w", err))
	}

	closeAll(childEnds...)

	log.Info("Process started", "path", path, "pid", cmd.Process.Pid, "args", p.args)

	go p.reap()

	return p, nil
}

// reap waits for the child and records its exit status. It is the only
// caller of cmd.Wait, so the child never lingers in the process table.
func (p *Process) reap() {
	err := p.cmd.Wait()

	code := platform.ExitCode(p.cmd.ProcessState)

	if err != nil {
		if _, ok := stderrors.AsType[*exec.ExitError](err); ok {
			err = nil
		}
	}

	p.waitErr = err
	p.exitCode.Store(int32(code))
	close(p.done)

	if err != nil {
		p.log.Error("Waiting on process failed", "error", err)

		return
	}

	p.log.Info("Process exited", "exit_code", code)
}

// ID returns the identifier used to correlate this process in logs.
func (p *Process) ID() string { return p.id }

// PID returns the OS process identifier.
func (p *Process) PID() int { return p.cmd.Process.Pid }

// Path returns the resolved executable path.
func (p *Process) Path() string { return p.path }

// Args returns a copy of the launch arguments, excluding the executable.
func (p *Process) Args() []string { return slices.Clone(p.args) }

// Dir returns the working directory override, or "" if inherited.
func (p *Process) Dir() string { return p.dir }

// Env returns a copy of the environment overrides.
func (p *Process) Env() map[string]string { return maps.Clone(p.env) }

// Done returns a channel that is closed when the process has exited and
// been reaped.
func (p *Process) Done() <-chan struct{} { return p.done }

// ExitCode returns the exit code, or -1 while the process is running.
// A child killed by a signal on POSIX reports the negated signal number.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// Poll reports whether the process has exited, and its exit code if so.
// It never blocks.
func (p *Process) Poll() (int, bool) {
	select {
	case <-p.done:
		return p.ExitCode(), true
	default:
		return 0, false
	}
}

// Wait blocks until the process exits and returns its exit code.
//
// A timeout <= 0 waits indefinitely. If the timeout elapses first, Wait
// returns a *errors.TimeoutError and leaves the process running. The error
// is non-nil on exit only for OS-level wait failures, never for a non-zero
// exit code.
func (p *Process) Wait(timeout time.Duration) (int, error) {
	if timeout <= 0 {
		<-p.done

		return p.ExitCode(), p.waitErr
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.ExitCode(), p.waitErr
	case <-timer.C:
		return -1, &errors.TimeoutError{Op: "wait", Timeout: timeout}
	}
}

// WaitContext is Wait bounded by ctx. An expired deadline is reported as a
// *errors.TimeoutError; cancellation returns ctx.Err().
func (p *Process) WaitContext(ctx context.Context) (int, error) {
	select {
	case <-p.done:
		return p.ExitCode(), p.waitErr
	case <-ctx.Done():
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return -1, &errors.TimeoutError{Op: "wait"}
		}

		return -1, ctx.Err()
	}
}

// Signal delivers sig. It is a no-op once the process has exited.
func (p *Process) Signal(sig os.Signal) error {
	if p.exited() {
		return nil
	}

	p.log.Debug("Sending signal", "signal", sig.String())

	return platform.Signal(p.cmd.Process, sig)
}

// Interrupt sends the platform's gentle interrupt (SIGINT on POSIX,
// CTRL_BREAK_EVENT on Windows). Windows delivery is best-effort: when the
// event cannot be sent the process is terminated instead.
// It is a no-op once the process has exited.
func (p *Process) Interrupt() error {
	if p.exited() {
		return nil
	}

	p.log.Debug("Interrupting process")

	return platform.Interrupt(p.cmd.Process)
}

// Terminate requests a graceful stop (SIGTERM on POSIX) without waiting
// for it. It is a no-op once the process has exited.
func (p *Process) Terminate() error {
	if p.exited() {
		return nil
	}

	p.log.Debug("Terminating process")

	return platform.Terminate(p.cmd.Process)
}

// Kill forces the process to stop (SIGKILL on POSIX) without waiting for
// it. It is a no-op once the process has exited.
func (p *Process) Kill() error {
	if p.exited() {
		return nil
	}

	p.log.Debug("Killing process")

	return platform.Kill(p.cmd.Process)
}

// Stdin returns the write end of the child's stdin, or nil unless piped.
func (p *Process) Stdin() io.WriteCloser {
	if p.stdin == nil {
		return nil
	}

	return p.stdin
}

// Stdout returns the read end of the child's stdout without claiming it.
// Reading from it while a pump is attached corrupts frame boundaries.
func (p *Process) Stdout() io.ReadCloser { return p.stdout }

// Stderr returns the read end of the child's stderr, or nil unless piped.
func (p *Process) Stderr() io.ReadCloser {
	if p.stderr == nil {
		return nil
	}

	return p.stderr
}

// ClaimStdout hands stdout to its single consumer. Every call after the
// first returns errors.ErrStdoutClaimed.
func (p *Process) ClaimStdout() (io.ReadCloser, error) {
	if !p.stdoutClaimed.CompareAndSwap(false, true) {
		return nil, errors.ErrStdoutClaimed
	}

	return p.stdout, nil
}

// Close releases the parent's pipe ends. It does not signal or wait for
// the child. It is safe to call multiple times.
func (p *Process) Close() error {
	var errs []error

	p.closeOnce.Do(func() {
		for name, f := range map[string]*os.File{"stdin": p.stdin, "stdout": p.stdout, "stderr": p.stderr} {
			if f == nil {
				continue
			}

			if err := f.Close(); err != nil && !stderrors.Is(err, os.ErrClosed) {
				errs = append(errs, fmt.Errorf("close %s: %w", name, err))
			}
		}
	})

	return stderrors.Join(errs...)
}

func (p *Process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// mergeEnv returns base with overrides applied. Overridden keys from base
// are dropped so the child sees a single value.
func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}

	env := make([]string, 0, len(base)+len(overrides))

	for _, kv := range base {
		// Windows keeps per-drive entries such as "=C:=C:\", so the
		// separator search starts after the first byte.
		key := kv
		if i := strings.IndexByte(kv[min(1, len(kv)):], '='); i >= 0 {
			key = kv[:i+1]
		}

		if _, ok := overrides[key]; !ok {
			env = append(env, kv)
		}
	}

	for _, k := range slices.Sorted(maps.Keys(overrides)) {
		env = append(env, k+"="+overrides[k])
	}

	return env
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
