package process

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/frame-pump-go/internal/errors"
	"github.com/wagiedev/frame-pump-go/internal/platform"
)

// Communicate writes input to stdin, reads stdout and stderr to EOF and
// waits for the process to exit.
//
// Both streams are buffered entirely in memory, so Communicate is meant for
// short-lived children with bounded output (probing a tool's version, a
// one-shot transcode to a small file). Unbounded output belongs on a pump.
//
// Communicate claims stdout and fails with errors.ErrStdoutClaimed if a
// pump already holds it. Non-empty input requires a piped stdin
// (errors.ErrStreamNotPiped); stdin, when piped, is closed after input is
// written. A stderr that is not piped yields nil. A timeout <= 0 waits
// indefinitely; otherwise an elapsed timeout returns *errors.TimeoutError
// and leaves the process running.
func (p *Process) Communicate(input []byte, timeout time.Duration) ([]byte, []byte, error) {
	if len(input) > 0 && p.stdin == nil {
		return nil, nil, fmt.Errorf("communicate stdin: %w", errors.ErrStreamNotPiped)
	}

	stdout, err := p.ClaimStdout()
	if err != nil {
		return nil, nil, err
	}

	p.log.Debug("Communicating with process", "input_len", len(input), "timeout", timeout)

	var outBuf, errBuf bytes.Buffer

	var g errgroup.Group

	if p.stdin != nil {
		g.Go(func() error {
			defer p.stdin.Close()

			if len(input) == 0 {
				return nil
			}

			if _, err := p.stdin.Write(input); err != nil && !platform.IsBrokenPipe(err) {
				return fmt.Errorf("write stdin: %w", err)
			}

			return nil
		})
	}

	g.Go(func() error {
		if _, err := io.Copy(&outBuf, stdout); err != nil {
			return fmt.Errorf("read stdout: %w", err)
		}

		return nil
	})

	if p.stderr != nil {
		g.Go(func() error {
			if _, err := io.Copy(&errBuf, p.stderr); err != nil {
				return fmt.Errorf("read stderr: %w", err)
			}

			return nil
		})
	}

	finished := make(chan error, 1)

	go func() {
		if err := g.Wait(); err != nil {
			finished <- err

			return
		}

		_, err := p.Wait(0)
		finished <- err
	}()

	var timer <-chan time.Time

	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()

		timer = t.C
	}

	select {
	case err := <-finished:
		if err != nil {
			return nil, nil, err
		}
	case <-timer:
		p.log.Debug("Communicate timed out", "timeout", timeout)

		return nil, nil, &errors.TimeoutError{Op: "communicate", Timeout: timeout}
	}

	var stderrOut []byte
	if p.stderr != nil {
		stderrOut = errBuf.Bytes()
	}

	return outBuf.Bytes(), stderrOut, nil
}
