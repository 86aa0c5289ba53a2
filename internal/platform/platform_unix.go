//go:build unix

package platform

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

const creationFlags uint32 = 0

// SysProcAttr returns the attributes used to create a child process.
// POSIX children need none.
func SysProcAttr() *syscall.SysProcAttr {
	return nil
}

// Interrupt sends SIGINT.
func Interrupt(proc *os.Process) error {
	return Signal(proc, unix.SIGINT)
}

// Terminate sends SIGTERM.
func Terminate(proc *os.Process) error {
	return Signal(proc, unix.SIGTERM)
}

// Kill sends SIGKILL.
func Kill(proc *os.Process) error {
	return Signal(proc, unix.SIGKILL)
}

// ExitCode decodes a reaped process state. A child terminated by a signal
// reports the negated signal number.
func ExitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}

	return state.ExitCode()
}

// IsBrokenPipe reports whether err means the reading end of a pipe is gone.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, unix.EPIPE) || errors.Is(err, os.ErrClosed)
}
