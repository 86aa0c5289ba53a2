//go:build !unix && !windows

package platform

import (
	"errors"
	"os"
	"syscall"
)

const creationFlags uint32 = 0

// SysProcAttr returns the attributes used to create a child process.
func SysProcAttr() *syscall.SysProcAttr {
	return nil
}

// Interrupt sends os.Interrupt.
func Interrupt(proc *os.Process) error {
	return Signal(proc, os.Interrupt)
}

// Terminate falls back to Kill; there is no portable graceful stop.
func Terminate(proc *os.Process) error {
	return Kill(proc)
}

// Kill sends os.Kill.
func Kill(proc *os.Process) error {
	return Signal(proc, os.Kill)
}

// ExitCode decodes a reaped process state.
func ExitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}

	return state.ExitCode()
}

// IsBrokenPipe reports whether err means the reading end of a pipe is gone.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, os.ErrClosed)
}
