//go:build windows

package platform

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

const creationFlags uint32 = windows.CREATE_NO_WINDOW

// SysProcAttr returns the attributes used to create a child process.
//
// The child also gets its own process group so that Interrupt's
// CTRL_BREAK_EVENT reaches it and not the parent's console group.
func SysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: creationFlags | windows.CREATE_NEW_PROCESS_GROUP,
	}
}

// generateCtrlBreak is replaced in tests.
var generateCtrlBreak = func(pid uint32) error {
	return windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, pid)
}

// Interrupt sends CTRL_BREAK_EVENT to the child's process group.
//
// Delivery is best-effort. The event only reaches processes attached to the
// caller's console, and a child created with CREATE_NO_WINDOW has a hidden
// console of its own, so callers must be ready to follow up with Kill. When
// the event cannot be sent at all, Interrupt falls back to TerminateProcess.
func Interrupt(proc *os.Process) error {
	if proc == nil {
		return nil
	}

	err := generateCtrlBreak(uint32(proc.Pid))
	if err == nil {
		return nil
	}

	if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
		// The group is gone: the child already exited.
		return nil
	}

	return Kill(proc)
}

// Terminate calls TerminateProcess. Windows has no graceful equivalent of
// SIGTERM for console programs without a console.
func Terminate(proc *os.Process) error {
	return Kill(proc)
}

// Kill calls TerminateProcess.
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
	return errors.Is(err, windows.ERROR_BROKEN_PIPE) ||
		errors.Is(err, windows.ERROR_NO_DATA) ||
		errors.Is(err, os.ErrClosed)
}
