package platform

import (
	"errors"
	"os"
)

// CreationFlags returns the process creation flags applied to every spawned
// child. On Windows this suppresses the console window a console program
// would otherwise open; elsewhere it is zero.
func CreationFlags() uint32 {
	return creationFlags
}

// Signal delivers sig to proc, returning nil if the process has already
// exited (os.ErrProcessDone).
func Signal(proc *os.Process, sig os.Signal) error {
	if proc == nil {
		return nil
	}

	err := proc.Signal(sig)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}

	return err
}
