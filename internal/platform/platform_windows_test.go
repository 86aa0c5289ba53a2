//go:build windows

package platform

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"

	"github.com/wagiedev/frame-pump-go/internal/proctest"
)

// startSleeper starts a helper child that sleeps and returns a channel that
// is closed once it has been reaped.
func startSleeper(t *testing.T) (*exec.Cmd, <-chan struct{}) {
	t.Helper()

	exe, args, env := proctest.Helper(t, proctest.ModeSleep, "30s")

	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(), proctest.EnvVar+"="+env[proctest.EnvVar])
	cmd.SysProcAttr = SysProcAttr()
	require.NoError(t, cmd.Start())

	done := make(chan struct{})

	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	t.Cleanup(func() {
		_ = Kill(cmd.Process)
		<-done
	})

	return cmd, done
}

func stubCtrlBreak(t *testing.T, err error) {
	t.Helper()

	orig := generateCtrlBreak
	t.Cleanup(func() { generateCtrlBreak = orig })

	generateCtrlBreak = func(uint32) error { return err }
}

func TestInterrupt_FallsBackToTerminate(t *testing.T) {
	stubCtrlBreak(t, windows.ERROR_ACCESS_DENIED)

	cmd, done := startSleeper(t)
	require.NoError(t, Interrupt(cmd.Process))

	select {
	case <-done:
		require.NotZero(t, ExitCode(cmd.ProcessState))
	case <-time.After(10 * time.Second):
		t.Fatal("process still running after Interrupt fell back")
	}
}

func TestInterrupt_ExitedGroupIsNoop(t *testing.T) {
	stubCtrlBreak(t, windows.ERROR_INVALID_PARAMETER)

	cmd, done := startSleeper(t)
	require.NoError(t, Interrupt(cmd.Process))

	select {
	case <-done:
		t.Fatal("an exited group must not trigger TerminateProcess")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestInterrupt_DeliveredEventDoesNotTerminate(t *testing.T) {
	stubCtrlBreak(t, nil)

	cmd, done := startSleeper(t)
	require.NoError(t, Interrupt(cmd.Process))

	select {
	case <-done:
		t.Fatal("a sent CTRL_BREAK_EVENT must not be followed by TerminateProcess")
	case <-time.After(200 * time.Millisecond):
	}
}
