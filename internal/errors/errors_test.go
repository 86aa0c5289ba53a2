package errors

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSpawnError_NotFound(t *testing.T) {
	err := &SpawnError{
		Name:          "ffmpeg",
		SearchedPaths: []string{"$PATH", "/opt/ffmpeg/bin/ffmpeg"},
		Err:           os.ErrNotExist,
	}

	require.Equal(t, "spawn ffmpeg: file does not exist (searched [$PATH /opt/ffmpeg/bin/ffmpeg])", err.Error())
	require.ErrorIs(t, err, os.ErrNotExist)
	require.True(t, err.IsFramePumpError())

	bare := &SpawnError{Name: "ffmpeg", SearchedPaths: []string{"$PATH"}}
	require.Equal(t, "spawn ffmpeg: not found in [$PATH]", bare.Error())
}

func TestSpawnError_ExplicitPathKeepsCause(t *testing.T) {
	err := &SpawnError{
		Name:          "/opt/ffmpeg/bin/ffmpeg",
		SearchedPaths: []string{"/opt/ffmpeg/bin/ffmpeg"},
		Err:           os.ErrPermission,
	}

	require.Contains(t, err.Error(), "permission denied")
	require.Contains(t, err.Error(), "/opt/ffmpeg/bin/ffmpeg")
	require.ErrorIs(t, err, os.ErrPermission)
}

func TestSpawnError_StartFailure(t *testing.T) {
	root := errors.New("permission denied")
	err := &SpawnError{Name: "/usr/bin/ffmpeg", Err: root}

	require.Equal(t, "spawn /usr/bin/ffmpeg: permission denied", err.Error())
	require.ErrorIs(t, err, root)
}

func TestTimeoutError(t *testing.T) {
	err := &TimeoutError{Op: "wait", Timeout: 250 * time.Millisecond}

	require.Equal(t, "wait: timed out after 250ms", err.Error())
	require.ErrorIs(t, err, ErrTimeout)
	require.True(t, err.IsFramePumpError())

	bare := &TimeoutError{Op: "communicate"}
	require.Equal(t, "communicate: timed out", bare.Error())
}

func TestReassemblyError(t *testing.T) {
	err := &ReassemblyError{FrameSize: 5, Remainder: 3, Chunk: 4}

	require.Equal(
		t,
		"reassembly invariant violated: remainder 3 + chunk 4 exceeds frame size 5",
		err.Error(),
	)
	require.True(t, err.IsFramePumpError())
}

func TestPumpError(t *testing.T) {
	root := errors.New("handler rejected frame")
	err := &PumpError{PumpID: "01J", Frames: 7, Err: root}

	require.Equal(t, "pump 01J failed after 7 frames: handler rejected frame", err.Error())
	require.ErrorIs(t, err, root)

	wrapped, ok := errors.AsType[*PumpError](err)
	require.True(t, ok)
	require.Equal(t, uint64(7), wrapped.Frames)
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: -9}
	require.Equal(t, "process exited with code -9", err.Error())
	require.NoError(t, err.Unwrap())

	root := errors.New("exit status 2")
	withErr := &ExitError{Code: 2, Err: root}
	require.Equal(t, "process exited with code 2: exit status 2", withErr.Error())
	require.ErrorIs(t, withErr, root)
	require.True(t, withErr.IsFramePumpError())
}
