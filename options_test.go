package framepump

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyOptions(t *testing.T) {
	log := NopLogger()
	cb := func(string) {}

	opts := applyOptions([]Option{
		WithLogger(log),
		WithCwd("/tmp"),
		WithEnv(map[string]string{"A": "1", "B": "1"}),
		WithEnv(map[string]string{"B": "2"}),
		WithStdin(StreamPipe),
		WithStderr(StreamInherit),
		WithSearchPaths("/opt/a"),
		WithSearchPaths("/opt/b"),
		WithGracePeriod(time.Second),
		WithStderrCallback(cb),
	})

	require.Same(t, log, opts.Logger)
	require.Equal(t, "/tmp", opts.Cwd)
	require.Equal(t, map[string]string{"A": "1", "B": "2"}, opts.Env)
	require.Equal(t, StreamPipe, opts.Stdin)
	require.Equal(t, StreamInherit, opts.Stderr)
	require.Equal(t, []string{"/opt/a", "/opt/b"}, opts.SearchPaths)
	require.Equal(t, time.Second, opts.EffectiveGracePeriod())
	require.NotNil(t, opts.StderrCallback)
}

func TestApplyOptions_Defaults(t *testing.T) {
	opts := applyOptions(nil)

	require.Nil(t, opts.Logger)
	require.Equal(t, StreamDiscard, opts.Stdin.Normalize())
	require.Equal(t, StreamDiscard, opts.Stderr.Normalize())
	require.Equal(t, 5*time.Second, opts.EffectiveGracePeriod())
}
