//go:build integration

package integration

import (
	"errors"
	"testing"

	framepump "github.com/wagiedev/frame-pump-go"
)

// skipIfFFmpegNotInstalled skips the test if the error indicates ffmpeg is not found.
func skipIfFFmpegNotInstalled(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*framepump.SpawnError](err); ok {
		t.Skip("ffmpeg not installed")
	}
}

// testsrcArgs returns ffmpeg arguments emitting a lavfi test pattern as raw
// frames on stdout.
func testsrcArgs(source, pixFmt string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", "lavfi", "-i", source,
		"-f", "rawvideo", "-pix_fmt", pixFmt, "-",
	}
}
