package discovery

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wagiedev/frame-pump-go/internal/errors"
)

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	return path
}

func TestDiscover_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeExecutable(t, dir, "encoder")

	got, err := NewDiscoverer(nil).Discover(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, path, got)
}

func TestDiscover_ExplicitPathMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing-encoder")

	_, err := NewDiscoverer(nil).Discover(context.Background(), missing)
	require.Error(t, err)

	spawnErr, ok := stderrors.AsType[*errors.SpawnError](err)
	require.True(t, ok)
	require.Equal(t, []string{missing}, spawnErr.SearchedPaths)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Contains(t, err.Error(), spawnErr.Err.Error(), "the stat failure is part of the message")
}

func TestDiscover_SearchPaths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Test requires Unix executable bits")
	}

	dir := t.TempDir()
	path := writeExecutable(t, dir, "framepump-test-encoder")

	d := NewDiscoverer(&Config{SearchPaths: []string{t.TempDir(), dir}})

	got, err := d.Discover(context.Background(), "framepump-test-encoder")
	require.NoError(t, err)
	require.Equal(t, path, got)
}

func TestDiscover_NotFound(t *testing.T) {
	extra := t.TempDir()
	d := NewDiscoverer(&Config{SearchPaths: []string{extra}})

	_, err := d.Discover(context.Background(), "framepump-definitely-not-installed")
	require.Error(t, err)

	spawnErr, ok := stderrors.AsType[*errors.SpawnError](err)
	require.True(t, ok)
	require.Equal(t, []string{"$PATH", filepath.Join(extra, "framepump-definitely-not-installed")}, spawnErr.SearchedPaths)
	require.ErrorIs(t, err, exec.ErrNotFound)
}

func TestDiscover_EmptyName(t *testing.T) {
	_, err := NewDiscoverer(nil).Discover(context.Background(), "")
	require.ErrorIs(t, err, exec.ErrNotFound)
}

func TestDiscover_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDiscoverer(nil).Discover(ctx, "sh")
	require.ErrorIs(t, err, context.Canceled)
}
