// Package discovery locates the executable a pipeline launches.
package discovery

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wagiedev/frame-pump-go/internal/errors"
)

// Config holds configuration for executable discovery.
type Config struct {
	// SearchPaths are extra directories checked after PATH, in order.
	SearchPaths []string

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates an executable by name.
type Discoverer interface {
	// Discover returns the path to run for name, or a *errors.SpawnError
	// listing every location that was searched.
	Discover(ctx context.Context, name string) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log.With("component", "discovery"),
	}
}

// Discover locates name.
//
// A name containing a path separator is used as given and only checked for
// existence. A bare name is looked up in PATH, then in each configured
// search directory.
func (d *discoverer) Discover(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if name == "" {
		return "", &errors.SpawnError{Name: name, Err: exec.ErrNotFound}
	}

	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		d.log.Debug("Using explicit executable path", "path", name)

		if _, err := os.Stat(name); err != nil {
			d.log.Debug("Explicit executable path not found", "path", name, "error", err)

			return "", &errors.SpawnError{Name: name, SearchedPaths: []string{name}, Err: err}
		}

		return name, nil
	}

	searchedPaths := make([]string, 0, 1+len(d.cfg.SearchPaths))

	if path, err := exec.LookPath(name); err == nil {
		d.log.Debug("Found executable in PATH", "name", name, "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	for _, dir := range d.cfg.SearchPaths {
		candidate := filepath.Join(dir, name)
		searchedPaths = append(searchedPaths, candidate)

		if path, err := exec.LookPath(candidate); err == nil {
			d.log.Debug("Found executable in search path", "name", name, "path", path)

			return path, nil
		}
	}

	d.log.Warn("Executable not found in any searched paths", "name", name, "searched_paths", searchedPaths)

	return "", &errors.SpawnError{Name: name, SearchedPaths: searchedPaths, Err: exec.ErrNotFound}
}
