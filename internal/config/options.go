// Package config provides configuration types for the frame pump.
package config

import (
	"log/slog"
	"time"
)

// DefaultGracePeriod is how long Run waits after Terminate before Kill.
const DefaultGracePeriod = 5 * time.Second

// Options configures how a child process is spawned and supervised.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Cwd sets the working directory for the child process.
	// If empty, the child inherits the current directory.
	Cwd string

	// Env provides environment variable overrides for the child process.
	// They are merged over the parent environment; the parent's value for
	// an overridden key is never passed along.
	Env map[string]string

	// Stdin selects how the child's standard input is wired.
	// The zero value discards (the child reads from the null device).
	Stdin StreamMode

	// Stderr selects how the child's standard error is wired.
	// The zero value discards.
	Stderr StreamMode

	// SearchPaths are extra directories searched for the executable after PATH.
	SearchPaths []string

	// GracePeriod is how long Run waits after Terminate before Kill when its
	// context is cancelled. Zero uses DefaultGracePeriod.
	GracePeriod time.Duration

	// StderrCallback receives each line of a piped stderr while Run is
	// active. It forces Stderr to StreamPipe.
	StderrCallback func(string)
}

// EffectiveGracePeriod returns GracePeriod or its default.
func (o *Options) EffectiveGracePeriod() time.Duration {
	if o == nil || o.GracePeriod <= 0 {
		return DefaultGracePeriod
	}

	return o.GracePeriod
}
