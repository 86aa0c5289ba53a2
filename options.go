package framepump

import (
	"log/slog"
	"maps"
	"time"

	"github.com/wagiedev/frame-pump-go/internal/config"
)

// Options configures spawning and supervising a child process.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCwd sets the working directory for the child process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithEnv adds environment overrides for the child process.
// Multiple calls merge; later values win.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}

		maps.Copy(o.Env, env)
	}
}

// WithStdin selects how the child's standard input is wired.
func WithStdin(mode StreamMode) Option {
	return func(o *Options) {
		o.Stdin = mode
	}
}

// WithStderr selects how the child's standard error is wired.
func WithStderr(mode StreamMode) Option {
	return func(o *Options) {
		o.Stderr = mode
	}
}

// WithSearchPaths adds directories searched for the executable after PATH.
func WithSearchPaths(dirs ...string) Option {
	return func(o *Options) {
		o.SearchPaths = append(o.SearchPaths, dirs...)
	}
}

// WithGracePeriod sets how long Run waits after Terminate before Kill.
func WithGracePeriod(d time.Duration) Option {
	return func(o *Options) {
		o.GracePeriod = d
	}
}

// WithStderrCallback sets a callback for each line the child writes to
// stderr while Run is active. It implies WithStderr(StreamPipe).
func WithStderrCallback(fn func(string)) Option {
	return func(o *Options) {
		o.StderrCallback = fn
	}
}
