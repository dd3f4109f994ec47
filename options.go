package procplayer

import (
	"log/slog"
	"time"

	"github.com/wagiedev/procplayer/internal/config"
)

// PlayerOptions holds the configuration assembled from Options.
type PlayerOptions = config.Options

// Option configures PlayerOptions using the functional options pattern.
type Option func(*PlayerOptions)

// DefaultMemoryLimitKB is the memory cap applied when none is configured.
const DefaultMemoryLimitKB = config.DefaultMemoryLimitKB

// applyPlayerOptions applies functional options to a PlayerOptions struct.
func applyPlayerOptions(programPath string, opts []Option) *PlayerOptions {
	options := &PlayerOptions{ProgramPath: programPath}
	for _, opt := range opts {
		opt(options)
	}

	return options.WithDefaults()
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *PlayerOptions) {
		o.Logger = logger
	}
}

// WithArgs appends arguments after the side argument.
func WithArgs(args ...string) Option {
	return func(o *PlayerOptions) {
		o.Args = append(o.Args, args...)
	}
}

// WithShell sets the shell that applies the memory limit and launches the
// program (default "bash").
func WithShell(shell string) Option {
	return func(o *PlayerOptions) {
		o.Shell = shell
	}
}

// WithMemoryLimitKB sets the ulimit memory cap in kilobytes.
func WithMemoryLimitKB(limit int) Option {
	return func(o *PlayerOptions) {
		o.MemoryLimitKB = limit
	}
}

// WithoutMemoryLimit omits the ulimit directive.
func WithoutMemoryLimit() Option {
	return func(o *PlayerOptions) {
		o.MemoryLimitKB = -1
	}
}

// WithPollInterval sets how often a pending move re-checks stderr and the
// process state (default 100ms).
func WithPollInterval(d time.Duration) Option {
	return func(o *PlayerOptions) {
		o.PollInterval = d
	}
}

// WithHandshakeTimeout bounds the wait for the ready line.
// By default the wait is unbounded.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *PlayerOptions) {
		o.HandshakeTimeout = d
	}
}

// WithCloseGracePeriod sets how long Close waits before signalling.
func WithCloseGracePeriod(d time.Duration) Option {
	return func(o *PlayerOptions) {
		o.CloseGracePeriod = d
	}
}

// WithCwd sets the working directory for the player process. A bare
// program name is also looked up there first.
func WithCwd(cwd string) Option {
	return func(o *PlayerOptions) {
		o.Cwd = cwd
	}
}

// WithEnv provides additional environment variables for the player process.
func WithEnv(env map[string]string) Option {
	return func(o *PlayerOptions) {
		o.Env = env
	}
}

// WithStderr sets the sink for the program's stderr lines.
// If not set, lines are printed to os.Stderr.
func WithStderr(sink func(string)) Option {
	return func(o *PlayerOptions) {
		o.Stderr = sink
	}
}

// WithMemoryWatchdog enables sampling the program's resident memory while a
// move is pending and killing it when it exceeds the memory cap.
func WithMemoryWatchdog(enabled bool) Option {
	return func(o *PlayerOptions) {
		o.MemoryWatchdog = enabled
	}
}

// WithTransport injects a custom transport, replacing the subprocess.
func WithTransport(transport Transport) Option {
	return func(o *PlayerOptions) {
		o.Transport = transport
	}
}
