package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultMemoryLimitKB is the resident and virtual memory cap applied to
	// the player program's shell.
	DefaultMemoryLimitKB = 786432

	// DefaultShell is the interpreter used to apply the memory limit and
	// launch the program.
	DefaultShell = "bash"

	// DefaultPollInterval is how often the move wait re-checks stderr, the
	// process state and memory usage.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultCloseGracePeriod is how long Close waits after closing stdin
	// before signalling the process.
	DefaultCloseGracePeriod = 2 * time.Second

	// EnvMemoryLimitKB overrides the memory limit when Options.MemoryLimitKB is unset.
	EnvMemoryLimitKB = "PROCPLAYER_MEMORY_LIMIT_KB"

	// EnvShell overrides the shell when Options.Shell is unset.
	EnvShell = "PROCPLAYER_SHELL"
)

// Options configures a process player.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// ProgramPath names the player program. A bare name is looked up in the
	// working directory first and then in PATH.
	ProgramPath string

	// Args are passed to the program after the side argument.
	Args []string

	// Shell is the interpreter that runs the launch command with "-c".
	Shell string

	// MemoryLimitKB caps resident and virtual memory via ulimit.
	// Zero selects DefaultMemoryLimitKB; a negative value omits the directive.
	MemoryLimitKB int

	// PollInterval is the bounded wait between checks while a move is pending.
	PollInterval time.Duration

	// HandshakeTimeout bounds the wait for the ready line. Zero waits forever.
	HandshakeTimeout time.Duration

	// CloseGracePeriod is how long Close waits for a voluntary exit.
	CloseGracePeriod time.Duration

	// Cwd sets the working directory for the player process.
	Cwd string

	// Env provides additional environment variables for the player process.
	Env map[string]string

	// Stderr receives each line the program writes to stderr.
	// If nil, lines are written to os.Stderr.
	Stderr func(string)

	// MemoryWatchdog kills the program when its sampled resident memory
	// exceeds MemoryLimitKB.
	MemoryWatchdog bool

	// Transport allows injecting a custom transport implementation.
	// If nil, the default ProcessTransport is created automatically.
	Transport Transport `json:"-"`
}

// WithDefaults returns a copy of o with unset fields filled from the
// environment and the package defaults.
func (o *Options) WithDefaults() *Options {
	out := &Options{}
	if o != nil {
		*out = *o
	}

	if out.Shell == "" {
		out.Shell = os.Getenv(EnvShell)
	}

	if out.Shell == "" {
		out.Shell = DefaultShell
	}

	if out.MemoryLimitKB == 0 {
		if v, err := strconv.Atoi(os.Getenv(EnvMemoryLimitKB)); err == nil && v != 0 {
			out.MemoryLimitKB = v
		}
	}

	if out.MemoryLimitKB == 0 {
		out.MemoryLimitKB = DefaultMemoryLimitKB
	}

	if out.PollInterval <= 0 {
		out.PollInterval = DefaultPollInterval
	}

	if out.CloseGracePeriod <= 0 {
		out.CloseGracePeriod = DefaultCloseGracePeriod
	}

	return out
}

// MemoryLimitEnabled reports whether a memory cap applies.
func (o *Options) MemoryLimitEnabled() bool {
	return o.MemoryLimitKB > 0
}
