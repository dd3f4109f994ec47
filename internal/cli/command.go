package cli

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/wagiedev/procplayer/internal/config"
)

// LimitFailedMarker is the stderr line the launch script writes when the
// shell refuses the virtual memory limit.
const LimitFailedMarker = "procplayer: memory limit not applied"

// Command represents the shell invocation that launches a player program.
type Command struct {
	// Shell is the interpreter binary.
	Shell string

	// Args are the interpreter arguments ("-c", script).
	Args []string

	// Env are the environment variables.
	Env []string
}

// BuildCommand constructs the shell invocation for programPath playing side.
func BuildCommand(programPath, side string, options *config.Options) *Command {
	limit := 0
	if options.MemoryLimitEnabled() {
		limit = options.MemoryLimitKB
	}

	script := BuildShellCommand(programPath, side, options.Args, limit)

	return &Command{
		Shell: options.Shell,
		Args:  []string{"-c", script},
		Env:   BuildEnvironment(options),
	}
}

// BuildShellCommand builds the script run by the shell. A limitKB of zero or
// less omits the ulimit directives.
//
// Each limit is set by its own ulimit call: dash accepts only one limit per
// call. The shell's own complaints are discarded; if the virtual memory
// limit cannot be set the script writes LimitFailedMarker to stderr and
// starts the program anyway.
func BuildShellCommand(programPath, side string, args []string, limitKB int) string {
	var b strings.Builder

	if limitKB > 0 {
		limit := strconv.Itoa(limitKB)
		fmt.Fprintf(&b, "{ ulimit -m %s; ulimit -v %s; } 2>/dev/null || echo %s >&2; ",
			limit, limit, shellQuote(LimitFailedMarker))
	}

	b.WriteString(shellQuote(programPath))
	b.WriteString(" ")
	b.WriteString(shellQuote(side))

	for _, arg := range args {
		b.WriteString(" ")
		b.WriteString(shellQuote(arg))
	}

	return b.String()
}

// BuildEnvironment returns the current environment plus options.Env, with
// user-provided keys in sorted order so the result is deterministic.
func BuildEnvironment(options *config.Options) []string {
	env := os.Environ()

	keys := make([]string, 0, len(options.Env))
	for key := range options.Env {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		env = append(env, key+"="+options.Env[key])
	}

	return env
}

// shellQuote quotes s for a POSIX shell unless it consists only of
// characters that never need quoting.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}

	safe := true

	for _, r := range s {
		if !isShellSafe(r) {
			safe = false

			break
		}
	}

	if safe {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case strings.ContainsRune("-_./:=+,@%", r):
		return true
	default:
		return false
	}
}
