package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wagiedev/procplayer"
)

var (
	logLevel      string
	shell         string
	memoryLimitKB int
	watchdog      bool
)

var rootCmd = &cobra.Command{
	Use:   "procplayer",
	Short: "Drive external game-playing programs over stdin/stdout",
	Long: `procplayer runs game-playing programs as child processes and talks to
them with the line protocol: one ready line, then "<x> <y> <millisLeft>"
requests answered by "<x> <y>" moves or "-1 -1" passes.

Use probe to check that a program starts and answers, and match to play a
tournament between two programs.`,
	SilenceUsage: true,
}

// newLogger builds a text logger at the level named by --log-level.
func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	return slog.New(handler), nil
}

// playerOptions returns the options shared by every player the CLI starts.
func playerOptions(log *slog.Logger) []procplayer.Option {
	opts := []procplayer.Option{
		procplayer.WithLogger(log),
		procplayer.WithStderr(procplayer.LogSink(log)),
		procplayer.WithMemoryWatchdog(watchdog),
	}

	if shell != "" {
		opts = append(opts, procplayer.WithShell(shell))
	}

	switch {
	case memoryLimitKB < 0:
		opts = append(opts, procplayer.WithoutMemoryLimit())
	case memoryLimitKB > 0:
		opts = append(opts, procplayer.WithMemoryLimitKB(memoryLimitKB))
	}

	return opts
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&shell, "shell", "", "Shell used to launch programs (default: $PROCPLAYER_SHELL or bash)")
	rootCmd.PersistentFlags().IntVar(&memoryLimitKB, "memory-limit-kb", 0,
		fmt.Sprintf("Memory limit in KB for each program, negative to disable (default: $PROCPLAYER_MEMORY_LIMIT_KB or %d)", procplayer.DefaultMemoryLimitKB))
	rootCmd.PersistentFlags().BoolVar(&watchdog, "watchdog", false, "Kill programs whose resident memory exceeds the limit")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(summaryCmd)
}
