package procplayer

import (
	"fmt"
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards all output.
// Use this when you want silent operation with no logging overhead.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WriterSink returns a stderr sink that prints each program line to w.
func WriterSink(w io.Writer) func(string) {
	return func(line string) {
		_, _ = fmt.Fprintln(w, line)
	}
}

// LogSink returns a stderr sink that logs each program line at info level.
func LogSink(log *slog.Logger) func(string) {
	return func(line string) {
		log.Info(line, "stream", "stderr")
	}
}
