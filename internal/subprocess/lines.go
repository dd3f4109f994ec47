package subprocess

import (
	"bufio"
	"io"
	"log/slog"
)

const (
	// maxLineSize is the maximum length of a single line read from the program.
	maxLineSize = 1024 * 1024 // 1MB
	// stdoutBuffer is the number of stdout lines read ahead of the caller.
	stdoutBuffer = 16
	// stderrBuffer is the number of stderr lines held before the reader
	// stops draining the pipe.
	stderrBuffer = 256
)

// readLines scans r line by line and sends each line on out until r reaches
// end-of-stream, a read fails, or done is closed. It closes out on return.
// A final line without a trailing newline is still delivered.
func readLines(log *slog.Logger, r io.Reader, out chan<- string, done <-chan struct{}) {
	defer close(out)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	for scanner.Scan() {
		select {
		case out <- scanner.Text():
		case <-done:
			return
		}
	}

	// Log scanner errors (don't fail - process may have exited)
	if err := scanner.Err(); err != nil {
		log.Debug("Line scanner stopped", "error", err)
	}
}
