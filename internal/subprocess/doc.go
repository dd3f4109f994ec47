// Package subprocess provides the process-based transport for player programs.
//
// This package implements the Transport interface by launching the player
// program through a shell (so the memory limit directive applies first) and
// communicating via stdin/stdout. Background goroutines turn stdout and
// stderr into line channels and reap the process, so callers can wait on
// "a line is available" and "the process has exited" with a select instead
// of blocking reads.
package subprocess
