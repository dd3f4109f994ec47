// Package config provides configuration types for the process player.
package config

import "context"

// Transport defines the interface for talking to a player program.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods.
//
// The default implementation is ProcessTransport which spawns a subprocess.
// Custom transports can be injected via Options.Transport.
type Transport interface {
	// Start spawns the program and begins reading its output streams.
	Start(ctx context.Context) error

	// SendLine writes one line to the program's stdin and flushes it.
	// A trailing newline is appended if missing.
	SendLine(ctx context.Context, line string) error

	// Stdout yields the program's stdout lines. It is closed at end-of-stream.
	Stdout() <-chan string

	// Stderr yields the program's stderr lines. It is closed at end-of-stream.
	Stderr() <-chan string

	// Exited is closed once the program has exited.
	Exited() <-chan struct{}

	// ExitErr describes how the program exited. Valid after Exited is closed;
	// nil for a clean exit.
	ExitErr() error

	// PID returns the program's process ID, or 0 if it is not running.
	PID() int

	// Kill forcefully terminates the program and its process group.
	Kill() error

	// EndInput closes stdin to signal that no more requests will be sent.
	EndInput() error

	// Close terminates the transport and releases resources.
	// It's safe to call Close multiple times.
	Close(ctx context.Context) error
}
