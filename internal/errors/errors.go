package errors

import (
	"errors"
	"fmt"
)

// PlayerError is the base interface for all process player errors.
type PlayerError interface {
	error
	IsPlayerError() bool
}

// Compile-time verification that all error types implement PlayerError.
var (
	_ PlayerError = (*ProgramNotFoundError)(nil)
	_ PlayerError = (*SpawnError)(nil)
	_ PlayerError = (*HandshakeError)(nil)
	_ PlayerError = (*ProtocolError)(nil)
	_ PlayerError = (*ProcessError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotInitialized indicates a move was requested before Init.
	ErrNotInitialized = errors.New("player not initialized")

	// ErrAlreadyInitialized indicates Init was called more than once.
	ErrAlreadyInitialized = errors.New("player already initialized: the child process is created exactly once")

	// ErrTerminated indicates the player was closed or its process has exited.
	ErrTerminated = errors.New("player terminated")

	// ErrStreamClosed indicates the child's stdout reached end-of-stream.
	ErrStreamClosed = errors.New("stdout stream closed")

	// ErrTransportNotStarted indicates the transport has no running process.
	ErrTransportNotStarted = errors.New("transport not started")

	// ErrStdinClosed indicates stdin was closed and can no longer be written.
	ErrStdinClosed = errors.New("stdin closed")

	// ErrMemoryLimitExceeded indicates the watchdog killed the child for
	// exceeding its memory limit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
)

// ProgramNotFoundError indicates the player program was not found.
type ProgramNotFoundError struct {
	Program       string
	SearchedPaths []string
}

func (e *ProgramNotFoundError) Error() string {
	return fmt.Sprintf("player program %q not found in: %v", e.Program, e.SearchedPaths)
}

// IsPlayerError implements PlayerError.
func (e *ProgramNotFoundError) IsPlayerError() bool { return true }

// SpawnError indicates the shell or the player program could not be started.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn player process: %v", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsPlayerError implements PlayerError.
func (e *SpawnError) IsPlayerError() bool { return true }

// HandshakeError indicates the child never wrote its ready line.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake failed: %v", e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// IsPlayerError implements PlayerError.
func (e *HandshakeError) IsPlayerError() bool { return true }

// ProtocolError indicates the child answered with a line that is not a move.
// The offending line is preserved.
type ProtocolError struct {
	Line string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed response %q: %v", e.Line, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsPlayerError implements PlayerError.
func (e *ProtocolError) IsPlayerError() bool { return true }

// ProcessError indicates the player process exited while a move was pending.
type ProcessError struct {
	ExitCode int
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("player process exited (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("player process exited (exit %d)", e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsPlayerError implements PlayerError.
func (e *ProcessError) IsPlayerError() bool { return true }
