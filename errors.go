package procplayer

import "github.com/wagiedev/procplayer/internal/errors"

// Re-export error types from internal package

// ProgramNotFoundError indicates the player program was not found.
type ProgramNotFoundError = errors.ProgramNotFoundError

// SpawnError indicates the player process could not be started.
type SpawnError = errors.SpawnError

// HandshakeError indicates the program never printed its ready line.
type HandshakeError = errors.HandshakeError

// ProtocolError indicates the program replied with a line that is not a move.
type ProtocolError = errors.ProtocolError

// ProcessError indicates the player process exited while a move was pending.
type ProcessError = errors.ProcessError

// PlayerError is the base interface for all player errors.
type PlayerError = errors.PlayerError

// Re-export sentinel errors from internal package.
var (
	// ErrNotInitialized indicates a move was requested before Init.
	ErrNotInitialized = errors.ErrNotInitialized

	// ErrAlreadyInitialized indicates Init was called more than once.
	ErrAlreadyInitialized = errors.ErrAlreadyInitialized

	// ErrTerminated indicates the player was closed or its process has exited.
	ErrTerminated = errors.ErrTerminated

	// ErrStreamClosed indicates the program's stdout ended; DoMove treats it as a pass.
	ErrStreamClosed = errors.ErrStreamClosed

	// ErrMemoryLimitExceeded indicates the watchdog killed the program.
	ErrMemoryLimitExceeded = errors.ErrMemoryLimitExceeded
)
