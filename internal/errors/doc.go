// Package errors defines error types for the process player.
//
// This package provides structured error types for the different ways an
// external player program can fail: it cannot be found, it cannot be
// spawned, it never completes the handshake, it answers with a malformed
// line, or it exits mid-game. All error types support unwrapping and can be
// checked using errors.Is, errors.As, and errors.AsType.
package errors
