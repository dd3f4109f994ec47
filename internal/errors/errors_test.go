package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgramNotFoundError(t *testing.T) {
	err := &ProgramNotFoundError{
		Program:       "othello",
		SearchedPaths: []string{"./othello", "$PATH"},
	}

	require.Equal(
		t,
		`player program "othello" not found in: [./othello $PATH]`,
		err.Error(),
	)
	require.True(t, err.IsPlayerError())
}

func TestSpawnError(t *testing.T) {
	root := errors.New("permission denied")
	err := &SpawnError{Err: root}

	require.Equal(t, "failed to spawn player process: permission denied", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsPlayerError())
}

func TestHandshakeError_WrapsStreamClosed(t *testing.T) {
	err := &HandshakeError{Err: ErrStreamClosed}

	require.Equal(t, "handshake failed: stdout stream closed", err.Error())
	require.ErrorIs(t, err, ErrStreamClosed)
}

func TestProtocolError(t *testing.T) {
	root := errors.New("expected 2 tokens, got 1")
	err := &ProtocolError{Line: "1", Err: root}

	require.Equal(t, `malformed response "1": expected 2 tokens, got 1`, err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsPlayerError())
}

func TestProcessError_WithUnderlyingError(t *testing.T) {
	root := errors.New("signal: killed")
	err := &ProcessError{ExitCode: -1, Err: root}

	require.Equal(t, "player process exited (exit -1): signal: killed", err.Error())
	require.ErrorIs(t, err, root)
}

func TestProcessError_WithoutUnderlyingError(t *testing.T) {
	err := &ProcessError{ExitCode: 3}

	require.Equal(t, "player process exited (exit 3)", err.Error())
	require.NoError(t, errors.Unwrap(err))
}

func TestErrorsAsType(t *testing.T) {
	var err error = &ProtocolError{Line: "abc", Err: errors.New("bad")}

	wrapped := errors.Join(errors.New("turn 4"), err)

	protoErr, ok := errors.AsType[*ProtocolError](wrapped)
	require.True(t, ok)
	require.Equal(t, "abc", protoErr.Line)

	_, ok = errors.AsType[*ProcessError](wrapped)
	require.False(t, ok)
}
