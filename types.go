package procplayer

import (
	"github.com/wagiedev/procplayer/internal/procstat"
	"github.com/wagiedev/procplayer/internal/protocol"
)

// Move is a board coordinate. A nil *Move means "no move" (a pass).
type Move = protocol.Move

// Side identifies which of the two players an adapter represents.
type Side = protocol.Side

// Response is a parsed reply: the move (nil for a pass) plus any trailing
// integers the program printed after it.
type Response = protocol.Response

// MemoryUsage is a memory sample of the player's process tree in kilobytes.
type MemoryUsage = procstat.Usage

const (
	// Black moves first.
	Black = protocol.Black
	// White moves second.
	White = protocol.White
)

// NewMove creates a move at (x, y).
func NewMove(x, y int) *Move {
	return protocol.NewMove(x, y)
}

// ParseSide parses "Black" or "White" in any casing.
func ParseSide(s string) (Side, error) {
	return protocol.ParseSide(s)
}

// State is the lifecycle state of a ProcessPlayer.
type State int

const (
	// StateUninitialized means no process has been spawned yet.
	StateUninitialized State = iota
	// StateReady means the process is running and completed its handshake.
	StateReady
	// StateTerminated means the player was closed, failed to initialize,
	// or its process has exited.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Player is the contract a tournament harness expects of any player.
type Player interface {
	// Init prepares the player to play side. It is called exactly once,
	// before any DoMove.
	Init(side Side)

	// DoMove receives the opponent's last move (nil if the opponent passed
	// or this is the first move) and the time this player has left in the
	// game, and returns this player's move or nil for no move.
	DoMove(opponentsMove *Move, millisLeft int64) *Move
}
