package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wagiedev/procplayer/internal/errors"
)

const (
	// PassSentinel is the response line a program writes when it has no
	// legal move.
	PassSentinel = "-1 -1"

	// noCoordinate is the coordinate sent for an absent opponent move.
	noCoordinate = -1

	// PassIndex is the move-list entry for a pass: x+8y of "-1 -1".
	PassIndex = noCoordinate + 8*noCoordinate
)

// Move is a board coordinate. An absent move (a pass) is a nil *Move.
type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NewMove creates a move at (x, y).
func NewMove(x, y int) *Move {
	return &Move{X: x, Y: y}
}

// String returns the move in "x y" form.
func (m *Move) String() string {
	if m == nil {
		return PassSentinel
	}

	return strconv.Itoa(m.X) + " " + strconv.Itoa(m.Y)
}

// Index returns the square index x+8y used in move lists, or PassIndex
// (-9) for a pass.
func (m *Move) Index() int {
	if m == nil {
		return PassIndex
	}

	return m.X + 8*m.Y
}

// Side identifies which of the two players an adapter represents.
type Side int

const (
	// Black moves first.
	Black Side = iota
	// White moves second.
	White
)

// String returns the form passed to the player program as its argument.
func (s Side) String() string {
	switch s {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return "Side(" + strconv.Itoa(int(s)) + ")"
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Black {
		return White
	}

	return Black
}

// ParseSide parses a side name case-insensitively.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b":
		return Black, nil
	case "white", "w":
		return White, nil
	default:
		return Black, fmt.Errorf("unknown side %q: want Black or White", s)
	}
}

// Response is a parsed move response line.
type Response struct {
	// Move is the program's move, or nil if it passed.
	Move *Move

	// Extra holds integer tokens that followed the coordinates.
	Extra []int
}

// IsPass reports whether the response carries no move.
func (r Response) IsPass() bool {
	return r.Move == nil
}

// FormatRequest builds the move request line, without a trailing newline.
func FormatRequest(opponentsMove *Move, millisLeft int64) string {
	x, y := noCoordinate, noCoordinate
	if opponentsMove != nil {
		x, y = opponentsMove.X, opponentsMove.Y
	}

	return strconv.Itoa(x) + " " + strconv.Itoa(y) + " " + strconv.FormatInt(millisLeft, 10)
}

// ParseResponse parses a move response line.
//
// "-1 -1" is a pass. Otherwise the first two whitespace-separated tokens must
// be integers. Integer tokens after the coordinates are returned in Extra;
// anything non-numeric after the coordinates is ignored.
func ParseResponse(line string) (Response, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Fields(line)

	if len(fields) < 2 {
		return Response{}, &errors.ProtocolError{
			Line: line,
			Err:  fmt.Errorf("expected at least 2 tokens, got %d", len(fields)),
		}
	}

	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return Response{}, &errors.ProtocolError{Line: line, Err: fmt.Errorf("x coordinate: %w", err)}
	}

	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return Response{}, &errors.ProtocolError{Line: line, Err: fmt.Errorf("y coordinate: %w", err)}
	}

	var extra []int

	for _, tok := range fields[2:] {
		n, err := strconv.Atoi(tok)
		if err != nil {
			break
		}

		extra = append(extra, n)
	}

	if x == noCoordinate && y == noCoordinate {
		return Response{Extra: extra}, nil
	}

	return Response{Move: &Move{X: x, Y: y}, Extra: extra}, nil
}
