package protocol

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/procplayer/internal/errors"
)

func TestFormatRequest(t *testing.T) {
	tests := []struct {
		name       string
		opponent   *Move
		millisLeft int64
		want       string
	}{
		{name: "first move", opponent: nil, millisLeft: 60000, want: "-1 -1 60000"},
		{name: "opponent passed", opponent: nil, millisLeft: 12, want: "-1 -1 12"},
		{name: "opponent moved", opponent: NewMove(3, 4), millisLeft: 5000, want: "3 4 5000"},
		{name: "corner", opponent: NewMove(0, 0), millisLeft: 0, want: "0 0 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FormatRequest(tt.opponent, tt.millisLeft))
		})
	}
}

func TestParseResponse_Move(t *testing.T) {
	for x := range 8 {
		for y := range 8 {
			resp, err := ParseResponse(NewMove(x, y).String())
			require.NoError(t, err)
			require.False(t, resp.IsPass())
			require.Equal(t, &Move{X: x, Y: y}, resp.Move)
		}
	}
}

func TestParseResponse_Pass(t *testing.T) {
	resp, err := ParseResponse(PassSentinel)

	require.NoError(t, err)
	require.True(t, resp.IsPass())
	require.Empty(t, resp.Extra)
}

func TestParseResponse_TrailingCounts(t *testing.T) {
	t.Run("move with disc counts", func(t *testing.T) {
		resp, err := ParseResponse("2 3 4 1\n")

		require.NoError(t, err)
		require.Equal(t, NewMove(2, 3), resp.Move)
		require.Equal(t, []int{4, 1}, resp.Extra)
	})

	t.Run("pass with disc counts", func(t *testing.T) {
		resp, err := ParseResponse("-1 -1 30 34")

		require.NoError(t, err)
		require.True(t, resp.IsPass())
		require.Equal(t, []int{30, 34}, resp.Extra)
	})

	t.Run("non-numeric tail is ignored", func(t *testing.T) {
		resp, err := ParseResponse("5 6 thinking 7")

		require.NoError(t, err)
		require.Equal(t, NewMove(5, 6), resp.Move)
		require.Empty(t, resp.Extra)
	})
}

func TestParseResponse_Malformed(t *testing.T) {
	for _, line := range []string{"abc", "1", "", "   ", "x 2", "2 y", "1.5 2"} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseResponse(line)

			require.Error(t, err)

			protoErr, ok := stderrors.AsType[*errors.ProtocolError](err)
			require.True(t, ok)
			require.Equal(t, line, protoErr.Line)
		})
	}
}

func TestParseSide(t *testing.T) {
	for _, in := range []string{"Black", "black", "BLACK", " b "} {
		side, err := ParseSide(in)
		require.NoError(t, err)
		require.Equal(t, Black, side)
	}

	side, err := ParseSide("White")
	require.NoError(t, err)
	require.Equal(t, White, side)

	_, err = ParseSide("red")
	require.Error(t, err)
}

func TestSide(t *testing.T) {
	require.Equal(t, "Black", Black.String())
	require.Equal(t, "White", White.String())
	require.Equal(t, White, Black.Opponent())
	require.Equal(t, Black, White.Opponent())
}

func TestMove_Index(t *testing.T) {
	var pass *Move

	require.Equal(t, -9, pass.Index())
	require.Equal(t, PassIndex, pass.Index())
	require.Equal(t, PassSentinel, pass.String())
	require.Equal(t, 19, NewMove(3, 2).Index())
}
