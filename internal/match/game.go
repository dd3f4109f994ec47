package match

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/procplayer/internal/errors"
	"github.com/wagiedev/procplayer/internal/protocol"
)

const (
	// DefaultTimeMillis is each side's clock for a whole game.
	DefaultTimeMillis = 4000

	// DefaultMaxPlies bounds a game whose players never agree to end it.
	DefaultMaxPlies = 200

	// boardSquares is the disc total awarded to the winner of a forfeit.
	boardSquares = 64

	// moveOverheadMillis is charged to the mover on top of wall-clock time.
	moveOverheadMillis = 1
)

// Player is the part of a process player a game drives.
type Player interface {
	Start(ctx context.Context, side protocol.Side) error
	RequestMove(ctx context.Context, opponentsMove *protocol.Move, millisLeft int64) (protocol.Response, error)
	Close(ctx context.Context) error
}

// Factory creates an unstarted player for side. The opening is passed
// through to programs that accept a starting position.
type Factory func(side protocol.Side, opening string) Player

// Engine names a player program and how to create it.
type Engine struct {
	Name    string
	Factory Factory
}

// Outcome is the result of a game from Black's and White's point of view.
type Outcome string

const (
	// OutcomeBlack means Black won.
	OutcomeBlack Outcome = "black"
	// OutcomeWhite means White won.
	OutcomeWhite Outcome = "white"
	// OutcomeDraw means neither side won.
	OutcomeDraw Outcome = "draw"
)

// Reason is why a game ended.
type Reason string

const (
	// ReasonPasses means both players passed in a row.
	ReasonPasses Reason = "passes"
	// ReasonTime means a player ran out of clock.
	ReasonTime Reason = "time"
	// ReasonForfeit means a player failed to start or answer.
	ReasonForfeit Reason = "forfeit"
	// ReasonMoveLimit means the game reached MaxPlies.
	ReasonMoveLimit Reason = "move_limit"
)

// GameConfig configures a single game.
type GameConfig struct {
	Black Engine
	White Engine

	// Opening is handed to both factories.
	Opening string

	// TimeMillis is each side's clock. Zero means DefaultTimeMillis.
	TimeMillis int64

	// MaxPlies ends the game as a draw. Zero means DefaultMaxPlies.
	MaxPlies int

	Logger *slog.Logger
}

// GameResult records a finished game.
type GameResult struct {
	ID      string `json:"id"`
	Black   string `json:"black"`
	White   string `json:"white"`
	Opening string `json:"opening,omitempty"`

	// Moves lists every reply as x+8y; a pass is protocol.PassIndex (-9).
	Moves []int `json:"moves"`

	BlackDiscs int `json:"black_discs"`
	WhiteDiscs int `json:"white_discs"`

	// CountsReported is false when no reply carried disc counts.
	CountsReported bool `json:"counts_reported"`

	Outcome Outcome `json:"outcome"`
	Reason  Reason  `json:"reason"`

	// Loser is set for time losses and forfeits.
	Loser string `json:"loser,omitempty"`
	Error string `json:"error,omitempty"`

	BlackMillisLeft int64 `json:"black_millis_left"`
	WhiteMillisLeft int64 `json:"white_millis_left"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Winner returns the name of the winning engine, or "" for a draw.
func (r *GameResult) Winner() string {
	switch r.Outcome {
	case OutcomeBlack:
		return r.Black
	case OutcomeWhite:
		return r.White
	default:
		return ""
	}
}

func (r *GameResult) name(side protocol.Side) string {
	if side == protocol.Black {
		return r.Black
	}

	return r.White
}

// award gives the whole board to the opponent of loser.
func (r *GameResult) award(loser protocol.Side, reason Reason) {
	r.Reason = reason
	r.Loser = r.name(loser)
	r.CountsReported = false

	if loser == protocol.Black {
		r.BlackDiscs, r.WhiteDiscs = 0, boardSquares
		r.Outcome = OutcomeWhite
	} else {
		r.BlackDiscs, r.WhiteDiscs = boardSquares, 0
		r.Outcome = OutcomeBlack
	}
}

func (r *GameResult) score() {
	switch {
	case r.BlackDiscs > r.WhiteDiscs:
		r.Outcome = OutcomeBlack
	case r.BlackDiscs < r.WhiteDiscs:
		r.Outcome = OutcomeWhite
	default:
		r.Outcome = OutcomeDraw
	}
}

// PlayGame plays one game and closes both players.
//
// Player failures are not errors: the failing side forfeits. An error is
// returned only when ctx is cancelled before the game ends.
func PlayGame(ctx context.Context, cfg GameConfig) (GameResult, error) {
	timeMillis := cfg.TimeMillis
	if timeMillis <= 0 {
		timeMillis = DefaultTimeMillis
	}

	maxPlies := cfg.MaxPlies
	if maxPlies <= 0 {
		maxPlies = DefaultMaxPlies
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	result := GameResult{
		ID:        ulid.Make().String(),
		Black:     cfg.Black.Name,
		White:     cfg.White.Name,
		Opening:   cfg.Opening,
		Moves:     []int{},
		StartedAt: time.Now().UTC(),
	}

	log = log.With("component", "match", "game_id", result.ID)
	log.Debug("Starting game", "black", result.Black, "white", result.White, "opening", cfg.Opening)

	players := [2]Player{
		cfg.Black.Factory(protocol.Black, cfg.Opening),
		cfg.White.Factory(protocol.White, cfg.Opening),
	}

	defer func() {
		closeCtx := context.WithoutCancel(ctx)

		for _, p := range players {
			if err := p.Close(closeCtx); err != nil {
				log.Warn("Failed to close player", "error", err)
			}
		}
	}()

	err := play(ctx, log, players, &result, timeMillis, maxPlies)
	result.Duration = time.Since(result.StartedAt)

	if err != nil {
		return result, err
	}

	log.Debug("Game finished",
		"outcome", result.Outcome,
		"reason", result.Reason,
		"black_discs", result.BlackDiscs,
		"white_discs", result.WhiteDiscs,
	)

	return result, nil
}

func play(
	ctx context.Context,
	log *slog.Logger,
	players [2]Player,
	result *GameResult,
	timeMillis int64,
	maxPlies int,
) error {
	for _, side := range []protocol.Side{protocol.Black, protocol.White} {
		if err := players[side].Start(ctx, side); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("start %s: %w", side, ctx.Err())
			}

			log.Warn("Player failed to start", "side", side.String(), "error", err)
			result.Error = err.Error()
			result.award(side, ReasonForfeit)

			return nil
		}
	}

	clocks := [2]int64{timeMillis, timeMillis}

	defer func() {
		result.BlackMillisLeft = clocks[protocol.Black]
		result.WhiteMillisLeft = clocks[protocol.White]
	}()

	var (
		last       *protocol.Move
		passedLast bool
	)

	for ply := 0; ; ply++ {
		if ply >= maxPlies {
			result.Reason = ReasonMoveLimit
			result.score()

			return nil
		}

		side := protocol.Side(ply % 2)

		start := time.Now()
		resp, err := players[side].RequestMove(ctx, last, clocks[side])
		clocks[side] -= time.Since(start).Milliseconds() + moveOverheadMillis

		if err != nil && ctx.Err() != nil {
			return fmt.Errorf("move %d: %w", ply+1, ctx.Err())
		}

		// End of output is a pass, like any player adapter treats it.
		if err != nil && !stderrors.Is(err, errors.ErrStreamClosed) {
			log.Warn("Player failed, forfeiting", "side", side.String(), "ply", ply+1, "error", err)
			result.Error = err.Error()
			result.award(side, ReasonForfeit)

			return nil
		}

		if clocks[side] <= 0 {
			log.Info("Time loss", "side", side.String(), "ply", ply+1)
			result.award(side, ReasonTime)

			return nil
		}

		last = resp.Move
		result.Moves = append(result.Moves, last.Index())

		if len(resp.Extra) >= 2 {
			result.BlackDiscs, result.WhiteDiscs = resp.Extra[0], resp.Extra[1]
			result.CountsReported = true
		}

		if last == nil {
			if passedLast {
				result.Reason = ReasonPasses
				result.score()

				return nil
			}

			passedLast = true
		} else {
			passedLast = false
		}
	}
}
