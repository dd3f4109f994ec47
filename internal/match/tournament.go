package match

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultParallel is the number of games a tournament runs at once.
const DefaultParallel = 3

// TournamentConfig configures a tournament between engines A and B.
type TournamentConfig struct {
	A Engine
	B Engine

	// Openings are played twice each, A as Black first. When empty, Pairs
	// pairs are played from the initial position.
	Openings []string
	Pairs    int

	// Shuffle plays the openings in random order.
	Shuffle bool

	TimeMillis int64
	MaxPlies   int

	// Parallel bounds concurrent games. Zero means DefaultParallel.
	Parallel int

	// OnResult is called once per finished game, never concurrently.
	// An error stops the tournament.
	OnResult func(GameResult, Standings) error

	Logger *slog.Logger
}

// Standings tallies a tournament from engine A's point of view.
type Standings struct {
	Games int `json:"games"`
	WinsA int `json:"wins_a"`
	WinsB int `json:"wins_b"`
	Draws int `json:"draws"`

	// WinsByColor counts Black and White wins; draws add half to each.
	WinsByColor [2]float64 `json:"wins_by_color"`
}

// Add counts a result in which A played Black when aIsBlack is set.
func (s *Standings) Add(r GameResult, aIsBlack bool) {
	s.Games++

	switch r.Outcome {
	case OutcomeBlack:
		s.WinsByColor[0]++

		if aIsBlack {
			s.WinsA++
		} else {
			s.WinsB++
		}
	case OutcomeWhite:
		s.WinsByColor[1]++

		if aIsBlack {
			s.WinsB++
		} else {
			s.WinsA++
		}
	default:
		s.Draws++
		s.WinsByColor[0] += 0.5
		s.WinsByColor[1] += 0.5
	}
}

// WhiteShare returns the fraction of decided points won by White.
func (s Standings) WhiteShare() float64 {
	total := s.WinsByColor[0] + s.WinsByColor[1]
	if total == 0 {
		return 0
	}

	return s.WinsByColor[1] / total
}

// String formats the standings as wins-losses-draws for A.
func (s Standings) String() string {
	return fmt.Sprintf("%d-%d-%d", s.WinsA, s.WinsB, s.Draws)
}

// RunTournament plays every opening twice with colours swapped and returns
// the final standings. Cancelling ctx stops games in progress; the
// standings collected so far are returned with the error.
func RunTournament(ctx context.Context, cfg TournamentConfig) (Standings, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	log = log.With("component", "tournament")

	openings := cfg.Openings
	if len(openings) == 0 {
		openings = make([]string, cfg.Pairs)
	} else {
		openings = append([]string(nil), openings...)
	}

	if cfg.Shuffle {
		rand.Shuffle(len(openings), func(i, j int) {
			openings[i], openings[j] = openings[j], openings[i]
		})
	}

	parallel := cfg.Parallel
	if parallel <= 0 {
		parallel = DefaultParallel
	}

	var (
		mu        sync.Mutex
		standings Standings
	)

	log.Info("Starting tournament",
		"a", cfg.A.Name,
		"b", cfg.B.Name,
		"games", 2*len(openings),
		"parallel", parallel,
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, opening := range openings {
		for _, aIsBlack := range []bool{true, false} {
			game := 2*i + 1
			if !aIsBlack {
				game++
			}

			g.Go(func() error {
				black, white := cfg.A, cfg.B
				if !aIsBlack {
					black, white = cfg.B, cfg.A
				}

				log.Debug("Starting game", "game", game)

				result, err := PlayGame(gCtx, GameConfig{
					Black:      black,
					White:      white,
					Opening:    opening,
					TimeMillis: cfg.TimeMillis,
					MaxPlies:   cfg.MaxPlies,
					Logger:     cfg.Logger,
				})
				if err != nil {
					return fmt.Errorf("game %d: %w", game, err)
				}

				mu.Lock()
				defer mu.Unlock()

				standings.Add(result, aIsBlack)
				log.Info("Game finished",
					"game", game,
					"outcome", result.Outcome,
					"reason", result.Reason,
					"score", standings.String(),
				)

				if cfg.OnResult != nil {
					if err := cfg.OnResult(result, standings); err != nil {
						return fmt.Errorf("game %d result: %w", game, err)
					}
				}

				return nil
			})
		}
	}

	err := g.Wait()

	mu.Lock()
	defer mu.Unlock()

	return standings, err
}
