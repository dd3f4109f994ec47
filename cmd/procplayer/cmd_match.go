package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wagiedev/procplayer"
	"github.com/wagiedev/procplayer/internal/match"
	"github.com/wagiedev/procplayer/internal/protocol"
	"github.com/wagiedev/procplayer/internal/results"
)

var (
	matchGames    int
	matchTimeMS   int64
	matchParallel int
	matchResults  string
	matchBook     string
	matchShuffle  bool
)

var matchCmd = &cobra.Command{
	Use:   "match <programA> <programB>",
	Short: "Play a tournament between two programs",
	Long: `Play pairs of games between two programs, swapping colours within each
pair. With --book, every line of the book is an opening passed to both
programs as extra arguments and played once per colour; otherwise --games
pairs are played from the initial position.

Each game ends after two consecutive passes. A program that runs out of
clock loses 0-64, as does one that fails to start or answer.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		openings, err := loadOpenings(matchBook)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var store *results.Store
		if matchResults != "" {
			store = results.NewStore(matchResults, log)
		}

		out := cmd.OutOrStdout()
		opts := playerOptions(log)

		standings, err := match.RunTournament(ctx, match.TournamentConfig{
			A:          engineFor(args[0], "A", opts),
			B:          engineFor(args[1], "B", opts),
			Openings:   openings,
			Pairs:      matchGames,
			Shuffle:    matchShuffle,
			TimeMillis: matchTimeMS,
			Parallel:   matchParallel,
			Logger:     log,
			OnResult: func(r match.GameResult, s match.Standings) error {
				if r.Reason == match.ReasonTime {
					fmt.Fprintf(out, "Time loss at move %d by %s\n", len(r.Moves), r.Loser)
				} else {
					fmt.Fprintf(out, "%d-%d\n", r.BlackDiscs, r.WhiteDiscs)
				}

				fmt.Fprintf(out, "Game %d finished: %s\n", s.Games, s)

				if s.Games%100 == 0 {
					fmt.Fprintf(out, "White %%: %.3f\n", s.WhiteShare())
				}

				if store == nil {
					return nil
				}

				return store.Append(ctx, r)
			},
		})

		fmt.Fprintf(out, "Final: %s (A wins-B wins-draws), White %%: %.3f\n", standings, standings.WhiteShare())

		return err
	},
}

// engineFor creates players for program. The opening, when set, is appended
// to the program's arguments.
func engineFor(program, label string, opts []procplayer.Option) match.Engine {
	return match.Engine{
		Name: label + ":" + filepath.Base(program),
		Factory: func(_ protocol.Side, opening string) match.Player {
			playerOpts := append([]procplayer.Option(nil), opts...)
			if fields := strings.Fields(opening); len(fields) > 0 {
				playerOpts = append(playerOpts, procplayer.WithArgs(fields...))
			}

			return procplayer.NewProcessPlayer(program, playerOpts...)
		},
	}
}

// loadOpenings reads one opening per non-empty line of path.
func loadOpenings(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}
	defer f.Close()

	var openings []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			openings = append(openings, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read book: %w", err)
	}

	if len(openings) == 0 {
		return nil, fmt.Errorf("book %s has no openings", path)
	}

	return openings, nil
}

func init() {
	matchCmd.Flags().IntVarP(&matchGames, "games", "n", 1, "Number of colour-swapped pairs to play without a book")
	matchCmd.Flags().Int64Var(&matchTimeMS, "time-ms", match.DefaultTimeMillis, "Clock per side per game in milliseconds")
	matchCmd.Flags().IntVarP(&matchParallel, "parallel", "p", match.DefaultParallel, "Games to run at once")
	matchCmd.Flags().StringVar(&matchResults, "results", "", "Append results to this JSON-lines file")
	matchCmd.Flags().StringVar(&matchBook, "book", "", "File with one opening per line")
	matchCmd.Flags().BoolVar(&matchShuffle, "shuffle", false, "Play book openings in random order")
}
