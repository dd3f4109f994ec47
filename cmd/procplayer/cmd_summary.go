package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wagiedev/procplayer/internal/results"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <results.jsonl>",
	Short: "Summarize stored match results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		stored, err := results.NewStore(args[0], log).ReadAll(context.Background())
		if err != nil {
			return err
		}

		sum := results.Summarize(stored)
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Games: %d  Time losses: %d  Forfeits: %d\n", sum.Games, sum.TimeLosses, sum.Forfeits)
		fmt.Fprintf(out, "Black %.1f  White %.1f\n\n", sum.WinsByColor[0], sum.WinsByColor[1])

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ENGINE\tGAMES\tWINS\tLOSSES\tDRAWS\tPOINTS")

		for _, e := range sum.Engines {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.1f\n", e.Name, e.Games, e.Wins, e.Losses, e.Draws, e.Points)
		}

		return w.Flush()
	},
}
