package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wagiedev/procplayer"
)

var (
	probeSide   string
	probeMillis int64
)

var probeCmd = &cobra.Command{
	Use:   "probe <program>",
	Short: "Start a program and ask it for an opening move",
	Long: `Start a program for one side, wait for its ready line, send an opening
request with no previous move, and print the reply.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		side, err := procplayer.ParseSide(probeSide)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return procplayer.WithPlayer(ctx, args[0], side, func(p *procplayer.ProcessPlayer) error {
			resp, err := p.RequestMove(ctx, nil, probeMillis)
			if err != nil {
				return fmt.Errorf("request move: %w", err)
			}

			if resp.IsPass() {
				fmt.Fprintln(cmd.OutOrStdout(), "pass")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "move %s\n", resp.Move)
			}

			if len(resp.Extra) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "extra %v\n", resp.Extra)
			}

			if usage := p.Usage(); usage.RSSKB > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "peak rss %d KB\n", usage.RSSKB)
			}

			return nil
		}, playerOptions(log)...)
	},
}

func init() {
	probeCmd.Flags().StringVar(&probeSide, "side", "Black", "Side to play (Black or White)")
	probeCmd.Flags().Int64Var(&probeMillis, "millis", 60000, "Milliseconds left reported to the program")
}
