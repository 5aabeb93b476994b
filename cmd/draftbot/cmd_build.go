package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/replay"
)

func newBuildCommand(a *app) *cobra.Command {
	var (
		seat  int
		out   string
		arena bool
	)

	cmd := &cobra.Command{
		Use:   "build <draft>",
		Short: "Build a deck from a seat's drafted pool",
		Long: `Build a 40-card deck from everything a seat drafted.

The deck summary shows the colors, curve and mana sources. --arena prints the
deck in MTGA import format and --out writes that format to a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.loadDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state, err := a.newReplayer().Replay(d, seat, replay.AtEnd())
			if err != nil {
				return err
			}
			engine, err := a.newEngine(d.Cards)
			if err != nil {
				return err
			}

			deck, err := engine.BuildDeck(cmd.Context(), state.Picked, d.Basics)
			var failure *draft.BuildFailure
			if errors.As(err, &failure) {
				a.logger.Warn("pool cannot fill a deck",
					zap.Int("seat", seat),
					zap.Int("pool", len(state.Picked)),
					zap.Int("missing_nonlands", failure.MissingNonlands),
					zap.Int("missing_lands", failure.MissingLands),
				)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprint(w, draft.FormatDeckSummary(deck))
			if arena {
				fmt.Fprintln(w)
				fmt.Fprint(w, engine.ExportArena(deck))
			}
			if out != "" {
				if err := engine.ExportDeckToFile(deck, out); err != nil {
					return fmt.Errorf("export deck: %w", err)
				}
				fmt.Fprintf(w, "\nDeck written to %s\n", out)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&seat, "seat", 0, "Seat whose pool to build")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the deck in MTGA format to this file")
	cmd.Flags().BoolVar(&arena, "arena", false, "Print the deck in MTGA format")

	return cmd
}
