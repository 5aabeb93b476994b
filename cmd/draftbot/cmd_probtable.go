package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/probtable"
)

func newProbTableCommand(a *app) *cobra.Command {
	var (
		out    string
		params = probtable.DefaultParams
	)

	cmd := &cobra.Command{
		Use:   "probtable",
		Short: "Generate the casting probability table",
		Long: `Compute the casting probability table from a hypergeometric deck model and
write it zstd-compressed in the format the engine embeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if params.Lands > params.DeckSize || params.HandSize <= 0 {
				return fmt.Errorf("invalid deck model: %d lands in %d cards, hand of %d", params.Lands, params.DeckSize, params.HandSize)
			}

			start := time.Now()
			table, err := probtable.Generate(cmd.Context(), params)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := probtable.Encode(f, table); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}

			a.logger.Info("generated probability table",
				zap.String("path", out),
				zap.Duration("elapsed", time.Since(start)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Probability table written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "probtable_v1.bin.zst", "Output file")
	cmd.Flags().IntVar(&params.DeckSize, "deck-size", params.DeckSize, "Cards in the deck")
	cmd.Flags().IntVar(&params.Lands, "lands", params.Lands, "Lands in the deck")
	cmd.Flags().IntVar(&params.HandSize, "hand-size", params.HandSize, "Opening hand size")

	return cmd
}
