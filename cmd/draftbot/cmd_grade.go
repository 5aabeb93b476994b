package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mtga-draftbots/internal/display"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/pickquality"
	"github.com/ramonehamilton/mtga-draftbots/internal/storage"
)

func newGradeCommand(a *app) *cobra.Command {
	var (
		seat int
		save bool
	)

	cmd := &cobra.Command{
		Use:   "grade <draft>",
		Short: "Grade a seat's picks against the bot",
		Long: `Replay every pick a seat made and rank the picked card among the pack by
bot score. Rank 1 grades A+, ranks past 10 grade F.

With --save the grades are stored with the draft. A draft read from a file is
imported first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.loadDraft(ctx, args[0])
			if err != nil {
				return err
			}
			engine, err := a.newEngine(d.Cards)
			if err != nil {
				return err
			}

			analyzer := pickquality.NewAnalyzer(engine, a.newReplayer(), a.logger)
			grades, err := analyzer.AnalyzeSeat(ctx, d, seat)
			if err != nil {
				return err
			}
			display.NewDraftPicksDisplayer(cmd.OutOrStdout(), d.Cards).DisplayGrades(grades)

			if !save {
				return nil
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			repo := storage.NewDraftRepository(db)
			if _, err := os.Stat(args[0]); err == nil {
				if d.ID, err = repo.Save(ctx, d); err != nil {
					return err
				}
			}
			if err := repo.SaveGrades(ctx, d.ID, seat, grades); err != nil {
				return err
			}
			a.logger.Info("saved pick grades", zap.String("draft", d.ID), zap.Int("seat", seat), zap.Int("picks", len(grades)))
			fmt.Fprintf(cmd.OutOrStdout(), "\nGrades saved for draft %s\n", d.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&seat, "seat", 0, "Seat to grade")
	cmd.Flags().BoolVar(&save, "save", false, "Store the grades in the database")

	return cmd
}
