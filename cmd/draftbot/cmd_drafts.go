package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/replay"
	"github.com/ramonehamilton/mtga-draftbots/internal/storage"
)

func newImportDraftCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-draft <draft.yaml>",
		Short: "Import a recorded draft into the database",
		Long: `Import a recorded draft with its cards.

A draft without an id gets a new UUID. The stored id can be passed to replay,
pick, build and grade in place of a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := replay.LoadDraft(args[0])
			if err != nil {
				return err
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := storage.NewDraftRepository(db).Save(cmd.Context(), d)
			if err != nil {
				return err
			}
			a.logger.Info("imported draft", zap.String("id", id), zap.Int("seats", d.NumSeats()))
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newDraftsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drafts",
		Short: "List stored drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			drafts, err := storage.NewDraftRepository(db).List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(drafts) == 0 {
				fmt.Fprintln(out, "No drafts stored.")
				return nil
			}
			fmt.Fprintf(out, "%-38s %-6s %-6s %s\n", "ID", "Seats", "Packs", "Imported")
			for _, d := range drafts {
				fmt.Fprintf(out, "%-38s %-6d %-6d %s\n", d.ID, d.NumSeats, d.NumPacks, d.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
