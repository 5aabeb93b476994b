package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
	"github.com/ramonehamilton/mtga-draftbots/internal/storage"
)

func newImportCardsCommand(a *app) *cobra.Command {
	var catalog string

	cmd := &cobra.Command{
		Use:   "import-cards <cards.yaml>",
		Short: "Import a card catalog into the database",
		Long: `Import a YAML or JSON list of card records as a named catalog.

Importing under an existing name replaces that catalog. The catalog name
defaults to the file name without its extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := draft.LoadCards(args[0])
			if err != nil {
				return err
			}
			if catalog == "" {
				catalog = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := storage.NewCatalogRepository(db).ReplaceCatalog(cmd.Context(), catalog, cards); err != nil {
				return err
			}
			a.logger.Info("imported catalog", zap.String("catalog", catalog), zap.Int("cards", len(cards)))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cards into catalog %q\n", len(cards), catalog)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalog, "catalog", "", "Catalog name")

	return cmd
}

func newCatalogsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs",
		Short: "List stored card catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			catalogs, err := storage.NewCatalogRepository(db).Catalogs(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(catalogs) == 0 {
				fmt.Fprintln(out, "No catalogs stored.")
				return nil
			}
			fmt.Fprintf(out, "%-40s %s\n", "Catalog", "Cards")
			for _, c := range catalogs {
				fmt.Fprintf(out, "%-40s %d\n", c.Name, c.Cards)
			}
			return nil
		},
	}
}
