package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mtga-draftbots/internal/config"
	"github.com/ramonehamilton/mtga-draftbots/internal/display"
	"github.com/ramonehamilton/mtga-draftbots/internal/logging"
	"github.com/ramonehamilton/mtga-draftbots/internal/metrics"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/replay"
	"github.com/ramonehamilton/mtga-draftbots/internal/storage"
)

var version = "dev"

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	dbPath     string
	debug      bool
	stats      bool

	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.EngineMetrics
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "draftbot",
		Short: "Draft bot scoring and deck building",
		Long: `draftbot evaluates draft picks with a weighted set of oracles, replays
recorded drafts from any seat's point of view and builds 40-card decks from
drafted pools.

Drafts and card catalogs can be read from YAML files or imported into a local
SQLite database.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to the config file (default ~/.mtga-draftbots/config.toml)")
	flags.StringVar(&a.dbPath, "db", "", "Path to the SQLite database (overrides the config file)")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&a.stats, "stats", false, "Print engine statistics when the command finishes")

	cmd.AddCommand(newImportCardsCommand(a))
	cmd.AddCommand(newCatalogsCommand(a))
	cmd.AddCommand(newImportDraftCommand(a))
	cmd.AddCommand(newDraftsCommand(a))
	cmd.AddCommand(newReplayCommand(a))
	cmd.AddCommand(newPickCommand(a))
	cmd.AddCommand(newBuildCommand(a))
	cmd.AddCommand(newGradeCommand(a))
	cmd.AddCommand(newProbTableCommand(a))

	return cmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.debug {
		cfg.Log.Debug = true
	}
	if a.dbPath != "" {
		cfg.Storage.Path = a.dbPath
	}
	a.cfg = cfg

	if a.logger, err = logging.New(cfg.Log); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	a.metrics = metrics.NewEngineMetrics()
	a.logger.Debug("configuration loaded", zap.String("path", path))
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) {
	if a.stats && a.metrics != nil {
		fmt.Fprintln(cmd.OutOrStdout())
		display.NewDraftPicksDisplayer(cmd.OutOrStdout(), nil).DisplayStats(a.metrics.Stats())
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// openDB opens the configured database, applying migrations.
func (a *app) openDB() (*storage.DB, error) {
	cfg := storage.DefaultConfig(a.cfg.Storage.Path)
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// loadDraft reads a draft from a file when source names one, and from the
// database by ID otherwise.
func (a *app) loadDraft(ctx context.Context, source string) (*replay.Draft, error) {
	if _, err := os.Stat(source); err == nil {
		a.logger.Debug("loading draft file", zap.String("path", source))
		return replay.LoadDraft(source)
	}

	db, err := a.openDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	a.logger.Debug("loading stored draft", zap.String("id", source))
	return storage.NewDraftRepository(db).Get(ctx, source)
}

func (a *app) newEngine(cards draft.Catalog) (*draft.Engine, error) {
	opts := append(a.cfg.EngineOptions(),
		draft.WithLogger(a.logger),
		draft.WithMetrics(a.metrics),
	)
	return draft.NewEngine(cards, opts...)
}

func (a *app) newReplayer() *replay.Replayer {
	return replay.New(replay.WithLogger(a.logger), replay.WithMetrics(a.metrics))
}
