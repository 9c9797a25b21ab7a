// Command practice runs arithmetic practice from the terminal against a
// local SQLite attempt log.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-practice/internal/catalog"
	"github.com/p-n-ai/pai-practice/internal/coach"
	"github.com/p-n-ai/pai-practice/internal/platform/config"
	"github.com/p-n-ai/pai-practice/internal/platform/database"
	"github.com/p-n-ai/pai-practice/internal/practice"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options are the persistent flags shared by every subcommand.
type options struct {
	dbPath      string
	catalogPath string
	learner     string
	seed        uint64
	cfg         *config.Config
}

func newRootCmd() *cobra.Command {
	cfg, _ := config.Load()
	opts := &options{cfg: cfg}

	root := &cobra.Command{
		Use:   "practice",
		Short: "Adaptive arithmetic practice with spaced review",
		Long: `Practice generates arithmetic exercises at your current level,
moves the level up or down as you answer, and brings missed
exercises back for review after 1, 3 and 7 days.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", cfg.Database.SQLitePath, "SQLite attempt log")
	flags.StringVar(&opts.catalogPath, "catalog", cfg.CatalogPath, "skill catalog directory")
	flags.StringVarP(&opts.learner, "learner", "l", "me", "learner id")
	flags.Uint64Var(&opts.seed, "seed", uint64(max(cfg.Practice.Seed, 0)), "random seed (0 for random)")

	root.AddCommand(
		newGenerateCmd(opts),
		newAnswerCmd(opts),
		newDueCmd(opts),
		newLevelCmd(opts),
		newReportCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newClearCmd(opts),
	)
	return root
}

func (o *options) generator() *practice.Generator {
	if o.seed == 0 {
		return practice.NewGenerator(nil)
	}
	return practice.NewSeededGenerator(o.seed)
}

// open wires an engine over the SQLite log. Levels are rebuilt from history
// since they are not persisted locally.
func (o *options) open(ctx context.Context) (*coach.Engine, func(), error) {
	db, err := database.OpenSQLite(ctx, o.dbPath)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { db.Close() }

	store, err := coach.NewSQLiteStore(db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	cat, err := catalog.NewLoader(o.catalogPath)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	sched, err := practice.NewScheduler(o.cfg.Practice.ReviewIntervals())
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	engine := coach.NewEngine(coach.EngineConfig{
		Attempts:  store,
		Catalog:   cat,
		Generator: o.generator(),
		Scheduler: sched,
		Policy: practice.AdaptPolicy{
			Window:    o.cfg.Practice.AdaptWindow,
			PromoteAt: o.cfg.Practice.PromoteAt,
			DemoteAt:  o.cfg.Practice.DemoteAt,
		},
	})
	if err := engine.RestoreLevels(ctx, o.learner); err != nil {
		closeDB()
		return nil, nil, err
	}
	return engine, closeDB, nil
}
