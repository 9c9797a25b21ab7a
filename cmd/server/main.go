package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/p-n-ai/pai-practice/internal/catalog"
	"github.com/p-n-ai/pai-practice/internal/coach"
	"github.com/p-n-ai/pai-practice/internal/notify"
	"github.com/p-n-ai/pai-practice/internal/platform/cache"
	"github.com/p-n-ai/pai-practice/internal/platform/config"
	"github.com/p-n-ai/pai-practice/internal/platform/database"
	"github.com/p-n-ai/pai-practice/internal/practice"
	"github.com/p-n-ai/pai-practice/internal/server"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.close()

	if cfg.Reminder.Enabled {
		if err := a.reminder.Start(); err != nil {
			slog.Error("failed to start reminder", "error", err)
			os.Exit(1)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "driver", cfg.Database.Driver, "cache", cfg.HasCache())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogger builds the process logger from config. Unknown levels fall back
// to info; any format other than "text" logs JSON.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// app is the wired service.
type app struct {
	engine   *coach.Engine
	handler  http.Handler
	reminder *coach.Reminder
	closers  []func()
}

func (a *app) close() {
	if a.reminder != nil {
		a.reminder.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp connects the configured backends and builds the HTTP handler.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	var opts []server.Option
	engineCfg := coach.EngineConfig{}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			a.close()
			return nil, err
		}
		store, err := coach.NewPostgresStore(db.Pool)
		if err != nil {
			a.close()
			return nil, err
		}
		engineCfg.Attempts = store
		engineCfg.EventLogger = coach.NewPostgresEventLogger(db.Pool)
		opts = append(opts, server.WithHealthCheck("database", db.HealthCheck))

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { db.Close() })
		store, err := coach.NewSQLiteStore(db)
		if err != nil {
			a.close()
			return nil, err
		}
		engineCfg.Attempts = store
		opts = append(opts, server.WithHealthCheck("database", db.PingContext))
	}

	if cfg.HasCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, func() { c.Close() })
		engineCfg.Levels = coach.NewRedisLevels(c)
		engineCfg.Issued = coach.NewRedisIssued(c, cfg.Practice.IssuedTTL)
		opts = append(opts, server.WithHealthCheck("cache", c.HealthCheck))
	} else {
		engineCfg.Issued = coach.NewMemoryIssued(cfg.Practice.IssuedTTL)
	}

	cat, err := catalog.NewLoader(cfg.CatalogPath)
	if err != nil {
		a.close()
		return nil, err
	}
	engineCfg.Catalog = cat

	sched, err := practice.NewScheduler(cfg.Practice.ReviewIntervals())
	if err != nil {
		a.close()
		return nil, err
	}
	engineCfg.Scheduler = sched
	engineCfg.Policy = practice.AdaptPolicy{
		Window:    cfg.Practice.AdaptWindow,
		PromoteAt: cfg.Practice.PromoteAt,
		DemoteAt:  cfg.Practice.DemoteAt,
	}
	if cfg.Practice.Seed != 0 {
		engineCfg.Generator = practice.NewSeededGenerator(uint64(cfg.Practice.Seed))
	}

	var notifier coach.Notifier = coach.LogNotifier{}
	if cfg.Reminder.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.Reminder.TelegramToken)
		if err != nil {
			a.close()
			return nil, err
		}
		notifier = tg
	}

	a.engine = coach.NewEngine(engineCfg)
	a.reminder = coach.NewReminder(a.engine, notifier, cfg.Reminder.Interval)
	a.handler = server.New(a.engine, append(opts, server.WithParentPIN(cfg.Parent.PINHash))...)
	return a, nil
}
