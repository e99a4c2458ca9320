package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/config"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/db"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/metrics"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/ports"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/posfile"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/repository"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/service"
)

// app holds what every command needs: the editor over the configured store and
// the resources to release when the command ends.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	editor   *service.Editor
	catalogs ports.CatalogLister
	metrics  *metrics.Recorder
	health   []ports.HealthChecker
	closers  []func()
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newApp opens the store selected by cfg.StoreDriver and restores the catalog.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	var (
		store   ports.CatalogStore
		journal ports.ChangeJournal
		prefs   ports.PreferenceStore
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := db.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		a.health = append(a.health, pg)
		if err := pg.Migrate(ctx); err != nil {
			a.close()
			return nil, err
		}
		store = repository.CatalogRepository{DB: pg}
		a.catalogs = repository.CatalogRepository{DB: pg}
		journal = repository.ChangeJournalRepository{DB: pg}
		prefs = repository.PreferencesRepository{DB: pg}
	case config.DriverBadger:
		b, err := db.OpenBadger(cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := b.Close(); err != nil {
				logger.Warn("close badger", "err", err)
			}
		})
		a.health = append(a.health, b)
		repo := repository.BadgerCatalogRepository{DB: b}
		store, prefs, a.catalogs = repo, repo, repo
		journal = repository.BadgerJournalRepository{DB: b}
	default:
		files := repository.FileRepository{Dir: cfg.SessionDir}
		store, prefs, a.catalogs = files, files, files
		// the file driver keeps its journal next to the session documents
		b, err := db.OpenBadger(config.Config{BadgerDir: cfg.BadgerDir})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = b.Close() })
		a.health = append(a.health, b)
		journal = repository.BadgerJournalRepository{DB: b}
	}

	eol, err := posfile.ParseLineEnding(cfg.LineEnding)
	if err != nil {
		a.close()
		return nil, err
	}

	a.editor = service.NewEditor(cfg.CatalogName, store, logger)
	a.editor.Prefs = prefs
	a.editor.Metrics = a.metrics
	a.editor.LineEnding = eol
	if cfg.JournalEnabled {
		a.editor.Journal = journal
	}

	if err := a.editor.Restore(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// check probes every opened dependency.
func (a *app) check(ctx context.Context) error {
	for _, h := range a.health {
		if err := h.Health(ctx); err != nil {
			return fmt.Errorf("health: %w", err)
		}
	}
	return nil
}

func (a *app) close() {
	if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		a.logger.Warn("write metrics", "err", err)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
