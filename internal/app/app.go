package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"TosdrCollector/internal/config"
	"TosdrCollector/internal/domain"
	"TosdrCollector/internal/infrastructure/cache"
	"TosdrCollector/internal/infrastructure/pacing"
	"TosdrCollector/internal/infrastructure/storage"
	"TosdrCollector/internal/infrastructure/tosdr"
	"TosdrCollector/internal/logging"
	"TosdrCollector/internal/ports"
	"TosdrCollector/internal/topics"
	"TosdrCollector/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	collector *usecase.Collector
	db        *sql.DB
}

// New builds a runnable application instance. The Postgres export is only
// wired when a DSN is configured.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	filter, err := topics.Load(cfg.Topics.Path)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	baseLogger.Debug("topics loaded",
		"path", cfg.Topics.Path,
		"bad", filter.Len(domain.ClassificationBad),
		"good", filter.Len(domain.ClassificationGood),
	)

	client := tosdr.NewClient(tosdr.Options{
		BaseURL:           cfg.API.BaseURL,
		APIKey:            cfg.API.APIKey,
		UserAgent:         cfg.API.UserAgent,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	}, baseLogger.With("component", "tosdr"))

	pacer := pacing.TimerPacer{}
	state := usecase.NewRunState(cache.NewMemory())

	resolver := usecase.NewResolver(state.Cases, client, pacer, cfg.Pacing.CaseDelay, baseLogger.With("component", "resolver"))
	aggregator := usecase.NewAggregator(resolver, filter, baseLogger.With("component", "aggregator"))
	processor := usecase.NewProcessor(client, aggregator, pacer, cfg.Pacing.ServiceDelay, baseLogger.With("component", "processor"))

	application := &Application{cfg: cfg}

	var exports []ports.TableWriter
	if dsn := cfg.Export.Postgres.DSN; dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open export database: %w", err)
		}
		export, err := storage.NewPostgresExport(db, cfg.Export.Postgres.Table)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		application.db = db
		exports = append(exports, export)
	}

	application.collector = usecase.NewCollector(usecase.CollectorDeps{
		State:           state,
		Lister:          client,
		Processor:       processor,
		Resolver:        resolver,
		Pacer:           pacer,
		Output:          storage.NewJSONFile(cfg.Output.Path),
		Exports:         exports,
		HasAPIKey:       cfg.API.APIKey != "",
		MissingKeyDelay: cfg.Pacing.MissingKeyDelay,
		ProgressEvery:   cfg.Pacing.ProgressEvery,
		Logger:          baseLogger.With("component", "collector"),
	})
	return application, nil
}

// Run performs a single collection.
func (a *Application) Run(ctx context.Context) error {
	if a.collector == nil {
		return nil
	}
	_, err := a.collector.Run(ctx)
	return err
}

// Close releases the export database, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
