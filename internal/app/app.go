// Package app builds the services shared by the worker and the CLI from
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/fingenius/internal/ai"
	"github.com/dvloznov/fingenius/internal/config"
	"github.com/dvloznov/fingenius/internal/gcsuploader"
	"github.com/dvloznov/fingenius/internal/infra/bigquery"
	"github.com/dvloznov/fingenius/internal/infra/inmemory"
	"github.com/dvloznov/fingenius/internal/infra/postgres"
	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/dvloznov/fingenius/internal/mailer"
	"github.com/dvloznov/fingenius/internal/receipts"
	"github.com/dvloznov/fingenius/internal/report"
	"github.com/dvloznov/fingenius/internal/repository"
	"github.com/dvloznov/fingenius/internal/transactions"
	"github.com/dvloznov/fingenius/internal/users"
)

// App holds the wired services.
type App struct {
	Config *config.Config
	Store  repository.Store

	Users        *users.Service
	Transactions *transactions.Service
	Reports      *report.Service
	Runner       *report.Runner
	Scanner      *receipts.Scanner

	// Receipts is nil when no bucket is configured.
	Receipts gcsuploader.ReceiptStore

	closers []func() error
}

// Deps are the external collaborators. Nil Generator disables insights and
// receipt scanning; nil Receipts disables uploads.
type Deps struct {
	Store     repository.Store
	Generator ai.TextGenerator
	Mailer    report.Mailer
	Receipts  gcsuploader.ReceiptStore
}

// New opens the configured backends and wires every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.FromContext(ctx)

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps := Deps{
		Store:  store,
		Mailer: mailer.NewResendDispatcher(cfg.ResendAPIKey, cfg.MailerSender),
	}
	closers := []func() error{store.Close}

	if cfg.GeminiAPIKey != "" {
		gen, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("app.New: %w", err)
		}
		deps.Generator = gen
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, insights and receipt scanning are disabled")
	}

	if cfg.ResendAPIKey == "" {
		log.Warn().Msg("RESEND_API_KEY not set, report emails will fail")
	}

	if cfg.GCSBucket != "" {
		gcs, err := gcsuploader.NewClient(ctx, cfg.GCSBucket)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("app.New: %w", err)
		}
		deps.Receipts = gcs
		closers = append(closers, gcs.Close)
	}

	a, err := Wire(cfg, deps)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	a.closers = closers
	return a, nil
}

// Wire builds the services from already opened dependencies.
func Wire(cfg *config.Config, deps Deps) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	aggregator := report.NewAggregator(deps.Store)
	insights := report.NewInsightGenerator(deps.Generator)

	return &App{
		Config:       cfg,
		Store:        deps.Store,
		Users:        users.NewService(deps.Store, deps.Store),
		Transactions: transactions.NewService(deps.Store),
		Reports:      report.NewService(deps.Store, deps.Store, deps.Store, aggregator, insights),
		Runner: report.NewRunner(deps.Store, deps.Store, aggregator, insights, deps.Mailer,
			report.WithLocation(loc)),
		Scanner:  receipts.NewScanner(deps.Generator, deps.Receipts),
		Receipts: deps.Receipts,
	}, nil
}

// OpenStore connects to the backend named by cfg.StorageBackend.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendBigQuery:
		return bigquery.NewStore(ctx, cfg.GCPProjectID, cfg.BQDataset)
	case config.BackendPostgres:
		pool, err := postgres.ConnectDB(ctx, cfg.DatabaseURL, logger.FromContext(ctx))
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(pool), nil
	case config.BackendMemory:
		return inmemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("OpenStore: unknown backend %q", cfg.StorageBackend)
	}
}

// Close releases every backend opened by New.
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
