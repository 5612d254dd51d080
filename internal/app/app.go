// Package app wires configuration into a running ledger. It is shared by the
// HTTP server and the command-line client so both open the same store the
// same way. No business logic belongs here.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/railbook/internal/config"
	"github.com/pkordes/railbook/internal/events"
	"github.com/pkordes/railbook/internal/repo"
	"github.com/pkordes/railbook/internal/seed"
	"github.com/pkordes/railbook/internal/service"
	"github.com/pkordes/railbook/migrations"
)

// NewLogger returns a JSON slog.Logger writing to w at the configured level.
func NewLogger(cfg config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

// Runtime holds the opened ledger and the resources behind it.
type Runtime struct {
	Ledger  *service.Ledger
	Reports *service.ReportService

	closers []func()
}

// Close releases every resource opened by Open, newest first.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// Open builds the store selected by cfg, connects the optional event
// publisher and opens the ledger, seeding it when the store is empty.
// On error everything opened so far is released.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *Runtime, err error) {
	rt := &Runtime{}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	store, err := rt.openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	seeds := seed.Default()
	if cfg.SeedFile != "" {
		seeds = seed.FromFile(cfg.SeedFile)
	}
	logger.DebugContext(ctx, "seed dataset selected", "seed", seeds.String())

	opts := service.LedgerOptions{Logger: logger}
	if cfg.AMQPURL != "" {
		pub, err := events.Dial(cfg.AMQPURL, logger)
		if err != nil {
			return nil, fmt.Errorf("app.Open: %w", err)
		}
		rt.closers = append(rt.closers, func() {
			if err := pub.Close(); err != nil {
				logger.Warn("event publisher close", "error", err)
			}
		})
		opts.Notifier = pub
		logger.InfoContext(ctx, "booking events enabled", "exchange", events.ExchangeName)
	}

	ledger, err := service.OpenLedger(ctx, store, seeds, opts)
	if err != nil {
		return nil, fmt.Errorf("app.Open: %w", err)
	}
	rt.Ledger = ledger
	rt.Reports = service.NewReportService(ledger)
	return rt, nil
}

func (rt *Runtime) openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repo.Gateway, error) {
	if cfg.StoreDriver != config.DriverPostgres {
		logger.InfoContext(ctx, "using file store", "path", cfg.DataFile)
		return repo.NewFileGateway(cfg.DataFile, logger), nil
	}

	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("app.Open: create database pool: %w", err)
	}
	rt.closers = append(rt.closers, pool.Close)

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("app.Open: connect to database: %w", err)
	}

	// goose needs database/sql; borrow a handle over the same pool.
	db := stdlib.OpenDBFromPool(pool)
	applied, err := migrations.Up(ctx, db)
	db.Close()
	if err != nil {
		return nil, fmt.Errorf("app.Open: %w", err)
	}
	logger.InfoContext(ctx, "using postgres store", "migrations_applied", applied)

	return repo.NewPostgresGateway(pool), nil
}
