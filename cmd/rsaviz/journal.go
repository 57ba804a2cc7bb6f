package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/rsaviz/internal/config"
	"github.com/udisondev/rsaviz/internal/db"
	"github.com/udisondev/rsaviz/internal/dh"
	"github.com/udisondev/rsaviz/internal/rsakey"
)

// journalWriter is the part of db.JournalRepository the commands need.
type journalWriter interface {
	RecordKey(ctx context.Context, source string, k rsakey.KeyMaterial) (int64, error)
	RecordExchange(ctx context.Context, x dh.Exchange) (int64, error)
}

func openJournal(ctx context.Context, cfg config.DatabaseConfig) (journalWriter, func(), error) {
	if err := db.RunMigrations(ctx, cfg.DSN()); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	database, err := db.New(ctx, cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("run journal enabled", "host", cfg.Host, "dbname", cfg.DBName)
	return database.Journal(), database.Close, nil
}

// recorder writes to the journal when one is configured. Journal failures
// are logged and never abort the session.
type recorder struct {
	ctx     context.Context
	journal journalWriter
}

func (r recorder) key(source string) func(rsakey.KeyMaterial) {
	return func(k rsakey.KeyMaterial) {
		slog.Debug("key derived", "source", source, "key", k)
		if r.journal == nil {
			return
		}
		if _, err := r.journal.RecordKey(r.ctx, source, k); err != nil {
			slog.Warn("journal write failed", "source", source, "err", err)
		}
	}
}

func (r recorder) exchange(x dh.Exchange) {
	if r.journal == nil {
		return
	}
	if _, err := r.journal.RecordExchange(r.ctx, x); err != nil {
		slog.Warn("journal write failed", "source", "mitm", "err", err)
	}
}
