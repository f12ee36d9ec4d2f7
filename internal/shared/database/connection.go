package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"planetinfo-server/internal/shared/config"

	_ "github.com/lib/pq"
)

// DB is the Postgres handle holding the persisted universe snapshot.
type DB struct {
	*sql.DB
}

type Tx struct {
	*sql.Tx
}

// Executor is the subset of *sql.DB and *sql.Tx the repositories use, so
// the same statement can run inside or outside a transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx}, nil
}

// Connect opens the Postgres pool. It returns a nil DB when persistence is
// disabled, which callers treat as "no snapshot store".
func Connect(ctx context.Context) (*DB, error) {
	cfg := config.GlobalConfig.Database
	logger := slog.With("component", "database", "operation", "connect")

	if !cfg.Enabled {
		logger.Info("Database disabled, universe index will not be persisted")
		return nil, nil
	}

	logger.Info("Connecting to database",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
		"sslmode", cfg.SSLMode,
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)

	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err, "host", cfg.Host, "database", cfg.Name)
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Error("Failed to close database after ping failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established", "host", cfg.Host, "database", cfg.Name)
	return &DB{sqlDB}, nil
}

func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}
