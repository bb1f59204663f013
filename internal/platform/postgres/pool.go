// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the PostgreSQL connection pool behind the catalogue.
//
// # Sizing
//
// The API server reads far more than it writes, while the ingest CLI holds one
// transaction per comic in flight. Both size the pool through [Settings]; the
// store implementations live next to the domain they serve.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/comicvoice/internal/platform/constants"
)

const (
	defaultMaxConns   = 25
	maxConnLifetime   = 60 * time.Minute
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = 1 * time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

// Settings describes the pool a process needs.
type Settings struct {
	// DSN is a libpq keyword string or a postgres:// URL.
	DSN string

	// MaxConns caps open connections. Zero selects 25.
	MaxConns int32

	// StatementTimeout is applied to every new connection. Zero selects
	// [constants.GlobalRequestTimeout].
	StatementTimeout time.Duration
}

// minConns keeps a fifth of the pool warm, at least one connection.
func (settings Settings) minConns() int32 {
	return max(settings.MaxConns/5, 1)
}

func (settings Settings) withDefaults() Settings {
	if settings.MaxConns <= 0 {
		settings.MaxConns = defaultMaxConns
	}
	if settings.StatementTimeout <= 0 {
		settings.StatementTimeout = constants.GlobalRequestTimeout
	}
	return settings
}

// NewPool creates the pool and pings it once before returning.
//
// # Parameters
//   - ctx: Context for the initial connection attempt.
//   - settings: DSN and sizing.
//   - logger: Structured logger for pool-level events.
func NewPool(ctx context.Context, settings Settings, logger *slog.Logger) (*pgxpool.Pool, error) {
	settings = settings.withDefaults()

	poolConfig, err := pgxpool.ParseConfig(settings.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	poolConfig.MaxConns = settings.MaxConns
	poolConfig.MinConns = settings.minConns()
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	// Bounds runaway ILIKE searches and stuck ingestion transactions alike
	statementTimeout := fmt.Sprintf("SET statement_timeout = %d", settings.StatementTimeout.Milliseconds())
	poolConfig.AfterConnect = func(ctx context.Context, connection *pgx.Conn) error {
		_, err := connection.Exec(ctx, statementTimeout)
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.Int("max_conns", int(settings.MaxConns)),
		slog.Int("min_conns", int(poolConfig.MinConns)),
		slog.Duration("statement_timeout", settings.StatementTimeout),
	)

	return pool, nil
}

// Ping reports whether the database answers within a short deadline. The
// readiness probe calls it on every request.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}
