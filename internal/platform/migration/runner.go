// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the SQL files under data/migrations with golang-migrate.
//
// Both the API server and the ingest CLI call [RunUp] before touching the
// catalogue tables. golang-migrate takes a PostgreSQL advisory lock, so two
// processes starting together apply each version once.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the "pgx5" database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Registers the "file" source scheme.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty reports a previous migration that failed halfway.
var ErrDirty = errors.New("migration: database is dirty")

// RunUp brings the schema at dsn up to the newest file in migrationsPath.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, convertToPgx5DSN(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := migrator.Close(); sourceErr != nil || dbErr != nil {
			logger.Warn("migration_close_failed", slog.Any("source_error", sourceErr), slog.Any("db_error", dbErr))
		}
	}()
	migrator.Log = &migrateLogger{logger: logger}

	from, err := version(migrator)
	if err != nil {
		return err
	}

	switch err := migrator.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("migration_already_up_to_date", slog.Uint64("version", uint64(from)))
		return nil
	case err != nil:
		return fmt.Errorf("migration: up from version %d failed: %w", from, err)
	}

	to, err := version(migrator)
	if err != nil {
		return err
	}
	logger.Info("migration_successful", slog.Uint64("from_version", uint64(from)), slog.Uint64("to_version", uint64(to)))
	return nil
}

// version returns the applied version, zero on an empty database.
func version(migrator *migrate.Migrate) (uint, error) {
	current, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("migration: failed to read version: %w", err)
	case dirty:
		return current, fmt.Errorf("%w at version %d", ErrDirty, current)
	}
	return current, nil
}

// convertToPgx5DSN rewrites postgres URLs to the scheme the pgx/v5 driver registers.
func convertToPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger routes golang-migrate output to slog at debug level.
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l *migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
