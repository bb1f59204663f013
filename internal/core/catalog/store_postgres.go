// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog provides the PostgreSQL implementation for the catalogue's data access.

It leans on a handful of PostgreSQL features to keep re-ingestion idempotent:
  - Upserts: INSERT ... ON CONFLICT on each natural key, so re-reading a source never duplicates rows.
  - Insert Detection: RETURNING (xmax = 0) distinguishes fresh inserts from updates in one round-trip.
  - ACID Transactions: One comic's reconciliation is applied completely or not at all.

The same repository instance serves both the pool and an open transaction through
the [querier] abstraction.
*/
package catalog

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
)

// querier is the subset of pgx shared by [pgxpool.Pool] and [pgx.Tx].
type querier interface {
	Exec(context context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(context context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(context context.Context, sql string, arguments ...any) pgx.Row
}

// scanner is satisfied by both [pgx.Row] and [pgx.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// # PostgreSQL Repository

// postgresStore implements the [Store] interface using pgx.
type postgresStore struct {
	pool *pgxpool.Pool // nil inside a transaction
	db   querier
}

// NewPostgresStore constructs a PostgreSQL backed catalogue store.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool, db: pool}
}

/*
WithinTx executes fn inside a single database transaction.

Description: Begins a transaction on the pool and hands fn a store bound to it.
The transaction is rolled back on any error (the deferred Rollback is a no-op
after a successful Commit). Nested calls reuse the outer transaction.

Parameters:
  - context: context.Context
  - fn: func(Store) error

Returns:
  - error: fn's error or a storage failure
*/
func (repository *postgresStore) WithinTx(context context.Context, fn func(tx Store) error) error {

	// Already transactional
	if repository.pool == nil {
		return fn(repository)
	}

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return apperr.StorageFailure("begin transaction", err)
	}
	defer transaction.Rollback(context)

	if err := fn(&postgresStore{db: transaction}); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return apperr.StorageFailure("commit transaction", err)
	}
	return nil
}

// # Helpers

// columnList renders a comma-separated column list.
func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}

// likePattern wraps the query into a substring ILIKE pattern, escaping LIKE metacharacters.
func likePattern(query string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(query) + "%"
}
