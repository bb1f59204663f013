// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil carries correlation values through [context.Context].
//
// A request ID is set by the HTTP middleware, a run ID by each ingestion run.
// An ingestion started over HTTP therefore logs both, which ties a reconciled
// comic back to the request that triggered it.
package ctxutil

import (
	"context"
	"log/slog"
)

// key is unexported so no other package can collide with these values.
type key int

const (
	keyRequestID key = iota
	keyRunID
	keyLogger
)

// # Request Tracing

// WithRequestID attaches the X-Request-ID value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// GetRequestID returns the request ID, empty outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// # Ingestion Tracing

// WithRunID attaches the ID of one ingestion run.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRunID, id)
}

// GetRunID returns the ingestion run ID, empty outside a run.
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(keyRunID).(string)
	return id
}

// # Structured Logging

// WithLogger attaches a request scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLogger returns the attached logger or [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	return LoggerOr(ctx, slog.Default())
}

// LoggerOr returns the attached logger or fallback. Services constructed with
// their own logger use it so that calls made inside a request keep request_id.
func LoggerOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
