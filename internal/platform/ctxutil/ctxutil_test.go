// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicvoice/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_RunID verifies that ingestion run IDs do not leak into the request ID slot.
*/
func TestContext_RunID(t *testing.T) {
	ctx := ctxutil.WithRunID(context.Background(), "run-1")

	assert.Equal(t, "run-1", ctxutil.GetRunID(ctx))
	assert.Empty(t, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_LoggerOr prefers the attached logger over the fallback.
*/
func TestContext_LoggerOr(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	attached := slog.New(slog.NewJSONHandler(io.Discard, nil))

	assert.Same(t, fallback, ctxutil.LoggerOr(context.Background(), fallback))

	ctx := ctxutil.WithLogger(context.Background(), attached)
	assert.Same(t, attached, ctxutil.LoggerOr(ctx, fallback))
}
