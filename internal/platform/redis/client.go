// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects the distributed ingestion lock to its Redis server.

Every API replica and CLI run that targets the same source URL serialises through
one TTL-guarded key, so two reconciliations of one comic never interleave. Lock
traffic is a SET NX and a short script per ingestion, so the pool stays small.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/comicvoice/internal/platform/constants"
)

const (
	poolSize    = 4
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second
	maxRetries  = 2
)

// options parses redisURL and applies the lock client tuning. A database
// number or credentials in the URL are kept.
func options(redisURL string) (*redis.Options, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	parsed.ClientName = constants.AppName
	parsed.PoolSize = poolSize
	parsed.MinIdleConns = 1
	parsed.MaxRetries = maxRetries
	parsed.DialTimeout = dialTimeout
	parsed.ReadTimeout = ioTimeout
	parsed.WriteTimeout = ioTimeout
	return parsed, nil
}

// NewClient returns a client that has answered one PING.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	parsed, err := options(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(parsed)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", parsed.Addr),
		slog.Int("db", parsed.DB),
	)
	return client, nil
}

// Ping backs the readiness check for the lock backend.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
