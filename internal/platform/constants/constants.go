// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Ingestion: Scraper timeouts, lock naming and worker defaults.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "comicvoice-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Synchronous ingestion runs inside a request, so this outlives [ScraperTimeout].
	DefaultWriteTimeout = 90 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for read endpoints.
	GlobalRequestTimeout = 30 * time.Second

	// IngestRequestTimeout is the deadline for a synchronous ingestion request.
	IngestRequestTimeout = 80 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// IngestRateLimitRPS throttles the ingestion endpoint, which drives the scraper.
	IngestRateLimitRPS = 0.2

	// IngestRateLimitBurst lets a client queue a few comics at once.
	IngestRateLimitBurst = 3
)

// # Ingestion

const (
	// ScraperTimeout bounds a single scraper round-trip.
	ScraperTimeout = 60 * time.Second

	// DefaultIngestLockTTL is how long an ingestion lock survives a crashed holder.
	DefaultIngestLockTTL = 5 * time.Minute

	// DefaultIngestConcurrency is the number of comics ingested in parallel by the CLI.
	DefaultIngestConcurrency = 4
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixIngestLock namespaces the per-source ingestion mutex.
	RedisPrefixIngestLock = "ingest:lock:"
)
