// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
merged in first through 'joho/godotenv' when present; real environment variables
always win over the file.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, scraper) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/comicvoice/internal/platform/constants"
	"github.com/taibuivan/comicvoice/internal/platform/postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the comic mirror.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL              string        `env:"DATABASE_URL,required"`
	DatabaseMaxConns         int32         `env:"DATABASE_MAX_CONNS"         envDefault:"25"`
	DatabaseStatementTimeout time.Duration `env:"DATABASE_STATEMENT_TIMEOUT" envDefault:"30s"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis). Empty selects the in-process ingestion lock.
	RedisURL string `env:"REDIS_URL"`

	// Ingestion collaborators
	ScraperURL    string        `env:"SCRAPER_URL"`
	FixtureDir    string        `env:"FIXTURE_DIR"`
	IngestLockTTL time.Duration `env:"INGEST_LOCK_TTL"`

	// Cross-Origin Resource Sharing, comma separated
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load merges an optional '.env' file into the environment and parses it into a [Config].
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is [Load] with explicit dotenv file names. Missing files are ignored.
func LoadFiles(filenames ...string) (*Config, error) {

	// 1. Merge dotenv files without overriding the real environment
	for _, filename := range filenames {
		if err := godotenv.Load(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to read %s: %w", filename, err)
		}
	}

	// 2. Map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// 3. Derived defaults
	if cfg.IngestLockTTL <= 0 {
		cfg.IngestLockTTL = constants.DefaultIngestLockTTL
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsOriginAllowed reports whether a browser origin appears in EXTRA_ORIGINS.
func (c *Config) IsOriginAllowed(origin string) bool {
	for _, allowed := range c.ExtraOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}

// Database returns the pool settings for the configured database.
func (c *Config) Database() postgres.Settings {
	return postgres.Settings{
		DSN:              c.DatabaseURL,
		MaxConns:         c.DatabaseMaxConns,
		StatementTimeout: c.DatabaseStatementTimeout,
	}
}

// HasRedis reports whether a Redis server is configured.
func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}
