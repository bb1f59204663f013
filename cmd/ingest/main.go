// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command ingest mirrors comic sources into the catalogue from the command line.
//
// # Usage
//
//	ingest [--fixtures DIR | --scraper URL] [--memory] [--concurrency N] URL...
//	ingest --payload FILE [--memory]
//
// Without --memory the database, Redis and scraper settings come from the same
// environment as the API server. One JSON line is printed per source.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	"github.com/taibuivan/comicvoice/internal/core/catalog/memstore"
	"github.com/taibuivan/comicvoice/internal/core/ingest"
	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/config"
	"github.com/taibuivan/comicvoice/internal/platform/constants"
	"github.com/taibuivan/comicvoice/internal/platform/migration"
	pgstore "github.com/taibuivan/comicvoice/internal/platform/postgres"
	redisstore "github.com/taibuivan/comicvoice/internal/platform/redis"
	"github.com/taibuivan/comicvoice/pkg/slice"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// options are the parsed command line flags.
type options struct {
	fixtures    string
	scraper     string
	payload     string
	memory      bool
	debug       bool
	concurrency int
	urls        []string
}

// outcome is the JSON line reported per source.
type outcome struct {
	SourceURL string `json:"source_url"`
	ComicID   int64  `json:"comic_id,omitempty"`
	Slug      string `json:"slug,omitempty"`
	Chapters  int    `json:"chapters,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "comicvoice-ingest"))

	service, cleanup, err := wire(ctx, opts, log)
	if err != nil {
		log.Error("startup_failure", slog.Any("error", err))
		return 1
	}
	defer cleanup()

	var results []ingest.Result
	if opts.payload != "" {
		results = []ingest.Result{ingestFile(ctx, service, opts.payload)}
	} else {
		results = service.IngestMany(ctx, opts.urls, opts.concurrency)
	}

	encoder := json.NewEncoder(stdout)
	for _, line := range slice.Map(results, toOutcome) {
		_ = encoder.Encode(line)
	}

	failed := slice.Count(results, func(result ingest.Result) bool { return result.Err != nil })
	log.Info("ingest_run_finished", slog.Int("sources", len(results)), slog.Int("failed", failed))
	if failed > 0 {
		return 1
	}
	return 0
}

// toOutcome reduces a result to its reported line.
func toOutcome(result ingest.Result) outcome {
	line := outcome{SourceURL: result.SourceURL}
	if result.Err != nil {
		line.Error = result.Err.Error()
		if appError := apperr.As(result.Err); appError != nil {
			line.Code = appError.Code
		}
		return line
	}

	line.ComicID = result.Comic.ID
	line.Slug = result.Comic.Slug
	line.Chapters = len(result.Comic.Chapters)
	return line
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	flags := flag.NewFlagSet("ingest", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.fixtures, "fixtures", "", "read payloads from `DIR`/<slug>.json instead of a scraper")
	flags.StringVar(&opts.scraper, "scraper", "", "scraper endpoint `URL` (defaults to SCRAPER_URL)")
	flags.StringVar(&opts.payload, "payload", "", "reconcile a single payload `FILE` directly")
	flags.BoolVar(&opts.memory, "memory", false, "use an in-memory store instead of PostgreSQL")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.IntVarP(&opts.concurrency, "concurrency", "c", constants.DefaultIngestConcurrency, "comics ingested in parallel")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	opts.urls = flags.Args()

	switch {
	case opts.fixtures != "" && opts.scraper != "":
		return nil, errors.New("--fixtures and --scraper are mutually exclusive")
	case opts.payload != "" && len(opts.urls) > 0:
		return nil, errors.New("--payload does not take source URLs")
	case opts.payload == "" && len(opts.urls) == 0:
		return nil, errors.New("at least one source URL is required")
	case opts.concurrency < 1:
		return nil, errors.New("--concurrency must be at least 1")
	}
	return opts, nil
}

// wire builds the ingestion service for the selected store and source.
func wire(ctx context.Context, opts *options, log *slog.Logger) (*ingest.Service, func(), error) {
	if opts.memory {
		store := memstore.New()
		service := ingest.NewService(selectFetcher(opts, nil), ingest.NewMemoryLocker(), ingest.NewReconciler(store, log), log)
		return service, func() {}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	// One transaction per comic in flight, plus one for the lookups around it
	settings := cfg.Database()
	settings.MaxConns = min(settings.MaxConns, int32(opts.concurrency)+1)

	pool, err := pgstore.NewPool(ctx, settings, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := pool.Close

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		cleanup()
		return nil, nil, err
	}

	var locker ingest.Locker = ingest.NewMemoryLocker()
	if cfg.HasRedis() {
		rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		locker = ingest.NewRedisLocker(rdb, cfg.IngestLockTTL)
		cleanup = func() {
			_ = rdb.Close()
			pool.Close()
		}
	}

	var store catalog.Store = catalog.NewPostgresStore(pool)
	service := ingest.NewService(selectFetcher(opts, cfg), locker, ingest.NewReconciler(store, log), log)
	return service, cleanup, nil
}

// selectFetcher prefers explicit flags over the environment. It returns nil
// when no source is configured; URL ingestion then fails per source.
func selectFetcher(opts *options, cfg *config.Config) ingest.Fetcher {
	switch {
	case opts.fixtures != "":
		return ingest.NewFixtureFetcher(opts.fixtures)
	case opts.scraper != "":
		return ingest.NewHTTPFetcher(opts.scraper)
	case cfg != nil && cfg.ScraperURL != "":
		return ingest.NewHTTPFetcher(cfg.ScraperURL)
	case cfg != nil && cfg.FixtureDir != "":
		return ingest.NewFixtureFetcher(cfg.FixtureDir)
	}
	return nil
}

// ingestFile reconciles a payload file, reporting under its source URL.
func ingestFile(ctx context.Context, service *ingest.Service, path string) ingest.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingest.Result{SourceURL: path, Err: err}
	}

	payload, err := ingest.ParsePayload(data)
	if err != nil {
		return ingest.Result{SourceURL: path, Err: err}
	}

	comic, err := service.IngestPayload(ctx, payload)
	return ingest.Result{SourceURL: payload.SourceURL, Comic: comic, Err: err}
}
