// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/ctxutil"
	"github.com/taibuivan/comicvoice/internal/platform/validate"
	"github.com/taibuivan/comicvoice/pkg/slug"
	"github.com/taibuivan/comicvoice/pkg/uuid"
)

// FieldComicURL is the request field carrying the source URL.
const FieldComicURL = "comic_url"

// # Service Layer

// Service orchestrates one ingestion run: lock, fetch, reconcile, release.
type Service struct {
	fetcher    Fetcher
	locker     Locker
	reconciler *Reconciler
	logger     *slog.Logger
}

// NewService wires the ingestion pipeline. A nil fetcher disables URL
// ingestion while still allowing [Service.IngestPayload].
func NewService(fetcher Fetcher, locker Locker, reconciler *Reconciler, logger *slog.Logger) *Service {
	return &Service{
		fetcher:    fetcher,
		locker:     locker,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Result is the outcome of one URL inside [Service.IngestMany].
type Result struct {
	SourceURL string
	Comic     *catalog.ComicWithChapters
	Err       error
}

/*
Ingest mirrors one comic source into the catalogue.

Parameters:
  - ctx: context.Context
  - sourceURL: string (absolute http/https, canonicalised with [slug.CanonicalURL])

Returns:
  - *catalog.ComicWithChapters: The reconciled comic and all of its chapters
  - error: VALIDATION_ERROR, CONFLICT, UPSTREAM_FAILURE, SERVICE_UNAVAILABLE, STORAGE_FAILURE
*/
func (service *Service) Ingest(ctx context.Context, sourceURL string) (*catalog.ComicWithChapters, error) {
	sourceURL = strings.TrimSpace(sourceURL)

	validator := &validate.Validator{}
	validator.Required(FieldComicURL, sourceURL).HTTPURL(FieldComicURL, sourceURL)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if service.fetcher == nil {
		return nil, apperr.ServiceUnavailable("No comic source is configured")
	}

	// The scraper sees the URL as requested; the lock and the stored row use its canonical form
	canonical := slug.CanonicalURL(sourceURL)
	return service.run(ctx, canonical, func(ctx context.Context) (*Payload, error) {
		payload, err := service.fetcher.Fetch(ctx, sourceURL)
		if err != nil {
			if apperr.IsAppError(err) {
				return nil, err
			}
			return nil, apperr.UpstreamFailure(sourceURL, err)
		}

		if strings.TrimSpace(payload.SourceURL) == "" {
			payload.SourceURL = canonical
		}
		return payload, nil
	})
}

/*
IngestPayload reconciles an already fetched payload under the same lock
discipline as [Service.Ingest].

Returns:
  - *catalog.ComicWithChapters: The reconciled comic
  - error: VALIDATION_ERROR, CONFLICT, STORAGE_FAILURE
*/
func (service *Service) IngestPayload(ctx context.Context, payload *Payload) (*catalog.ComicWithChapters, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	return service.run(ctx, slug.CanonicalURL(payload.SourceURL), func(context.Context) (*Payload, error) {
		return payload, nil
	})
}

// run executes one locked ingestion and logs its outcome.
func (service *Service) run(context context.Context, sourceURL string, load func(context.Context) (*Payload, error)) (*catalog.ComicWithChapters, error) {
	runID := uuid.New()
	context = ctxutil.WithRunID(context, runID)
	logger := ctxutil.LoggerOr(context, service.logger).With(slog.String("run_id", runID), slog.String("source_url", sourceURL))
	started := time.Now()

	release, err := service.locker.Acquire(context, sourceURL)
	if err != nil {
		logger.Warn("ingest_skipped", slog.String("error", err.Error()))
		return nil, err
	}
	defer release()

	payload, err := load(context)
	if err != nil {
		logger.Error("ingest_failed", slog.String("stage", "fetch"), slog.Any("error", err))
		return nil, err
	}

	comic, err := service.reconciler.Reconcile(context, payload)
	if err != nil {
		logger.Error("ingest_failed", slog.String("stage", "reconcile"), slog.Any("error", err))
		return nil, err
	}

	logger.Info("ingest_completed",
		slog.Int64("comic_id", comic.ID),
		slog.String("slug", comic.Slug),
		slog.Int("chapters", len(comic.Chapters)),
		slog.Int("payload_pages", payload.PageTotal()),
		slog.Duration("duration", time.Since(started)),
	)
	return comic, nil
}

/*
IngestMany mirrors several sources with bounded concurrency.

Description: Each URL runs through [Service.Ingest] independently, so one
failing comic never aborts the others. Results keep the input order.

Parameters:
  - urls: []string
  - concurrency: int (values below 1 run sequentially)

Returns:
  - []Result: One entry per input URL
*/
func (service *Service) IngestMany(context context.Context, urls []string, concurrency int) []Result {
	results := make([]Result, len(urls))

	group, groupCtx := errgroup.WithContext(context)
	group.SetLimit(max(concurrency, 1))

	for index, sourceURL := range urls {
		group.Go(func() error {
			comic, err := service.Ingest(groupCtx, sourceURL)
			results[index] = Result{SourceURL: sourceURL, Comic: comic, Err: err}
			return nil
		})
	}

	_ = group.Wait()
	return results
}
