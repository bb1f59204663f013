// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/ctxutil"
	"github.com/taibuivan/comicvoice/pkg/slug"
)

// # Reconciler

// Reconciler merges source payloads into the catalogue store.
type Reconciler struct {
	store  catalog.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewReconciler constructs a [Reconciler] writing through the given store.
func NewReconciler(store catalog.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source, for deterministic tests.
func (reconciler *Reconciler) WithClock(now func() time.Time) *Reconciler {
	reconciler.now = now
	return reconciler
}

// stats counts what one reconciliation touched.
type stats struct {
	chaptersInserted int
	chaptersUpdated  int
	pagesInserted    int
	pagesUpdated     int
}

/*
Reconcile merges a payload into the store as one unit of work.

Description: The comic is upserted by slug, then every chapter by
(comic, chapter number), then every page by (chapter, page number). Rows
absent from the payload are left untouched. A failure anywhere rolls back
the whole comic.

Parameters:
  - context: context.Context
  - payload: *Payload

Returns:
  - *catalog.ComicWithChapters: The comic with all of its chapters ascending by number
  - error: VALIDATION_ERROR, CONFLICT on slug collision, STORAGE_FAILURE, INTERNAL_ERROR
*/
func (reconciler *Reconciler) Reconcile(context context.Context, payload *Payload) (*catalog.ComicWithChapters, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	normalized := payload.normalized()

	comicSlug := slug.From(normalized.Title)
	if comicSlug == "" {
		comicSlug = slug.FromURL(normalized.SourceURL)
	}
	if comicSlug == "" {
		return nil, apperr.ValidationError("Cannot derive a slug from the title or source URL",
			apperr.FieldError{Field: "title", Message: "Must contain at least one letter or digit"})
	}

	at := reconciler.now()
	comic := &catalog.Comic{
		Title:        normalized.Title,
		Slug:         comicSlug,
		Description:  normalized.Description,
		ThumbnailURL: normalized.ThumbnailURL,
		SourceURL:    normalized.SourceURL,
		Status:       normalized.Status,
		CreatedAt:    at,
		UpdatedAt:    at,
	}

	var (
		counts   stats
		chapters []*catalog.Chapter
		inserted bool
	)

	err := reconciler.store.WithinTx(context, func(tx catalog.Store) error {
		var err error
		if inserted, err = tx.UpsertComic(context, comic); err != nil {
			return err
		}
		if comic.ID == 0 {
			return apperr.Internal(fmt.Errorf("upsert comic %q returned no row", comic.Slug))
		}

		for _, chapterPayload := range normalized.Chapters {
			if err := reconciler.reconcileChapter(context, tx, comic, chapterPayload, at, &counts); err != nil {
				return err
			}
		}

		chapters, err = tx.ListChapters(context, comic.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	ctxutil.LoggerOr(context, reconciler.logger).Info("comic_reconciled",
		slog.String("run_id", ctxutil.GetRunID(context)),
		slog.Int64("comic_id", comic.ID),
		slog.String("slug", comic.Slug),
		slog.Bool("comic_inserted", inserted),
		slog.Int("chapters_inserted", counts.chaptersInserted),
		slog.Int("chapters_updated", counts.chaptersUpdated),
		slog.Int("pages_inserted", counts.pagesInserted),
		slog.Int("pages_updated", counts.pagesUpdated),
	)

	return &catalog.ComicWithChapters{Comic: *comic, Chapters: chapters}, nil
}

// reconcileChapter upserts one chapter and then each of its pages in payload order.
func (reconciler *Reconciler) reconcileChapter(context context.Context, tx catalog.Store, comic *catalog.Comic, payload ChapterPayload, at time.Time, counts *stats) error {
	chapter := &catalog.Chapter{
		ComicID:       comic.ID,
		ChapterNumber: payload.ChapterNumber,
		Title:         payload.Title,
		Slug:          slug.Chapter(comic.Title, payload.ChapterNumber),
		SourceURL:     payload.SourceURL,
		PageCount:     len(payload.Pages),
		CreatedAt:     at,
		UpdatedAt:     at,
	}

	inserted, err := tx.UpsertChapter(context, chapter)
	if err != nil {
		return err
	}
	if chapter.ID == 0 {
		return apperr.Internal(fmt.Errorf("upsert chapter %g of comic %d returned no row", chapter.ChapterNumber, comic.ID))
	}
	if inserted {
		counts.chaptersInserted++
	} else {
		counts.chaptersUpdated++
	}

	for _, pagePayload := range payload.Pages {
		page := &catalog.Page{
			ChapterID:  chapter.ID,
			PageNumber: pagePayload.PageNumber,
			ImageURL:   pagePayload.ImageURL,
			SourceURL:  pagePayload.SourceURL,
			CreatedAt:  at,
			UpdatedAt:  at,
		}

		inserted, err := tx.UpsertPage(context, page)
		if err != nil {
			return err
		}
		if page.ID == 0 {
			return apperr.Internal(fmt.Errorf("upsert page %d of chapter %d returned no row", page.PageNumber, chapter.ID))
		}
		if inserted {
			counts.pagesInserted++
		} else {
			counts.pagesUpdated++
		}
	}

	return nil
}
