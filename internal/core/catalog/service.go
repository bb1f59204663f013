// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/validate"
	"github.com/taibuivan/comicvoice/pkg/pagination"
)

// # Service Layer

// Service is the read-side query surface of the catalogue, plus the OCR write-back.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a new [Service] over the given store.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source, for deterministic tests.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// # Comic Lookups

/*
GetComicBySlug fetches a comic and its chapters by exact slug.

Parameters:
  - context: context.Context
  - slug: string (case-sensitive)

Returns:
  - *ComicWithChapters: The comic with chapters ascending by number
  - bool: false when no comic carries the slug
  - error: STORAGE_FAILURE
*/
func (service *Service) GetComicBySlug(context context.Context, slug string) (*ComicWithChapters, bool, error) {
	comic, err := service.store.FindComicBySlug(context, slug)
	if apperr.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	chapters, err := service.store.ListChapters(context, comic.ID)
	if err != nil {
		return nil, false, err
	}

	return &ComicWithChapters{Comic: *comic, Chapters: chapters}, true, nil
}

/*
GetChapters lists the chapters of a comic.

Returns:
  - []*Chapter: Ascending by chapter number, empty (not nil) when the comic has none
  - error: NOT_FOUND if the comic does not exist
*/
func (service *Service) GetChapters(context context.Context, comicID int64) ([]*Chapter, error) {
	if _, err := service.store.FindComicByID(context, comicID); err != nil {
		return nil, err
	}
	return service.store.ListChapters(context, comicID)
}

/*
GetComicPages fetches a chapter and its pages.

Returns:
  - *ChapterWithPages: The chapter with pages ascending by page number
  - bool: false when the chapter does not exist
  - error: STORAGE_FAILURE
*/
func (service *Service) GetComicPages(context context.Context, chapterID int64) (*ChapterWithPages, bool, error) {
	chapter, err := service.store.FindChapterByID(context, chapterID)
	if apperr.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	pages, err := service.store.ListPages(context, chapterID)
	if err != nil {
		return nil, false, err
	}

	return &ChapterWithPages{Chapter: *chapter, Pages: pages}, true, nil
}

// # Discovery

/*
SearchComics runs a paginated substring search over title and description.

Description: The query is trimmed before matching and treated literally, so
'%' and '_' only match themselves. HasMore is true while rows remain after
the requested window.

Parameters:
  - context: context.Context
  - query: string (non-empty after trimming)
  - limit: int (1..[MaxSearchLimit])
  - offset: int (>= 0)

Returns:
  - *SearchResult: The window, the total match count and HasMore
  - error: VALIDATION_ERROR, STORAGE_FAILURE
*/
func (service *Service) SearchComics(context context.Context, query string, limit, offset int) (*SearchResult, error) {
	query = strings.TrimSpace(query)

	validator := &validate.Validator{}
	validator.Required(FieldQuery, query).
		Range(FieldLimit, limit, 1, MaxSearchLimit).
		Custom(FieldOffset, offset < 0, "Must not be negative")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	comics, total, err := service.store.SearchComics(context, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Comics:     comics,
		TotalCount: total,
		HasMore:    pagination.HasMore(limit, offset, total),
	}, nil
}

// # OCR Write-back

/*
RecordOCRText stores the text extracted from a page image.

Description: The text is stored verbatim (an empty result is a valid outcome of
OCR) and ocr_processed_at/updated_at are stamped with the service clock. The
narration pipeline downstream reads the text back through the page listing.

Parameters:
  - context: context.Context
  - pageID: int64
  - text: string

Returns:
  - *Page: The updated page
  - error: NOT_FOUND if the page does not exist
*/
func (service *Service) RecordOCRText(context context.Context, pageID int64, text string) (*Page, error) {
	page, err := service.store.UpdatePageOCR(context, pageID, text, service.now())
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "ocr_text_recorded",
		slog.Int64("page_id", page.ID),
		slog.Int64("chapter_id", page.ChapterID),
		slog.Int("length", len(text)),
	)
	return page, nil
}
