// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"time"
)

// # Catalogue Data Access

// Store is the storage capability the pipelines depend on.
//
// # Architecture
//
// The interface lives in the domain package because the services (the consumers)
// define what they need. Implementations: the PostgreSQL store in this package
// and the in-memory fake in package memstore.
//
// Lookups return an apperr NOT_FOUND error when the row is absent. Any other
// failure is a STORAGE_FAILURE app error.
type Store interface {
	ComicStore
	ChapterStore
	PageStore
	ProgressStore

	/*
		WithinTx runs fn against a transactional view of the store.

		Description: The view commits when fn returns nil and rolls back otherwise,
		so one comic's reconciliation is applied completely or not at all.

		Parameters:
		  - context: context.Context
		  - fn: func(Store) error

		Returns:
		  - error: fn's error, or a storage failure from begin/commit
	*/
	WithinTx(context context.Context, fn func(tx Store) error) error
}

// ComicStore defines data access for comics.
type ComicStore interface {

	// FindComicByID returns the comic with the given ID.
	FindComicByID(context context.Context, id int64) (*Comic, error)

	// FindComicBySlug returns the comic with the given slug (case-sensitive, exact).
	FindComicBySlug(context context.Context, slug string) (*Comic, error)

	/*
		UpsertComic inserts a comic or updates the row holding the same slug.

		Description: On conflict the mutable fields (title, description, thumbnail,
		status, updated_at) are overwritten; id, created_at and source_url are kept.
		A blank status inserts as ongoing and never overwrites a stored one.
		A row holding the slug under a different source_url is a slug collision and
		yields a CONFLICT error without writing. Callers pass source_url in
		canonical form (see slug.CanonicalURL). The comic's ID, Status and
		CreatedAt are refreshed from the stored row.

		Returns:
		  - bool: true if a new row was inserted
		  - error: CONFLICT on slug collision, storage failures
	*/
	UpsertComic(context context.Context, comic *Comic) (bool, error)

	/*
		SearchComics matches query as a case-insensitive substring of title or description.

		Returns:
		  - []*Comic: The requested window, ascending by title
		  - int: Size of the whole match set, ignoring limit and offset
		  - error: Storage failures
	*/
	SearchComics(context context.Context, query string, limit, offset int) ([]*Comic, int, error)
}

// ChapterStore defines data access for chapters.
type ChapterStore interface {

	// FindChapterByID returns the chapter with the given ID.
	FindChapterByID(context context.Context, id int64) (*Chapter, error)

	// ListChapters returns every chapter of a comic ordered by ascending chapter number.
	ListChapters(context context.Context, comicID int64) ([]*Chapter, error)

	/*
		UpsertChapter inserts a chapter or updates the row keyed by (comic_id, chapter_number).

		Description: On conflict title, slug, source_url, page_count and updated_at
		are overwritten. The chapter's ID and CreatedAt are refreshed from the stored row.

		Returns:
		  - bool: true if a new row was inserted
		  - error: Storage failures
	*/
	UpsertChapter(context context.Context, chapter *Chapter) (bool, error)
}

// PageStore defines data access for pages.
type PageStore interface {

	// FindPageByID returns the page with the given ID.
	FindPageByID(context context.Context, id int64) (*Page, error)

	// ListPages returns every page of a chapter ordered by ascending page number.
	ListPages(context context.Context, chapterID int64) ([]*Page, error)

	/*
		UpsertPage inserts a page or updates the row keyed by (chapter_id, page_number).

		Description: On conflict image_url, source_url and updated_at are overwritten;
		OCR fields are never touched by an upsert.

		Returns:
		  - bool: true if a new row was inserted
		  - error: Storage failures
	*/
	UpsertPage(context context.Context, page *Page) (bool, error)

	// UpdatePageOCR overwrites the OCR text of a page and stamps ocr_processed_at and updated_at with at.
	UpdatePageOCR(context context.Context, pageID int64, text string, at time.Time) (*Page, error)
}

// ProgressStore defines data access for reading progress.
type ProgressStore interface {

	// FindProgress returns the most recently read record for (userID, comicID).
	FindProgress(context context.Context, userID string, comicID int64) (*ReadingProgress, error)

	// CreateProgress inserts a new record and sets its ID.
	CreateProgress(context context.Context, progress *ReadingProgress) error

	// UpdateProgress overwrites chapter, page, last_read_at and updated_at of the record with progress.ID.
	UpdateProgress(context context.Context, progress *ReadingProgress) error
}
