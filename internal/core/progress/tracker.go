// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package progress keeps the single current reading position of a user within a comic.

Core Responsibility:

  - Uniqueness: One record per (user, comic) pair, created on the first read and overwritten after.
  - References: Comic, chapter and page must exist, checked in that order.
  - Trust: Whether the page belongs to the chapter (and the chapter to the comic) is only logged.
*/
package progress

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/validate"
)

// maxUserIDLength bounds the opaque user identifier.
const maxUserIDLength = 255

// Tracker records and reads reading positions.
type Tracker struct {
	store  catalog.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewTracker constructs a [Tracker] over the catalogue store.
func NewTracker(store catalog.Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source, for deterministic tests.
func (tracker *Tracker) WithClock(now func() time.Time) *Tracker {
	tracker.now = now
	return tracker
}

/*
RecordProgress moves the user's position in a comic to the given page.

Description: Runs in one transaction. The first call for a (user, comic)
pair inserts the record, later calls overwrite chapter, page, last_read_at
and updated_at of that same record.

Parameters:
  - context: context.Context
  - userID: string (opaque, required)
  - comicID, chapterID, pageID: int64

Returns:
  - *catalog.ReadingProgress: The stored record
  - error: VALIDATION_ERROR, REFERENCE_NOT_FOUND (comic_id, chapter_id or page_id), STORAGE_FAILURE
*/
func (tracker *Tracker) RecordProgress(context context.Context, userID string, comicID, chapterID, pageID int64) (*catalog.ReadingProgress, error) {
	validator := &validate.Validator{}
	validator.Required(catalog.FieldUserID, userID).MaxLen(catalog.FieldUserID, userID, maxUserIDLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	at := tracker.now()
	record := &catalog.ReadingProgress{
		UserID:     userID,
		ComicID:    comicID,
		ChapterID:  chapterID,
		PageID:     pageID,
		LastReadAt: at,
		CreatedAt:  at,
		UpdatedAt:  at,
	}

	var created bool
	err := tracker.store.WithinTx(context, func(tx catalog.Store) error {
		chapter, page, err := tracker.resolveReferences(context, tx, comicID, chapterID, pageID)
		if err != nil {
			return err
		}
		if chapter.ComicID != comicID || page.ChapterID != chapterID {
			tracker.logger.Warn("progress_reference_mismatch",
				slog.String("user_id", userID),
				slog.Int64("comic_id", comicID),
				slog.Int64("chapter_id", chapterID),
				slog.Int64("chapter_comic_id", chapter.ComicID),
				slog.Int64("page_id", pageID),
				slog.Int64("page_chapter_id", page.ChapterID),
			)
		}

		existing, err := tx.FindProgress(context, userID, comicID)
		if apperr.IsNotFound(err) {
			created = true
			return tx.CreateProgress(context, record)
		}
		if err != nil {
			return err
		}

		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		return tx.UpdateProgress(context, record)
	})
	if err != nil {
		return nil, err
	}

	tracker.logger.Debug("progress_recorded",
		slog.String("user_id", userID),
		slog.Int64("comic_id", comicID),
		slog.Int64("page_id", pageID),
		slog.Bool("created", created),
	)
	return record, nil
}

// resolveReferences loads comic, chapter and page in that order; the first missing one wins.
func (tracker *Tracker) resolveReferences(context context.Context, tx catalog.Store, comicID, chapterID, pageID int64) (*catalog.Chapter, *catalog.Page, error) {
	if _, err := tx.FindComicByID(context, comicID); err != nil {
		return nil, nil, asReference(err, catalog.FieldComicID, comicID)
	}

	chapter, err := tx.FindChapterByID(context, chapterID)
	if err != nil {
		return nil, nil, asReference(err, catalog.FieldChapterID, chapterID)
	}

	page, err := tx.FindPageByID(context, pageID)
	if err != nil {
		return nil, nil, asReference(err, catalog.FieldPageID, pageID)
	}

	return chapter, page, nil
}

// asReference turns a NOT_FOUND lookup into REFERENCE_NOT_FOUND for field.
func asReference(err error, field string, id int64) error {
	if apperr.IsNotFound(err) {
		return apperr.ReferenceNotFound(field, id)
	}
	return err
}

/*
GetProgress returns the most recently read record for a (user, comic) pair.

Returns:
  - *catalog.ReadingProgress: The record, nil when absent
  - bool: false when the user has no position in the comic
  - error: STORAGE_FAILURE only
*/
func (tracker *Tracker) GetProgress(context context.Context, userID string, comicID int64) (*catalog.ReadingProgress, bool, error) {
	record, err := tracker.store.FindProgress(context, userID, comicID)
	if apperr.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}
