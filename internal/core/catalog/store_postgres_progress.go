// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/database/schema"
	"github.com/taibuivan/comicvoice/internal/platform/dberr"
)

// # Progress Repository Implementation

func scanProgress(row scanner) (*ReadingProgress, error) {
	progress := &ReadingProgress{}
	err := row.Scan(
		&progress.ID,
		&progress.UserID,
		&progress.ComicID,
		&progress.ChapterID,
		&progress.PageID,
		&progress.LastReadAt,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// FindProgress retrieves the most recently read record for (userID, comicID).
func (repository *postgresStore) FindProgress(context context.Context, userID string, comicID int64) (*ReadingProgress, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s = $2
		ORDER BY %s DESC
		LIMIT 1`,
		columnList(schema.LibraryReadingProgress.Columns()),
		schema.LibraryReadingProgress.Table,
		schema.LibraryReadingProgress.UserID,
		schema.LibraryReadingProgress.ComicID,
		schema.LibraryReadingProgress.LastReadAt,
	)

	progress, err := scanProgress(repository.db.QueryRow(context, query, userID, comicID))
	if err != nil {
		return nil, dberr.Wrap(err, "Reading progress", fmt.Sprintf("find progress of %q on comic %d", userID, comicID))
	}
	return progress, nil
}

/*
CreateProgress inserts a new progress record.

Description: The (user_id, comic_id) unique constraint backs up the single-record
rule: a concurrent insert that lost the race turns into an update of the winner.

Parameters:
  - context: context.Context
  - progress: *ReadingProgress (ID and CreatedAt are refreshed in place)

Returns:
  - error: STORAGE_FAILURE
*/
func (repository *postgresStore) CreateProgress(context context.Context, progress *ReadingProgress) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET
			%[4]s = EXCLUDED.%[4]s,
			%[5]s = EXCLUDED.%[5]s,
			%[6]s = EXCLUDED.%[6]s,
			%[8]s = EXCLUDED.%[8]s
		RETURNING %[9]s, %[7]s`,
		schema.LibraryReadingProgress.Table,
		schema.LibraryReadingProgress.UserID,
		schema.LibraryReadingProgress.ComicID,
		schema.LibraryReadingProgress.ChapterID,
		schema.LibraryReadingProgress.PageID,
		schema.LibraryReadingProgress.LastReadAt,
		schema.LibraryReadingProgress.CreatedAt,
		schema.LibraryReadingProgress.UpdatedAt,
		schema.LibraryReadingProgress.ID,
	)

	err := repository.db.QueryRow(context, query,
		progress.UserID,
		progress.ComicID,
		progress.ChapterID,
		progress.PageID,
		progress.LastReadAt,
		progress.CreatedAt,
		progress.UpdatedAt,
	).Scan(&progress.ID, &progress.CreatedAt)

	if err != nil {
		return dberr.Wrap(err, "Reading progress", fmt.Sprintf("create progress of %q on comic %d", progress.UserID, progress.ComicID))
	}
	return nil
}

// UpdateProgress moves an existing record to a new position.
func (repository *postgresStore) UpdateProgress(context context.Context, progress *ReadingProgress) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5
		WHERE %s = $1`,
		schema.LibraryReadingProgress.Table,
		schema.LibraryReadingProgress.ChapterID,
		schema.LibraryReadingProgress.PageID,
		schema.LibraryReadingProgress.LastReadAt,
		schema.LibraryReadingProgress.UpdatedAt,
		schema.LibraryReadingProgress.ID,
	)

	tag, err := repository.db.Exec(context, query,
		progress.ID,
		progress.ChapterID,
		progress.PageID,
		progress.LastReadAt,
		progress.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Reading progress", fmt.Sprintf("update progress %d", progress.ID))
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Reading progress")
	}
	return nil
}
