// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"

	"github.com/taibuivan/comicvoice/internal/platform/database/schema"
	"github.com/taibuivan/comicvoice/internal/platform/dberr"
)

// # Chapter Repository Implementation

func scanChapter(row scanner) (*Chapter, error) {
	chapter := &Chapter{}
	err := row.Scan(
		&chapter.ID,
		&chapter.ComicID,
		&chapter.ChapterNumber,
		&chapter.Title,
		&chapter.Slug,
		&chapter.SourceURL,
		&chapter.PageCount,
		&chapter.CreatedAt,
		&chapter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

// FindChapterByID retrieves a chapter by primary key.
func (repository *postgresStore) FindChapterByID(context context.Context, id int64) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columnList(schema.CoreChapter.Columns()),
		schema.CoreChapter.Table,
		schema.CoreChapter.ID,
	)

	chapter, err := scanChapter(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter", fmt.Sprintf("find chapter %d", id))
	}
	return chapter, nil
}

/*
ListChapters retrieves every chapter linked to a comic.

Parameters:
  - context: context.Context
  - comicID: int64 (Owner ID)

Returns:
  - []*Chapter: Ascending by chapter number, empty when the comic has none
  - error: STORAGE_FAILURE
*/
func (repository *postgresStore) ListChapters(context context.Context, comicID int64) ([]*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		columnList(schema.CoreChapter.Columns()),
		schema.CoreChapter.Table,
		schema.CoreChapter.ComicID,
		schema.CoreChapter.ChapterNumber,
	)

	action := fmt.Sprintf("list chapters of comic %d", comicID)
	rows, err := repository.db.Query(context, query, comicID)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter", action)
	}
	defer rows.Close()

	chapters := []*Chapter{}
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Chapter", action)
		}
		chapters = append(chapters, chapter)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Chapter", action)
	}
	return chapters, nil
}

/*
UpsertChapter inserts or refreshes a chapter keyed by (comic_id, chapter_number).

Parameters:
  - context: context.Context
  - chapter: *Chapter (ID and CreatedAt are refreshed in place)

Returns:
  - bool: true when a new row was created
  - error: STORAGE_FAILURE
*/
func (repository *postgresStore) UpsertChapter(context context.Context, chapter *Chapter) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET
			%[4]s = EXCLUDED.%[4]s,
			%[5]s = EXCLUDED.%[5]s,
			%[6]s = EXCLUDED.%[6]s,
			%[7]s = EXCLUDED.%[7]s,
			%[9]s = EXCLUDED.%[9]s
		RETURNING %[10]s, %[8]s, (xmax = 0) AS inserted`,
		schema.CoreChapter.Table,
		schema.CoreChapter.ComicID,
		schema.CoreChapter.ChapterNumber,
		schema.CoreChapter.Title,
		schema.CoreChapter.Slug,
		schema.CoreChapter.SourceURL,
		schema.CoreChapter.PageCount,
		schema.CoreChapter.CreatedAt,
		schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.ID,
	)

	var inserted bool
	err := repository.db.QueryRow(context, query,
		chapter.ComicID,
		chapter.ChapterNumber,
		chapter.Title,
		chapter.Slug,
		chapter.SourceURL,
		chapter.PageCount,
		chapter.CreatedAt,
		chapter.UpdatedAt,
	).Scan(&chapter.ID, &chapter.CreatedAt, &inserted)

	if err != nil {
		return false, dberr.Wrap(err, "Chapter", fmt.Sprintf("upsert chapter %g of comic %d", chapter.ChapterNumber, chapter.ComicID))
	}
	return inserted, nil
}
