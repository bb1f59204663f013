// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/database/schema"
	"github.com/taibuivan/comicvoice/internal/platform/dberr"
)

// # Comic Repository Implementation

// scanComic maps a row selected with [schema.CoreComicTable.Columns] into a [Comic].
func scanComic(row scanner) (*Comic, error) {
	comic := &Comic{}
	err := row.Scan(
		&comic.ID,
		&comic.Title,
		&comic.Slug,
		&comic.Description,
		&comic.ThumbnailURL,
		&comic.SourceURL,
		&comic.Status,
		&comic.CreatedAt,
		&comic.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return comic, nil
}

// FindComicByID retrieves a comic by primary key.
func (repository *postgresStore) FindComicByID(context context.Context, id int64) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columnList(schema.CoreComic.Columns()),
		schema.CoreComic.Table,
		schema.CoreComic.ID,
	)

	comic, err := scanComic(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Comic", fmt.Sprintf("find comic %d", id))
	}
	return comic, nil
}

// FindComicBySlug retrieves a comic by its unique slug.
func (repository *postgresStore) FindComicBySlug(context context.Context, slug string) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columnList(schema.CoreComic.Columns()),
		schema.CoreComic.Table,
		schema.CoreComic.Slug,
	)

	comic, err := scanComic(repository.db.QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "Comic", fmt.Sprintf("find comic %q", slug))
	}
	return comic, nil
}

/*
UpsertComic inserts or refreshes a comic keyed by slug.

Description: The conditional DO UPDATE only fires when the stored row belongs to
the same source URL. When it does not, PostgreSQL returns no row and the call
reports a slug collision instead of silently merging two different comics.
A blank status inserts as ongoing and leaves a stored status alone on update.

Parameters:
  - context: context.Context
  - comic: *Comic (ID, Status and CreatedAt are refreshed in place)

Returns:
  - bool: true when a new row was created
  - error: CONFLICT on slug collision, STORAGE_FAILURE otherwise
*/
func (repository *postgresStore) UpsertComic(context context.Context, comic *Comic) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s)
		VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6::text, ''), '%[11]s'), $7, $8)
		ON CONFLICT (%[3]s) DO UPDATE SET
			%[2]s = EXCLUDED.%[2]s,
			%[4]s = EXCLUDED.%[4]s,
			%[5]s = EXCLUDED.%[5]s,
			%[7]s = COALESCE(NULLIF($6::text, ''), %[1]s.%[7]s),
			%[9]s = EXCLUDED.%[9]s
		WHERE %[1]s.%[6]s = EXCLUDED.%[6]s
		RETURNING %[10]s, %[7]s, %[8]s, (xmax = 0) AS inserted`,
		schema.CoreComic.Table,
		schema.CoreComic.Title,
		schema.CoreComic.Slug,
		schema.CoreComic.Description,
		schema.CoreComic.ThumbnailURL,
		schema.CoreComic.SourceURL,
		schema.CoreComic.Status,
		schema.CoreComic.CreatedAt,
		schema.CoreComic.UpdatedAt,
		schema.CoreComic.ID,
		StatusOngoing,
	)

	var inserted bool
	err := repository.db.QueryRow(context, query,
		comic.Title,
		comic.Slug,
		comic.Description,
		comic.ThumbnailURL,
		comic.SourceURL,
		string(comic.Status),
		comic.CreatedAt,
		comic.UpdatedAt,
	).Scan(&comic.ID, &comic.Status, &comic.CreatedAt, &inserted)

	// The guarded update skipped the row: slug owned by another source
	if errors.Is(err, pgx.ErrNoRows) {
		return false, apperr.Conflict(fmt.Sprintf("slug %q already belongs to a different source", comic.Slug))
	}
	if err != nil {
		return false, dberr.Wrap(err, "Comic", fmt.Sprintf("upsert comic %q", comic.Slug))
	}
	return inserted, nil
}

/*
SearchComics runs a case-insensitive substring search over title and description.

Description: The match set is counted with a separate COUNT(*) so the total stays
correct when the offset lies beyond the last row. Results are ordered by
case-folded title with id as a tie-breaker for stable pagination.

Parameters:
  - context: context.Context
  - query: string (non-empty, already trimmed)
  - limit: int
  - offset: int

Returns:
  - []*Comic: The requested window
  - int: Total match count
  - error: STORAGE_FAILURE
*/
func (repository *postgresStore) SearchComics(context context.Context, query string, limit, offset int) ([]*Comic, int, error) {
	pattern := likePattern(query)
	where := fmt.Sprintf(`%[1]s ILIKE $1 ESCAPE '\' OR %[2]s ILIKE $1 ESCAPE '\'`,
		schema.CoreComic.Title,
		schema.CoreComic.Description,
	)

	// 1. Total count
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, schema.CoreComic.Table, where)

	var total int
	if err := repository.db.QueryRow(context, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Comic", "count search results")
	}

	// 2. Requested window
	// LOWER + COLLATE "C" matches the memory store's case-folded code point order
	listQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY LOWER(%s) COLLATE "C" ASC, %s ASC LIMIT $2 OFFSET $3`,
		columnList(schema.CoreComic.Columns()),
		schema.CoreComic.Table,
		where,
		schema.CoreComic.Title,
		schema.CoreComic.ID,
	)

	rows, err := repository.db.Query(context, listQuery, pattern, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Comic", "search comics")
	}
	defer rows.Close()

	comics := []*Comic{}
	for rows.Next() {
		comic, err := scanComic(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Comic", "scan search result")
		}
		comics = append(comics, comic)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Comic", "search comics")
	}
	return comics, total, nil
}
