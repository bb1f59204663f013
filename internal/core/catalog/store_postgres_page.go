// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/comicvoice/internal/platform/database/schema"
	"github.com/taibuivan/comicvoice/internal/platform/dberr"
)

// # Page Repository Implementation

func scanPage(row scanner) (*Page, error) {
	page := &Page{}
	err := row.Scan(
		&page.ID,
		&page.ChapterID,
		&page.PageNumber,
		&page.ImageURL,
		&page.SourceURL,
		&page.OCRText,
		&page.OCRProcessedAt,
		&page.CreatedAt,
		&page.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// FindPageByID retrieves a page by primary key.
func (repository *postgresStore) FindPageByID(context context.Context, id int64) (*Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columnList(schema.CorePage.Columns()),
		schema.CorePage.Table,
		schema.CorePage.ID,
	)

	page, err := scanPage(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Page", fmt.Sprintf("find page %d", id))
	}
	return page, nil
}

// ListPages retrieves every page of a chapter ascending by page number.
func (repository *postgresStore) ListPages(context context.Context, chapterID int64) ([]*Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		columnList(schema.CorePage.Columns()),
		schema.CorePage.Table,
		schema.CorePage.ChapterID,
		schema.CorePage.PageNumber,
	)

	action := fmt.Sprintf("list pages of chapter %d", chapterID)
	rows, err := repository.db.Query(context, query, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, "Page", action)
	}
	defer rows.Close()

	pages := []*Page{}
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Page", action)
		}
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Page", action)
	}
	return pages, nil
}

/*
UpsertPage inserts or refreshes a page keyed by (chapter_id, page_number).

Description: Only the image and source URLs are refreshed on conflict. OCR text
recorded earlier survives re-ingestion.

Parameters:
  - context: context.Context
  - page: *Page (ID, CreatedAt and OCR fields are refreshed in place)

Returns:
  - bool: true when a new row was created
  - error: STORAGE_FAILURE
*/
func (repository *postgresStore) UpsertPage(context context.Context, page *Page) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET
			%[4]s = EXCLUDED.%[4]s,
			%[5]s = EXCLUDED.%[5]s,
			%[7]s = EXCLUDED.%[7]s
		RETURNING %[8]s, %[6]s, %[9]s, %[10]s, (xmax = 0) AS inserted`,
		schema.CorePage.Table,
		schema.CorePage.ChapterID,
		schema.CorePage.PageNumber,
		schema.CorePage.ImageURL,
		schema.CorePage.SourceURL,
		schema.CorePage.CreatedAt,
		schema.CorePage.UpdatedAt,
		schema.CorePage.ID,
		schema.CorePage.OCRText,
		schema.CorePage.OCRProcessedAt,
	)

	var inserted bool
	err := repository.db.QueryRow(context, query,
		page.ChapterID,
		page.PageNumber,
		page.ImageURL,
		page.SourceURL,
		page.CreatedAt,
		page.UpdatedAt,
	).Scan(&page.ID, &page.CreatedAt, &page.OCRText, &page.OCRProcessedAt, &inserted)

	if err != nil {
		return false, dberr.Wrap(err, "Page", fmt.Sprintf("upsert page %d of chapter %d", page.PageNumber, page.ChapterID))
	}
	return inserted, nil
}

/*
UpdatePageOCR stores OCR output for a page.

Parameters:
  - context: context.Context
  - pageID: int64
  - text: string (stored verbatim, may be empty)
  - at: time.Time (processing and update timestamp)

Returns:
  - *Page: The updated page
  - error: NOT_FOUND if the page does not exist
*/
func (repository *postgresStore) UpdatePageOCR(context context.Context, pageID int64, text string, at time.Time) (*Page, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $3
		WHERE %s = $1
		RETURNING %s`,
		schema.CorePage.Table,
		schema.CorePage.OCRText,
		schema.CorePage.OCRProcessedAt,
		schema.CorePage.UpdatedAt,
		schema.CorePage.ID,
		columnList(schema.CorePage.Columns()),
	)

	page, err := scanPage(repository.db.QueryRow(context, query, pageID, text, at))
	if err != nil {
		return nil, dberr.Wrap(err, "Page", fmt.Sprintf("record OCR for page %d", pageID))
	}
	return page, nil
}
