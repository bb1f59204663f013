// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	"github.com/taibuivan/comicvoice/internal/core/catalog/memstore"
	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/pkg/pointer"
	"github.com/taibuivan/comicvoice/pkg/slug"
)

var seedTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedComic stores a comic whose slug and source URL derive from its title.
func seedComic(t *testing.T, store catalog.Store, title string, description *string) *catalog.Comic {
	t.Helper()

	comic := &catalog.Comic{
		Title:       title,
		Slug:        slug.From(title),
		Description: description,
		SourceURL:   "https://komiku.org/manga/" + slug.From(title),
		Status:      catalog.StatusOngoing,
		CreatedAt:   seedTime,
		UpdatedAt:   seedTime,
	}
	_, err := store.UpsertComic(context.Background(), comic)
	require.NoError(t, err)
	return comic
}

func seedChapter(t *testing.T, store catalog.Store, comic *catalog.Comic, number float64, pages int) *catalog.Chapter {
	t.Helper()

	chapter := &catalog.Chapter{
		ComicID:       comic.ID,
		ChapterNumber: number,
		Title:         "Chapter",
		Slug:          slug.Chapter(comic.Title, number),
		SourceURL:     comic.SourceURL + "/chapter",
		PageCount:     pages,
		CreatedAt:     seedTime,
		UpdatedAt:     seedTime,
	}
	_, err := store.UpsertChapter(context.Background(), chapter)
	require.NoError(t, err)

	for pageNumber := pages; pageNumber >= 1; pageNumber-- {
		page := &catalog.Page{
			ChapterID:  chapter.ID,
			PageNumber: pageNumber,
			ImageURL:   "https://img.komiku.org/page.jpg",
			SourceURL:  chapter.SourceURL,
			CreatedAt:  seedTime,
			UpdatedAt:  seedTime,
		}
		_, err := store.UpsertPage(context.Background(), page)
		require.NoError(t, err)
	}
	return chapter
}

/*
TestService_GetComicBySlug verifies hydration and chapter ordering.
*/
func TestService_GetComicBySlug(t *testing.T) {
	store := memstore.New()
	service := catalog.NewService(store, discardLogger())

	comic := seedComic(t, store, "Test Comic", nil)
	seedChapter(t, store, comic, 2, 1)
	seedChapter(t, store, comic, 1, 2)
	seedChapter(t, store, comic, 1.5, 1)

	t.Run("found", func(t *testing.T) {
		got, found, err := service.GetComicBySlug(context.Background(), "test-comic")
		require.NoError(t, err)
		require.True(t, found)

		assert.Equal(t, comic.ID, got.ID)
		require.Len(t, got.Chapters, 3)
		assert.Equal(t, 1.0, got.Chapters[0].ChapterNumber)
		assert.Equal(t, 1.5, got.Chapters[1].ChapterNumber)
		assert.Equal(t, 2.0, got.Chapters[2].ChapterNumber)
	})

	t.Run("case_sensitive", func(t *testing.T) {
		_, found, err := service.GetComicBySlug(context.Background(), "Test-Comic")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("absent", func(t *testing.T) {
		got, found, err := service.GetComicBySlug(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	})
}

/*
TestService_GetChapters checks not-found semantics and the empty list.
*/
func TestService_GetChapters(t *testing.T) {
	store := memstore.New()
	service := catalog.NewService(store, discardLogger())

	empty := seedComic(t, store, "Empty Comic", nil)

	chapters, err := service.GetChapters(context.Background(), empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, chapters)
	assert.Empty(t, chapters)

	_, err = service.GetChapters(context.Background(), 999)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestService_GetComicPages verifies page ordering and the absent chapter.
*/
func TestService_GetComicPages(t *testing.T) {
	store := memstore.New()
	service := catalog.NewService(store, discardLogger())

	comic := seedComic(t, store, "Test Comic", nil)
	chapter := seedChapter(t, store, comic, 1, 3)

	got, found, err := service.GetComicPages(context.Background(), chapter.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got.Pages, 3)
	for index, page := range got.Pages {
		assert.Equal(t, index+1, page.PageNumber)
	}

	_, found, err = service.GetComicPages(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, found)
}

/*
TestService_SearchComics covers matching, ordering and window arithmetic.
*/
func TestService_SearchComics(t *testing.T) {
	store := memstore.New()
	service := catalog.NewService(store, discardLogger())

	for _, title := range []string{"Naruto", "Naruto Shippuden", "Boruto: Naruto Next Generations", "Naruto Gaiden", "Road to Naruto", "One Piece"} {
		seedComic(t, store, title, nil)
	}
	seedComic(t, store, "Bleach", pointer.To("Soul reapers guard the afterlife"))
	seedComic(t, store, "100% Orange Juice", nil)

	t.Run("first_window", func(t *testing.T) {
		result, err := service.SearchComics(context.Background(), "naruto", 3, 0)
		require.NoError(t, err)

		assert.Equal(t, 5, result.TotalCount)
		assert.True(t, result.HasMore)
		require.Len(t, result.Comics, 3)
		assert.Equal(t, "Boruto: Naruto Next Generations", result.Comics[0].Title)
		assert.Equal(t, "Naruto", result.Comics[1].Title)
		assert.Equal(t, "Naruto Gaiden", result.Comics[2].Title)
	})

	t.Run("last_window", func(t *testing.T) {
		result, err := service.SearchComics(context.Background(), "naruto", 3, 3)
		require.NoError(t, err)

		assert.Equal(t, 5, result.TotalCount)
		assert.False(t, result.HasMore)
		assert.Len(t, result.Comics, 2)
	})

	t.Run("offset_past_end", func(t *testing.T) {
		result, err := service.SearchComics(context.Background(), "naruto", 20, 40)
		require.NoError(t, err)

		assert.Equal(t, 5, result.TotalCount)
		assert.False(t, result.HasMore)
		assert.Empty(t, result.Comics)
	})

	t.Run("case_insensitive_and_trimmed", func(t *testing.T) {
		result, err := service.SearchComics(context.Background(), "  NARUTO  ", 50, 0)
		require.NoError(t, err)
		assert.Equal(t, 5, result.TotalCount)
	})

	t.Run("description_match", func(t *testing.T) {
		result, err := service.SearchComics(context.Background(), "soul", 20, 0)
		require.NoError(t, err)
		require.Len(t, result.Comics, 1)
		assert.Equal(t, "Bleach", result.Comics[0].Title)
	})

	t.Run("percent_is_literal", func(t *testing.T) {
		result, err := service.SearchComics(context.Background(), "%", 20, 0)
		require.NoError(t, err)
		require.Len(t, result.Comics, 1)
		assert.Equal(t, "100% Orange Juice", result.Comics[0].Title)
	})
}

/*
TestService_SearchComics_Validation covers rejected inputs.
*/
func TestService_SearchComics_Validation(t *testing.T) {
	service := catalog.NewService(memstore.New(), discardLogger())

	tests := []struct {
		name   string
		query  string
		limit  int
		offset int
		field  string
	}{
		{"blank_query", "   ", 20, 0, catalog.FieldQuery},
		{"zero_limit", "naruto", 0, 0, catalog.FieldLimit},
		{"limit_above_max", "naruto", 51, 0, catalog.FieldLimit},
		{"negative_offset", "naruto", 20, -1, catalog.FieldOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SearchComics(context.Background(), tt.query, tt.limit, tt.offset)
			require.Error(t, err)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, apperr.CodeValidation, appError.Code)
			assert.Equal(t, tt.field, appError.Details[0].Field)
		})
	}
}

/*
TestService_RecordOCRText verifies the OCR write-back and its timestamps.
*/
func TestService_RecordOCRText(t *testing.T) {
	store := memstore.New()
	recordedAt := seedTime.Add(time.Hour)
	service := catalog.NewService(store, discardLogger()).WithClock(func() time.Time { return recordedAt })

	comic := seedComic(t, store, "Test Comic", nil)
	chapter := seedChapter(t, store, comic, 1, 1)
	pages, err := store.ListPages(context.Background(), chapter.ID)
	require.NoError(t, err)

	page, err := service.RecordOCRText(context.Background(), pages[0].ID, "Where am I?")
	require.NoError(t, err)

	require.NotNil(t, page.OCRText)
	assert.Equal(t, "Where am I?", *page.OCRText)
	require.NotNil(t, page.OCRProcessedAt)
	assert.Equal(t, recordedAt, *page.OCRProcessedAt)
	assert.Equal(t, recordedAt, page.UpdatedAt)

	_, err = service.RecordOCRText(context.Background(), 999, "text")
	assert.True(t, apperr.IsNotFound(err))
}
