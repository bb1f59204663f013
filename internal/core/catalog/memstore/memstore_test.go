// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package memstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	"github.com/taibuivan/comicvoice/internal/core/catalog/memstore"
	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/pkg/slice"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newComic(slug, sourceURL string) *catalog.Comic {
	return &catalog.Comic{
		Title:     "Title " + slug,
		Slug:      slug,
		SourceURL: sourceURL,
		Status:    catalog.StatusOngoing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

/*
TestStore_UpsertComic verifies insert detection, in-place update and collision rejection.
*/
func TestStore_UpsertComic(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	first := newComic("test-comic", "https://komiku.org/manga/test-comic")
	inserted, err := store.UpsertComic(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	again := newComic("test-comic", "https://komiku.org/manga/test-comic")
	again.Title = "Renamed"
	again.CreatedAt = now.Add(time.Hour)
	again.UpdatedAt = now.Add(time.Hour)
	inserted, err = store.UpsertComic(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, now, again.CreatedAt)

	stored, err := store.FindComicBySlug(ctx, "test-comic")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, now.Add(time.Hour), stored.UpdatedAt)

	// Same slug, different source
	_, err = store.UpsertComic(ctx, newComic("test-comic", "https://other.site/test-comic"))
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

/*
TestStore_WithinTx verifies a failed transaction leaves no trace.
*/
func TestStore_WithinTx(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(tx catalog.Store) error {
		if _, err := tx.UpsertComic(ctx, newComic("rolled-back", "https://komiku.org/rolled-back")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.FindComicBySlug(ctx, "rolled-back")
	assert.True(t, apperr.IsNotFound(err))

	err = store.WithinTx(ctx, func(tx catalog.Store) error {
		_, err := tx.UpsertComic(ctx, newComic("committed", "https://komiku.org/committed"))
		return err
	})
	require.NoError(t, err)

	_, err = store.FindComicBySlug(ctx, "committed")
	assert.NoError(t, err)
}

/*
TestStore_ForeignKeys verifies children cannot reference missing parents.
*/
func TestStore_ForeignKeys(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	_, err := store.UpsertChapter(ctx, &catalog.Chapter{ComicID: 42, ChapterNumber: 1})
	assert.True(t, apperr.HasCode(err, apperr.CodeStorageFailure))

	_, err = store.UpsertPage(ctx, &catalog.Page{ChapterID: 42, PageNumber: 1})
	assert.True(t, apperr.HasCode(err, apperr.CodeStorageFailure))
}

/*
TestStore_FailOn verifies injected failures fire once.
*/
func TestStore_FailOn(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	store.FailOn("UpsertComic", errors.New("disk full"))

	_, err := store.UpsertComic(ctx, newComic("a", "https://komiku.org/a"))
	assert.True(t, apperr.HasCode(err, apperr.CodeStorageFailure))

	_, err = store.UpsertComic(ctx, newComic("a", "https://komiku.org/a"))
	assert.NoError(t, err)
}

/*
TestStore_UpsertPage_KeepsOCR verifies re-upserting a page leaves OCR output alone.
*/
func TestStore_UpsertPage_KeepsOCR(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	comic := newComic("test-comic", "https://komiku.org/test-comic")
	_, err := store.UpsertComic(ctx, comic)
	require.NoError(t, err)

	chapter := &catalog.Chapter{ComicID: comic.ID, ChapterNumber: 1, CreatedAt: now, UpdatedAt: now}
	_, err = store.UpsertChapter(ctx, chapter)
	require.NoError(t, err)

	page := &catalog.Page{ChapterID: chapter.ID, PageNumber: 1, ImageURL: "a.jpg", CreatedAt: now, UpdatedAt: now}
	_, err = store.UpsertPage(ctx, page)
	require.NoError(t, err)

	_, err = store.UpdatePageOCR(ctx, page.ID, "text", now.Add(time.Minute))
	require.NoError(t, err)

	refreshed := &catalog.Page{ChapterID: chapter.ID, PageNumber: 1, ImageURL: "b.jpg", CreatedAt: now, UpdatedAt: now.Add(time.Hour)}
	inserted, err := store.UpsertPage(ctx, refreshed)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, page.ID, refreshed.ID)
	require.NotNil(t, refreshed.OCRText)
	assert.Equal(t, "text", *refreshed.OCRText)

	stored, err := store.FindPageByID(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", stored.ImageURL)
	assert.Equal(t, "text", *stored.OCRText)
}

/*
TestStore_SearchComics_CaseFoldedOrder verifies titles sort without regard to
case, matching the ordering of the PostgreSQL store.
*/
func TestStore_SearchComics_CaseFoldedOrder(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	for _, title := range []string{"Banana Fish", "apple Tree", "Cherry Magic"} {
		comic := newComic(strings.ToLower(strings.Fields(title)[0]), "https://komiku.org/manga/"+title)
		comic.Title = title
		_, err := store.UpsertComic(ctx, comic)
		require.NoError(t, err)
	}

	comics, total, err := store.SearchComics(ctx, "a", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"apple Tree", "Banana Fish", "Cherry Magic"}, slice.Map(comics, func(comic *catalog.Comic) string {
		return comic.Title
	}))
}

/*
TestStore_UpsertComic_BlankStatus verifies the insert default and that an
update without status keeps the stored one.
*/
func TestStore_UpsertComic_BlankStatus(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	fresh := newComic("test-comic", "https://komiku.org/manga/test-comic")
	fresh.Status = ""
	_, err := store.UpsertComic(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusOngoing, fresh.Status)

	completed := newComic("test-comic", "https://komiku.org/manga/test-comic")
	completed.Status = catalog.StatusCompleted
	_, err = store.UpsertComic(ctx, completed)
	require.NoError(t, err)

	blank := newComic("test-comic", "https://komiku.org/manga/test-comic")
	blank.Status = ""
	_, err = store.UpsertComic(ctx, blank)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusCompleted, blank.Status)

	stored, err := store.FindComicBySlug(ctx, "test-comic")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusCompleted, stored.Status)
}
