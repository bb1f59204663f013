// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package memstore provides an in-memory implementation of [catalog.Store].

It mirrors the PostgreSQL store's contract (natural-key upserts, slug collision
rejection, ordering, foreign-key checks) so the services can be exercised in unit
tests and by the ingest CLI's --memory mode without a database.

Transactions are emulated by running the callback against a deep copy of the
state and swapping it in on success. A transaction holds the store's mutex for
its whole duration, so concurrent writers are serialised.
*/
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	"github.com/taibuivan/comicvoice/internal/platform/apperr"
)

// state is the full dataset. Every table carries its own ID sequence.
type state struct {
	comics   map[int64]catalog.Comic
	chapters map[int64]catalog.Chapter
	pages    map[int64]catalog.Page
	progress map[int64]catalog.ReadingProgress

	comicSeq    int64
	chapterSeq  int64
	pageSeq     int64
	progressSeq int64
}

func newState() *state {
	return &state{
		comics:   map[int64]catalog.Comic{},
		chapters: map[int64]catalog.Chapter{},
		pages:    map[int64]catalog.Page{},
		progress: map[int64]catalog.ReadingProgress{},
	}
}

func (s *state) clone() *state {
	copied := *s
	copied.comics = make(map[int64]catalog.Comic, len(s.comics))
	for id, row := range s.comics {
		copied.comics[id] = row
	}
	copied.chapters = make(map[int64]catalog.Chapter, len(s.chapters))
	for id, row := range s.chapters {
		copied.chapters[id] = row
	}
	copied.pages = make(map[int64]catalog.Page, len(s.pages))
	for id, row := range s.pages {
		copied.pages[id] = row
	}
	copied.progress = make(map[int64]catalog.ReadingProgress, len(s.progress))
	for id, row := range s.progress {
		copied.progress[id] = row
	}
	return &copied
}

// shared is the part of the store common to the root and its transactional views.
type shared struct {
	mu       sync.Mutex
	data     *state
	failures map[string]error
}

// Store implements [catalog.Store] in memory. The zero value is not usable; call [New].
type Store struct {
	shared *shared
	data   *state // non-nil only on a transactional view
}

var _ catalog.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{shared: &shared{data: newState(), failures: map[string]error{}}}
}

// FailOn makes the next call of the named method (e.g. "UpsertPage") return err.
// It lets tests observe how callers react to storage failures.
func (store *Store) FailOn(method string, err error) {
	store.shared.mu.Lock()
	defer store.shared.mu.Unlock()
	store.shared.failures[method] = err
}

// # Locking

// acquire returns the state to operate on and the function releasing it.
func (store *Store) acquire() (*state, func()) {
	if store.data != nil {
		return store.data, func() {}
	}
	store.shared.mu.Lock()
	return store.shared.data, store.shared.mu.Unlock
}

// injected pops a failure registered with [Store.FailOn]. Callers hold the lock.
func (store *Store) injected(method string) error {
	err, ok := store.shared.failures[method]
	if !ok {
		return nil
	}
	delete(store.shared.failures, method)
	return apperr.StorageFailure(strings.ToLower(method), err)
}

// WithinTx runs fn against a copy of the state, publishing it only when fn succeeds.
func (store *Store) WithinTx(context context.Context, fn func(tx catalog.Store) error) error {
	if store.data != nil {
		return fn(store)
	}

	store.shared.mu.Lock()
	defer store.shared.mu.Unlock()

	view := &Store{shared: store.shared, data: store.shared.data.clone()}
	if err := fn(view); err != nil {
		return err
	}

	if err := context.Err(); err != nil {
		return apperr.StorageFailure("commit transaction", err)
	}
	store.shared.data = view.data
	return nil
}

// # Comics

func (store *Store) FindComicByID(_ context.Context, id int64) (*catalog.Comic, error) {
	data, release := store.acquire()
	defer release()

	comic, ok := data.comics[id]
	if !ok {
		return nil, apperr.NotFound("Comic")
	}
	return &comic, nil
}

func (store *Store) FindComicBySlug(_ context.Context, slug string) (*catalog.Comic, error) {
	data, release := store.acquire()
	defer release()

	for _, comic := range data.comics {
		if comic.Slug == slug {
			return &comic, nil
		}
	}
	return nil, apperr.NotFound("Comic")
}

func (store *Store) UpsertComic(_ context.Context, comic *catalog.Comic) (bool, error) {
	data, release := store.acquire()
	defer release()

	if err := store.injected("UpsertComic"); err != nil {
		return false, err
	}

	for id, existing := range data.comics {
		if existing.Slug != comic.Slug {
			continue
		}
		if existing.SourceURL != comic.SourceURL {
			return false, apperr.Conflict(fmt.Sprintf("slug %q already belongs to a different source", comic.Slug))
		}

		existing.Title = comic.Title
		existing.Description = comic.Description
		existing.ThumbnailURL = comic.ThumbnailURL
		if comic.Status != "" {
			existing.Status = comic.Status
		}
		existing.UpdatedAt = comic.UpdatedAt
		data.comics[id] = existing

		comic.ID = existing.ID
		comic.Status = existing.Status
		comic.CreatedAt = existing.CreatedAt
		return false, nil
	}

	if comic.Status == "" {
		comic.Status = catalog.StatusOngoing
	}
	data.comicSeq++
	comic.ID = data.comicSeq
	data.comics[comic.ID] = *comic
	return true, nil
}

func (store *Store) SearchComics(_ context.Context, query string, limit, offset int) ([]*catalog.Comic, int, error) {
	data, release := store.acquire()
	defer release()

	needle := strings.ToLower(query)
	var matches []catalog.Comic
	for _, comic := range data.comics {
		description := ""
		if comic.Description != nil {
			description = *comic.Description
		}
		if strings.Contains(strings.ToLower(comic.Title), needle) || strings.Contains(strings.ToLower(description), needle) {
			matches = append(matches, comic)
		}
	}

	slices.SortFunc(matches, func(a, b catalog.Comic) int {
		return cmp.Or(cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)), cmp.Compare(a.ID, b.ID))
	})

	window := []*catalog.Comic{}
	for index := offset; index < len(matches) && index < offset+limit; index++ {
		comic := matches[index]
		window = append(window, &comic)
	}
	return window, len(matches), nil
}

// # Chapters

func (store *Store) FindChapterByID(_ context.Context, id int64) (*catalog.Chapter, error) {
	data, release := store.acquire()
	defer release()

	chapter, ok := data.chapters[id]
	if !ok {
		return nil, apperr.NotFound("Chapter")
	}
	return &chapter, nil
}

func (store *Store) ListChapters(_ context.Context, comicID int64) ([]*catalog.Chapter, error) {
	data, release := store.acquire()
	defer release()

	chapters := []*catalog.Chapter{}
	for _, chapter := range data.chapters {
		if chapter.ComicID == comicID {
			chapters = append(chapters, &chapter)
		}
	}

	slices.SortFunc(chapters, func(a, b *catalog.Chapter) int {
		return cmp.Compare(a.ChapterNumber, b.ChapterNumber)
	})
	return chapters, nil
}

func (store *Store) UpsertChapter(_ context.Context, chapter *catalog.Chapter) (bool, error) {
	data, release := store.acquire()
	defer release()

	if err := store.injected("UpsertChapter"); err != nil {
		return false, err
	}
	if _, ok := data.comics[chapter.ComicID]; !ok {
		return false, apperr.StorageFailure(fmt.Sprintf("upsert chapter %g of comic %d: referenced row is missing", chapter.ChapterNumber, chapter.ComicID), nil)
	}

	for id, existing := range data.chapters {
		if existing.ComicID != chapter.ComicID || existing.ChapterNumber != chapter.ChapterNumber {
			continue
		}

		existing.Title = chapter.Title
		existing.Slug = chapter.Slug
		existing.SourceURL = chapter.SourceURL
		existing.PageCount = chapter.PageCount
		existing.UpdatedAt = chapter.UpdatedAt
		data.chapters[id] = existing

		chapter.ID = existing.ID
		chapter.CreatedAt = existing.CreatedAt
		return false, nil
	}

	data.chapterSeq++
	chapter.ID = data.chapterSeq
	data.chapters[chapter.ID] = *chapter
	return true, nil
}

// # Pages

func (store *Store) FindPageByID(_ context.Context, id int64) (*catalog.Page, error) {
	data, release := store.acquire()
	defer release()

	page, ok := data.pages[id]
	if !ok {
		return nil, apperr.NotFound("Page")
	}
	return &page, nil
}

func (store *Store) ListPages(_ context.Context, chapterID int64) ([]*catalog.Page, error) {
	data, release := store.acquire()
	defer release()

	pages := []*catalog.Page{}
	for _, page := range data.pages {
		if page.ChapterID == chapterID {
			pages = append(pages, &page)
		}
	}

	slices.SortFunc(pages, func(a, b *catalog.Page) int {
		return cmp.Compare(a.PageNumber, b.PageNumber)
	})
	return pages, nil
}

func (store *Store) UpsertPage(_ context.Context, page *catalog.Page) (bool, error) {
	data, release := store.acquire()
	defer release()

	if err := store.injected("UpsertPage"); err != nil {
		return false, err
	}
	if _, ok := data.chapters[page.ChapterID]; !ok {
		return false, apperr.StorageFailure(fmt.Sprintf("upsert page %d of chapter %d: referenced row is missing", page.PageNumber, page.ChapterID), nil)
	}

	for id, existing := range data.pages {
		if existing.ChapterID != page.ChapterID || existing.PageNumber != page.PageNumber {
			continue
		}

		existing.ImageURL = page.ImageURL
		existing.SourceURL = page.SourceURL
		existing.UpdatedAt = page.UpdatedAt
		data.pages[id] = existing

		page.ID = existing.ID
		page.CreatedAt = existing.CreatedAt
		page.OCRText = existing.OCRText
		page.OCRProcessedAt = existing.OCRProcessedAt
		return false, nil
	}

	data.pageSeq++
	page.ID = data.pageSeq
	page.OCRText = nil
	page.OCRProcessedAt = nil
	data.pages[page.ID] = *page
	return true, nil
}

func (store *Store) UpdatePageOCR(_ context.Context, pageID int64, text string, at time.Time) (*catalog.Page, error) {
	data, release := store.acquire()
	defer release()

	if err := store.injected("UpdatePageOCR"); err != nil {
		return nil, err
	}

	page, ok := data.pages[pageID]
	if !ok {
		return nil, apperr.NotFound("Page")
	}

	page.OCRText = &text
	page.OCRProcessedAt = &at
	page.UpdatedAt = at
	data.pages[pageID] = page
	return &page, nil
}

// # Reading Progress

func (store *Store) FindProgress(_ context.Context, userID string, comicID int64) (*catalog.ReadingProgress, error) {
	data, release := store.acquire()
	defer release()

	var latest *catalog.ReadingProgress
	for _, progress := range data.progress {
		if progress.UserID != userID || progress.ComicID != comicID {
			continue
		}
		if latest == nil || progress.LastReadAt.After(latest.LastReadAt) {
			latest = &progress
		}
	}

	if latest == nil {
		return nil, apperr.NotFound("Reading progress")
	}
	return latest, nil
}

func (store *Store) CreateProgress(_ context.Context, progress *catalog.ReadingProgress) error {
	data, release := store.acquire()
	defer release()

	if err := store.injected("CreateProgress"); err != nil {
		return err
	}
	if err := checkProgressReferences(data, progress); err != nil {
		return err
	}

	// Mirrors the (user_id, comic_id) unique constraint
	for id, existing := range data.progress {
		if existing.UserID == progress.UserID && existing.ComicID == progress.ComicID {
			existing.ChapterID = progress.ChapterID
			existing.PageID = progress.PageID
			existing.LastReadAt = progress.LastReadAt
			existing.UpdatedAt = progress.UpdatedAt
			data.progress[id] = existing

			progress.ID = existing.ID
			progress.CreatedAt = existing.CreatedAt
			return nil
		}
	}

	data.progressSeq++
	progress.ID = data.progressSeq
	data.progress[progress.ID] = *progress
	return nil
}

func (store *Store) UpdateProgress(_ context.Context, progress *catalog.ReadingProgress) error {
	data, release := store.acquire()
	defer release()

	if err := store.injected("UpdateProgress"); err != nil {
		return err
	}

	existing, ok := data.progress[progress.ID]
	if !ok {
		return apperr.NotFound("Reading progress")
	}
	if err := checkProgressReferences(data, progress); err != nil {
		return err
	}

	existing.ChapterID = progress.ChapterID
	existing.PageID = progress.PageID
	existing.LastReadAt = progress.LastReadAt
	existing.UpdatedAt = progress.UpdatedAt
	data.progress[progress.ID] = existing
	return nil
}

func checkProgressReferences(data *state, progress *catalog.ReadingProgress) error {
	_, comicOK := data.comics[progress.ComicID]
	_, chapterOK := data.chapters[progress.ChapterID]
	_, pageOK := data.pages[progress.PageID]
	if !comicOK || !chapterOK || !pageOK {
		return apperr.StorageFailure(fmt.Sprintf("write progress of %q on comic %d: referenced row is missing", progress.UserID, progress.ComicID), nil)
	}
	return nil
}
