// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog defines the mirrored comic catalogue and its read-side operations.

It owns the four persisted entities (Comic, Chapter, Page, ReadingProgress), the
[Store] contract the ingestion and progress pipelines write through, and the
query surface served to readers.

Core Responsibility:

  - Hierarchy: A [Comic] owns its [Chapter] rows which own their [Page] rows.
  - Identity: Comics are keyed by slug, chapters by (comic, number), pages by (chapter, number).
  - Ordering: Chapters are always read by ascending number, pages by ascending page number.

This package acts as the source of truth for all content-related data models.
*/
package catalog

import "time"

// # Domain Enums

// Status represents the publication status of a comic on the source.
type Status string

const (
	// StatusOngoing indicates the publication is actively updating.
	StatusOngoing Status = "ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "completed"

	// StatusHiatus indicates the publication is paused indefinitely.
	StatusHiatus Status = "hiatus"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case
		StatusOngoing,
		StatusCompleted,
		StatusHiatus:
		return true
	}
	return false
}

// Statuses lists every accepted [Status] as plain strings, for validation messages.
func Statuses() []string {
	return []string{string(StatusOngoing), string(StatusCompleted), string(StatusHiatus)}
}

// # Core Entities

// Comic is the root of the mirrored hierarchy.
type Comic struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"` // Globally unique, derived from Title
	Description  *string   `json:"description"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	SourceURL    string    `json:"source_url"` // External identity, independent of Slug
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Chapter represents a single chapter (episode) of a comic.
type Chapter struct {
	ID            int64     `json:"id"`
	ComicID       int64     `json:"comic_id"`
	ChapterNumber float64   `json:"chapter_number"` // Supports half-chapters (e.g. 12.5)
	Title         string    `json:"title"`
	Slug          string    `json:"slug"` // Unique in practice within a comic only
	SourceURL     string    `json:"source_url"`
	PageCount     int       `json:"page_count"` // Cached size of the latest ingested page list
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Page represents a single image page within a [Chapter].
type Page struct {
	ID             int64      `json:"id"`
	ChapterID      int64      `json:"chapter_id"`
	PageNumber     int        `json:"page_number"`
	ImageURL       string     `json:"image_url"`
	SourceURL      string     `json:"source_url"`
	OCRText        *string    `json:"ocr_text"`         // Supplied by the OCR collaborator
	OCRProcessedAt *time.Time `json:"ocr_processed_at"` // nil until OCR text is recorded
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ReadingProgress is the single current position of a user within a comic.
type ReadingProgress struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	ComicID    int64     `json:"comic_id"`
	ChapterID  int64     `json:"chapter_id"`
	PageID     int64     `json:"page_id"`
	LastReadAt time.Time `json:"last_read_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// # Read Models

// ComicWithChapters is a comic hydrated with its chapters by ascending number.
type ComicWithChapters struct {
	Comic
	Chapters []*Chapter `json:"chapters"`
}

// ChapterWithPages is a chapter hydrated with its pages by ascending page number.
type ChapterWithPages struct {
	Chapter
	Pages []*Page `json:"pages"`
}

// SearchResult is one page of a substring search over the catalogue.
type SearchResult struct {
	Comics     []*Comic `json:"comics"`
	TotalCount int      `json:"total_count"` // Size of the whole match set
	HasMore    bool     `json:"has_more"`
}

// # Field Identifiers

// Global field names for validation and error details.
const (
	FieldID        = "id"
	FieldSlug      = "slug"
	FieldQuery     = "query"
	FieldLimit     = "limit"
	FieldOffset    = "offset"
	FieldOCRText   = "ocr_text"
	FieldUserID    = "user_id"
	FieldComicID   = "comic_id"
	FieldChapterID = "chapter_id"
	FieldPageID    = "page_id"
)

// # Search Bounds

const (
	// DefaultSearchLimit is used when the client does not ask for a page size.
	DefaultSearchLimit = 20

	// MaxSearchLimit is the largest page a single search may return.
	MaxSearchLimit = 50
)
