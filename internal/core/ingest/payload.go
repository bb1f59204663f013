// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ingest mirrors an external comic source into the catalogue.

A [Fetcher] produces a normalised [Payload] for a source URL, a [Locker]
serialises work per source, and the [Reconciler] merges the payload into the
store inside one transaction: comic first, then each chapter, then each page,
all keyed by their natural identities so that re-ingestion updates in place.

Nothing is ever pruned: chapters or pages that vanished from the source stay
in the catalogue.
*/
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/validate"
	"github.com/taibuivan/comicvoice/pkg/pointer"
	"github.com/taibuivan/comicvoice/pkg/slug"
)

// # Payload Schema

// Payload is the normalised representation of a comic as read from the source.
type Payload struct {
	Title        string           `json:"title"`
	Description  *string          `json:"description"`
	ThumbnailURL *string          `json:"thumbnail_url"`
	Status       catalog.Status   `json:"status"` // Empty means ongoing
	SourceURL    string           `json:"source_url"`
	Chapters     []ChapterPayload `json:"chapters"`
}

// ChapterPayload is one chapter of a [Payload], pages in source order.
type ChapterPayload struct {
	ChapterNumber float64       `json:"chapter_number"`
	Title         string        `json:"title"`
	SourceURL     string        `json:"source_url"`
	Pages         []PagePayload `json:"pages"`
}

// PagePayload is one page image of a [ChapterPayload].
type PagePayload struct {
	PageNumber int    `json:"page_number"`
	ImageURL   string `json:"image_url"`
	SourceURL  string `json:"source_url"`
}

// maxTitleLength bounds comic and chapter titles.
const maxTitleLength = 500

// # Decoding

/*
ParsePayload decodes a payload document.

Description: Besides strict JSON the document may carry comments and trailing
commas (JWCC via hujson), which keeps hand-maintained fixture files readable.

Returns:
  - *Payload: The decoded payload, not yet validated
  - error: VALIDATION_ERROR for malformed documents
*/
func ParsePayload(data []byte) (*Payload, error) {
	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, apperr.ValidationError(fmt.Sprintf("malformed payload: %v", err))
	}

	payload := &Payload{}
	if err := json.Unmarshal(standard, payload); err != nil {
		return nil, apperr.ValidationError(fmt.Sprintf("malformed payload: %v", err))
	}
	return payload, nil
}

// # Validation

/*
Validate checks the structural rules a payload must satisfy before reconciliation.

Rules:
  - title is non-blank and at most 500 characters
  - source_url is an absolute http(s) URL
  - status is empty or one of the catalogue statuses
  - chapter numbers are finite, non-negative and unique within the payload
  - page numbers are >= 1 and unique within their chapter

Returns:
  - error: VALIDATION_ERROR listing every failed field
*/
func (payload *Payload) Validate() error {
	validator := &validate.Validator{}

	validator.Required("title", payload.Title).
		MaxLen("title", payload.Title, maxTitleLength).
		Required("source_url", payload.SourceURL).
		HTTPURL("source_url", payload.SourceURL)

	if payload.Status != "" {
		validator.OneOf("status", string(payload.Status), catalog.Statuses()...)
	}

	var chapterNumbers validate.Distinct[float64]
	for chapterIndex, chapter := range payload.Chapters {
		field := validate.Path("chapters", chapterIndex, "chapter_number")
		validator.NonNegative(field, chapter.ChapterNumber)
		chapterNumbers.Check(validator, field, chapter.ChapterNumber)
		validator.MaxLen(validate.Path("chapters", chapterIndex, "title"), chapter.Title, maxTitleLength)

		var pageNumbers validate.Distinct[int]
		for pageIndex, page := range chapter.Pages {
			field := validate.Path("chapters", chapterIndex, "pages", pageIndex, "page_number")
			validator.Custom(field, page.PageNumber < 1, "Must be at least 1")
			pageNumbers.Check(validator, field, page.PageNumber)
		}
	}

	return validator.Err()
}

// normalized returns a copy with trimmed text, blank optionals as nil and the
// source URL in canonical form. A blank status stays blank: the store applies
// the default on insert and keeps the stored status on update.
func (payload *Payload) normalized() Payload {
	normalized := *payload
	normalized.Title = strings.TrimSpace(payload.Title)
	normalized.SourceURL = slug.CanonicalURL(payload.SourceURL)
	normalized.Description = pointer.TrimmedOrNil(payload.Description)
	normalized.ThumbnailURL = pointer.TrimmedOrNil(payload.ThumbnailURL)
	return normalized
}

// PageTotal returns the number of pages across all chapters.
func (payload *Payload) PageTotal() int {
	total := 0
	for _, chapter := range payload.Chapters {
		total += len(chapter.Pages)
	}
	return total
}
