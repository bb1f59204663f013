// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	requestutil "github.com/taibuivan/comicvoice/internal/platform/request"
	"github.com/taibuivan/comicvoice/internal/platform/respond"
	"github.com/taibuivan/comicvoice/internal/platform/validate"
)

// Handler implements the HTTP layer for reading progress.
type Handler struct {
	tracker *Tracker
}

// NewHandler constructs a new progress [Handler].
func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// Routes returns the router mounted at /api/v1/progress.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.getProgress)
	router.Put("/", handler.recordProgress)

	return router
}

type recordProgressRequest struct {
	UserID    string `json:"user_id"`
	ComicID   int64  `json:"comic_id"`
	ChapterID int64  `json:"chapter_id"`
	PageID    int64  `json:"page_id"`
}

/*
PUT /api/v1/progress.

Request:
  - user_id: string
  - comic_id, chapter_id, page_id: positive integers

Response:
  - 200: ReadingProgress
  - 400: VALIDATION_ERROR
  - 404: REFERENCE_NOT_FOUND (details name the missing field)
*/
func (handler *Handler) recordProgress(writer http.ResponseWriter, request *http.Request) {
	var input recordProgressRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Positive(catalog.FieldComicID, input.ComicID).
		Positive(catalog.FieldChapterID, input.ChapterID).
		Positive(catalog.FieldPageID, input.PageID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.tracker.RecordProgress(request.Context(), input.UserID, input.ComicID, input.ChapterID, input.PageID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
GET /api/v1/progress?user_id=&comic_id=.

Response:
  - 200: ReadingProgress, or null when the user has not started the comic
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) getProgress(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Query(request, catalog.FieldUserID)
	if userID == "" {
		respond.Error(writer, request, validate.Invalid(catalog.FieldUserID, "This field is required"))
		return
	}

	comicID, err := requestutil.QueryID(request, catalog.FieldComicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, found, err := handler.tracker.GetProgress(request.Context(), userID, comicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !found {
		respond.OK(writer, nil)
		return
	}

	respond.OK(writer, record)
}
