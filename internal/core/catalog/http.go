// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	requestutil "github.com/taibuivan/comicvoice/internal/platform/request"
	"github.com/taibuivan/comicvoice/internal/platform/respond"
	"github.com/taibuivan/comicvoice/internal/platform/validate"
	"github.com/taibuivan/comicvoice/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for catalogue reads and OCR write-back.
type Handler struct {
	service *Service
}

// NewHandler constructs a new catalogue [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ComicRoutes returns the router mounted at /api/v1/comics.
func (handler *Handler) ComicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.searchComics)
	router.Get("/{slug}", handler.getComic)
	router.Get("/{id}/chapters", handler.listChapters)

	return router
}

// ChapterRoutes returns the router mounted at /api/v1/chapters.
func (handler *Handler) ChapterRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{id}/pages", handler.listPages)
	return router
}

// PageRoutes returns the router mounted at /api/v1/pages.
func (handler *Handler) PageRoutes() chi.Router {
	router := chi.NewRouter()
	router.Put("/{id}/ocr", handler.recordOCRText)
	return router
}

// # Comic Endpoints

/*
GET /api/v1/comics.

Description: Substring search over title and description.

Request:
  - q: string (required)
  - limit: int (1..50, default 20)
  - offset: int (>= 0, default 0)

Response:
  - 200: SearchResult
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) searchComics(writer http.ResponseWriter, request *http.Request) {
	params, ok := pagination.FromRequest(request, DefaultSearchLimit)
	if !ok {
		respond.Error(writer, request, validate.Invalid(FieldLimit, "limit and offset must be integers"))
		return
	}

	result, err := handler.service.SearchComics(request.Context(), requestutil.Query(request, "q"), params.Limit, params.Offset)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
GET /api/v1/comics/{slug}.

Response:
  - 200: ComicWithChapters
  - 404: NOT_FOUND
*/
func (handler *Handler) getComic(writer http.ResponseWriter, request *http.Request) {
	comic, found, err := handler.service.GetComicBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !found {
		respond.Error(writer, request, apperr.NotFound("Comic"))
		return
	}

	respond.OK(writer, comic)
}

/*
GET /api/v1/comics/{id}/chapters.

Response:
  - 200: []Chapter (ascending by chapter number)
  - 400: VALIDATION_ERROR (non-numeric id)
  - 404: NOT_FOUND (comic)
*/
func (handler *Handler) listChapters(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.ID(request, FieldID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapters, err := handler.service.GetChapters(request.Context(), comicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapters)
}

// # Chapter Endpoints

/*
GET /api/v1/chapters/{id}/pages.

Response:
  - 200: ChapterWithPages
  - 404: NOT_FOUND (chapter)
*/
func (handler *Handler) listPages(writer http.ResponseWriter, request *http.Request) {
	chapterID, err := requestutil.ID(request, FieldID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, found, err := handler.service.GetComicPages(request.Context(), chapterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !found {
		respond.Error(writer, request, apperr.NotFound("Chapter"))
		return
	}

	respond.OK(writer, chapter)
}

// # Page Endpoints

type recordOCRRequest struct {
	OCRText *string `json:"ocr_text"`
}

/*
PUT /api/v1/pages/{id}/ocr.

Request:
  - ocr_text: string (required, may be empty)

Response:
  - 200: Page
  - 404: NOT_FOUND (page)
*/
func (handler *Handler) recordOCRText(writer http.ResponseWriter, request *http.Request) {
	pageID, err := requestutil.ID(request, FieldID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input recordOCRRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.OCRText == nil {
		respond.Error(writer, request, validate.Invalid(FieldOCRText, "This field is required"))
		return
	}

	page, err := handler.service.RecordOCRText(request.Context(), pageID, *input.OCRText)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, page)
}
