// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/comicvoice/internal/platform/request"
	"github.com/taibuivan/comicvoice/internal/platform/respond"
)

// Handler exposes synchronous ingestion over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new ingestion [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted at /api/v1/ingest.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.ingest)
	return router
}

type ingestRequest struct {
	ComicURL string `json:"comic_url"`
}

/*
POST /api/v1/ingest.

Description: Fetches and reconciles one comic before answering.

Request:
  - comic_url: string (absolute http/https URL)

Response:
  - 200: ComicWithChapters
  - 400: VALIDATION_ERROR
  - 409: CONFLICT (slug collision, ingestion already running)
  - 502: UPSTREAM_FAILURE
  - 503: SERVICE_UNAVAILABLE (no source configured)
*/
func (handler *Handler) ingest(writer http.ResponseWriter, request *http.Request) {
	var input ingestRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.Ingest(request.Context(), input.ComicURL)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}
