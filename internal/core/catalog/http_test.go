// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	"github.com/taibuivan/comicvoice/internal/core/catalog/memstore"
)

// newTestRouter mounts the catalogue handler the way the API server does.
func newTestRouter(store catalog.Store) http.Handler {
	handler := catalog.NewHandler(catalog.NewService(store, discardLogger()))

	router := chi.NewRouter()
	router.Mount("/api/v1/comics", handler.ComicRoutes())
	router.Mount("/api/v1/chapters", handler.ChapterRoutes())
	router.Mount("/api/v1/pages", handler.PageRoutes())
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

// errorCode extracts the "code" field of an error envelope.
func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Code
}

/*
TestHandler_Comics exercises the comic routes end to end over the in-memory store.
*/
func TestHandler_Comics(t *testing.T) {
	store := memstore.New()
	comic := seedComic(t, store, "Test Comic", nil)
	seedChapter(t, store, comic, 2, 1)
	seedChapter(t, store, comic, 1, 2)
	router := newTestRouter(store)

	t.Run("get_by_slug", func(t *testing.T) {
		recorder := serve(router, http.MethodGet, "/api/v1/comics/test-comic", "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data catalog.ComicWithChapters `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "Test Comic", envelope.Data.Title)
		require.Len(t, envelope.Data.Chapters, 2)
		assert.Equal(t, 1.0, envelope.Data.Chapters[0].ChapterNumber)
	})

	t.Run("unknown_slug", func(t *testing.T) {
		recorder := serve(router, http.MethodGet, "/api/v1/comics/nope", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "NOT_FOUND", errorCode(t, recorder))
	})

	t.Run("chapters", func(t *testing.T) {
		recorder := serve(router, http.MethodGet, fmt.Sprintf("/api/v1/comics/%d/chapters", comic.ID), "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data []catalog.Chapter `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Len(t, envelope.Data, 2)
	})

	t.Run("chapters_of_unknown_comic", func(t *testing.T) {
		recorder := serve(router, http.MethodGet, "/api/v1/comics/999/chapters", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("chapters_with_non_numeric_id", func(t *testing.T) {
		recorder := serve(router, http.MethodGet, "/api/v1/comics/abc/chapters", "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, recorder))
	})
}

/*
TestHandler_Search checks query parsing and the result envelope.
*/
func TestHandler_Search(t *testing.T) {
	store := memstore.New()
	for _, title := range []string{"Naruto", "Naruto Gaiden", "One Piece"} {
		seedComic(t, store, title, nil)
	}
	router := newTestRouter(store)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantTotal  int
	}{
		{"match", "/api/v1/comics?q=naruto", http.StatusOK, 2},
		{"window", "/api/v1/comics?q=naruto&limit=1&offset=1", http.StatusOK, 2},
		{"missing_query", "/api/v1/comics", http.StatusBadRequest, 0},
		{"limit_too_large", "/api/v1/comics?q=naruto&limit=51", http.StatusBadRequest, 0},
		{"malformed_offset", "/api/v1/comics?q=naruto&offset=x", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(router, http.MethodGet, tt.target, "")
			require.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				var envelope struct {
					Data catalog.SearchResult `json:"data"`
				}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
				assert.Equal(t, tt.wantTotal, envelope.Data.TotalCount)
			}
		})
	}
}

/*
TestHandler_PagesAndOCR covers the page listing and the OCR write-back.
*/
func TestHandler_PagesAndOCR(t *testing.T) {
	store := memstore.New()
	comic := seedComic(t, store, "Test Comic", nil)
	chapter := seedChapter(t, store, comic, 1, 2)
	router := newTestRouter(store)

	recorder := serve(router, http.MethodGet, fmt.Sprintf("/api/v1/chapters/%d/pages", chapter.ID), "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var pagesEnvelope struct {
		Data catalog.ChapterWithPages `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &pagesEnvelope))
	require.Len(t, pagesEnvelope.Data.Pages, 2)
	pageID := pagesEnvelope.Data.Pages[0].ID

	t.Run("unknown_chapter", func(t *testing.T) {
		recorder := serve(router, http.MethodGet, "/api/v1/chapters/999/pages", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("record_ocr", func(t *testing.T) {
		recorder := serve(router, http.MethodPut, fmt.Sprintf("/api/v1/pages/%d/ocr", pageID), `{"ocr_text":"Hello!"}`)
		require.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data catalog.Page `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		require.NotNil(t, envelope.Data.OCRText)
		assert.Equal(t, "Hello!", *envelope.Data.OCRText)
		assert.NotNil(t, envelope.Data.OCRProcessedAt)
	})

	t.Run("missing_text", func(t *testing.T) {
		recorder := serve(router, http.MethodPut, fmt.Sprintf("/api/v1/pages/%d/ocr", pageID), `{}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown_page", func(t *testing.T) {
		recorder := serve(router, http.MethodPut, "/api/v1/pages/999/ocr", `{"ocr_text":""}`)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
