// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	requestutil "github.com/taibuivan/comicvoice/internal/platform/request"
)

// withURLParam attaches a chi route parameter to the request.
func withURLParam(request *http.Request, key, value string) *http.Request {
	routeContext := chi.NewRouteContext()
	routeContext.URLParams.Add(key, value)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, routeContext))
}

/*
TestID covers positive identifier parsing from path parameters.
*/
func TestID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{"valid", "42", 42, false},
		{"zero", "0", 0, true},
		{"negative", "-3", 0, true},
		{"not_a_number", "abc", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.raw)

			got, err := requestutil.ID(request, "id")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
				assert.Equal(t, "id", apperr.As(err).Details[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestQuery checks query parameter helpers.
*/
func TestQuery(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/?q=+naruto+&comic_id=7", nil)

	assert.Equal(t, "naruto", requestutil.Query(request, "q"))

	comicID, err := requestutil.QueryID(request, "comic_id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), comicID)

	_, err = requestutil.QueryID(request, "user_id")
	assert.Error(t, err)
}

/*
TestDecodeJSON verifies malformed, empty and mistyped bodies map to a validation error.
*/
func TestDecodeJSON(t *testing.T) {
	type ocrBody struct {
		Text string `json:"ocr_text"`
	}

	decode := func(body string) (ocrBody, error) {
		var target ocrBody
		request := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
		err := requestutil.DecodeJSON(httptest.NewRecorder(), request, &target)
		return target, err
	}

	target, err := decode(`{"ocr_text":"hello"}`)
	require.NoError(t, err)
	assert.Equal(t, "hello", target.Text)

	tests := []struct {
		name string
		body string
	}{
		{"truncated", `{"ocr_text":`},
		{"empty", ``},
		{"unknown_field", `{"ocr":"hello"}`},
		{"trailing_object", `{"ocr_text":"a"}{"ocr_text":"b"}`},
		{"too_large", `{"ocr_text":"` + strings.Repeat("x", 1<<20) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(tt.body)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}
}
