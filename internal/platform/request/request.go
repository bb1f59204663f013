// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil reads path parameters, query strings and JSON bodies.

Every helper reports bad input as a VALIDATION_ERROR naming the offending
parameter, so handlers can pass the error straight to respond.Error.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/validate"
)

// maxBodyBytes bounds request bodies. OCR text for a single page is the largest
// body any endpoint accepts.
const maxBodyBytes = 1 << 20

// ErrInvalidJSON is returned when a body is not a single JSON object of the expected shape.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

/*
DecodeJSON decodes the body into target.

Description: Unknown fields are rejected so a misspelled "chapter_id" fails
loudly instead of recording progress against chapter 0. Bodies above 1 MiB and
trailing data after the object are rejected too.

Returns:
  - error: ErrInvalidJSON, or VALIDATION_ERROR for an empty body
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.ValidationError("Request body is empty")
		}
		return ErrInvalidJSON
	}
	if decoder.More() {
		return ErrInvalidJSON
	}
	return nil
}

// Param returns a path parameter as routed by chi.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// ID parses a path parameter as a positive identifier.
func ID(request *http.Request, name string) (int64, error) {
	return parsePositive(chi.URLParam(request, name), name)
}

// QueryID parses a required query parameter as a positive identifier.
func QueryID(request *http.Request, key string) (int64, error) {
	return parsePositive(request.URL.Query().Get(key), key)
}

// Query returns a trimmed query parameter, empty when absent.
func Query(request *http.Request, key string) string {
	return strings.TrimSpace(request.URL.Query().Get(key))
}

func parsePositive(raw, field string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, validate.Invalid(field, "Must be a positive integer")
	}
	return value, nil
}
