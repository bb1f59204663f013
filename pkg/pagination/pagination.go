// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// It standardizes how limit/offset windows are requested via query parameters
// and whether rows remain past the requested window.
// Range checks belong to the service that owns the listing; this package only
// parses and reports.
package pagination

import (
	"net/http"
	"strconv"
)

// Params holds the parsed limit and offset from a request's query string.
type Params struct {
	Limit  int
	Offset int
}

// HasMore reports whether rows remain after the window [offset, offset+limit).
func HasMore(limit, offset, total int) bool {
	return offset+limit < total
}

// FromRequest parses "limit" and "offset" query parameters from an HTTP request.
//
// # Defaults
//
// An absent limit becomes defaultLimit and an absent offset becomes 0. A value
// that is present but not an integer is reported through ok == false so the
// caller can answer with a validation error instead of guessing.
func FromRequest(r *http.Request, defaultLimit int) (params Params, ok bool) {
	limit, limitOK := parseIntParam(r, "limit", defaultLimit)
	offset, offsetOK := parseIntParam(r, "offset", 0)
	return Params{Limit: limit, Offset: offset}, limitOK && offsetOK
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal, false
	}

	return n, true
}
