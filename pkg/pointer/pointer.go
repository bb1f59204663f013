// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer helps with the optional (nullable) columns of the catalogue,
// which are modelled as pointers: a nil *string is SQL NULL.
package pointer

import "strings"

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, returning the zero value when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// TrimmedOrNil trims the pointed-to text and maps blank text to nil,
// so an empty scraped field is stored as NULL rather than "".
func TrimmedOrNil(p *string) *string {
	trimmed := strings.TrimSpace(Val(p))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
