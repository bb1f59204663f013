// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate collects field-level failures into one VALIDATION_ERROR.
//
// # Field Paths
//
// Nested payload fields are reported with [Path], e.g.
// "chapters[2].pages[0].page_number", so a scraper author can find the
// offending entry without re-reading the whole payload.
package validate

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
)

// Validator collects failures through a chainable API. It is not safe for
// concurrent use; create one per operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if value holds more than max characters.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Range fails if value is outside [min, max].
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return v
}

// HTTPURL fails unless value is an absolute http or https URL with a host.
// Empty values pass; pair it with [Validator.Required] when the URL is mandatory.
func (v *Validator) HTTPURL(field, value string) *Validator {
	value = strings.TrimSpace(value)
	if value == "" {
		return v
	}

	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		v.add(field, "Must be an absolute http(s) URL")
	}
	return v
}

// Positive fails unless an identifier is greater than zero.
func (v *Validator) Positive(field string, value int64) *Validator {
	if value <= 0 {
		v.add(field, "Must be a positive integer")
	}
	return v
}

// NonNegative fails for NaN, infinities and negative numbers. Chapter numbers
// such as 0 (prologue) and 1.5 (extra) pass.
func (v *Validator) NonNegative(field string, value float64) *Validator {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		v.add(field, "Must be a non-negative number")
	}
	return v
}

// OneOf fails if value is not in allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, candidate := range allowed {
		if value == candidate {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds message for field when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns the VALIDATION_ERROR carrying every failure, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// # Helpers

// Distinct reports each key that was already seen as a duplicate. The zero
// value is ready to use.
type Distinct[K comparable] struct {
	seen map[K]bool
}

// Check fails field when key repeats an earlier call.
func (d *Distinct[K]) Check(v *Validator, field string, key K) {
	if d.seen == nil {
		d.seen = make(map[K]bool)
	}
	if d.seen[key] {
		v.add(field, fmt.Sprintf("Duplicate value %v", key))
	}
	d.seen[key] = true
}

// Path joins a field path. Integers become indexes of the preceding segment.
//
//	Path("chapters", 2, "pages", 0, "page_number") // chapters[2].pages[0].page_number
func Path(segments ...any) string {
	var builder strings.Builder
	for _, segment := range segments {
		switch typed := segment.(type) {
		case int:
			fmt.Fprintf(&builder, "[%d]", typed)
		default:
			if builder.Len() > 0 {
				builder.WriteByte('.')
			}
			fmt.Fprint(&builder, typed)
		}
	}
	return builder.String()
}

// Invalid builds a VALIDATION_ERROR for a single field.
func Invalid(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
