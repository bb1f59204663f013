// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Slugs are the stable identity of a mirrored comic (e.g., "solo-leveling").
// The same title always yields the same slug, so re-ingesting a source
// resolves to the row created by the first ingestion.
package slug

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// whitespace matches any run of Unicode whitespace.
	whitespace = regexp.MustCompile(`\s+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD and drops combining marks (é → e).
// 2. Converts to lowercase.
// 3. Drops every rune that is not a letter, digit, whitespace or hyphen.
// 4. Turns whitespace runs into a single hyphen.
// 5. Collapses multiple hyphens and trims leading/trailing hyphens.
//
// An input with no letters or digits yields "".
func From(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Strip special characters
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
			return r
		}
		return -1
	}, result)

	// 4. Clean up hyphenation
	result = whitespace.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// Chapter derives the slug of a chapter from its comic title and number.
//
// Fractional numbers keep their decimal part as a separate segment, so
// chapter 1.5 ("title-chapter-1-5") never collides with chapter 15.
func Chapter(comicTitle string, number float64) string {
	formatted := strconv.FormatFloat(number, 'f', -1, 64)
	formatted = strings.ReplaceAll(formatted, ".", "-")
	return From(comicTitle + " chapter " + formatted)
}

// FromURL returns the slug of the last non-empty path segment of rawURL.
// It returns "" when the URL cannot be parsed or has no path.
func FromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		segment, err := url.PathUnescape(segments[i])
		if err != nil {
			segment = segments[i]
		}
		if s := From(strings.ReplaceAll(segment, "-", " ")); s != "" {
			return s
		}
	}

	return ""
}

// defaultPorts are dropped by [CanonicalURL].
var defaultPorts = map[string]string{"http": "80", "https": "443"}

// CanonicalURL returns the spelling of a source URL used as its identity.
// Scheme and host are lower-cased, a default port, the fragment and trailing
// slashes are dropped, so "HTTPS://Komiku.org:443/manga/x/" and
// "https://komiku.org/manga/x" name the same source. Unparseable or relative
// input is returned trimmed.
func CanonicalURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return rawURL
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	host, port := strings.ToLower(parsed.Hostname()), parsed.Port()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" && defaultPorts[parsed.Scheme] != port {
		host += ":" + port
	}
	parsed.Host = host

	parsed.Fragment, parsed.RawFragment = "", ""
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = strings.TrimRight(parsed.RawPath, "/")
	return parsed.String()
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
