// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/constants"
	"github.com/taibuivan/comicvoice/pkg/slug"
)

// Fetcher produces the normalised payload of one comic source.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string) (*Payload, error)
}

// maxPayloadBytes caps a single scraper response.
const maxPayloadBytes = 32 << 20

// # HTTP Scraper

// HTTPFetcher asks an external scraper service for the payload of a source URL.
//
// The scraper is called as GET <endpoint>?url=<source> and must answer 200
// with a payload document.
type HTTPFetcher struct {
	endpoint string
	client   *http.Client
}

// NewHTTPFetcher builds a fetcher for the given scraper endpoint.
func NewHTTPFetcher(endpoint string) *HTTPFetcher {
	return &HTTPFetcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: constants.ScraperTimeout},
	}
}

// WithClient replaces the HTTP client, for tests against httptest servers.
func (fetcher *HTTPFetcher) WithClient(client *http.Client) *HTTPFetcher {
	fetcher.client = client
	return fetcher
}

// Fetch implements [Fetcher].
func (fetcher *HTTPFetcher) Fetch(context context.Context, sourceURL string) (*Payload, error) {
	target, err := url.Parse(fetcher.endpoint)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("scraper endpoint %q: %w", fetcher.endpoint, err))
	}
	query := target.Query()
	query.Set("url", sourceURL)
	target.RawQuery = query.Encode()

	request, err := http.NewRequestWithContext(context, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := fetcher.client.Do(request)
	if err != nil {
		return nil, apperr.UpstreamFailure(sourceURL, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxPayloadBytes))
	if err != nil {
		return nil, apperr.UpstreamFailure(sourceURL, err)
	}

	if response.StatusCode != http.StatusOK {
		return nil, apperr.UpstreamFailure(sourceURL, fmt.Errorf("scraper answered %s", response.Status))
	}

	payload, err := ParsePayload(body)
	if err != nil {
		return nil, apperr.UpstreamFailure(sourceURL, err)
	}
	return payload, nil
}

// # Fixture Files

// FixtureFetcher serves payloads from a directory of JSON files named
// after the slug of the source URL's last path segment.
//
// https://komiku.org/manga/test-comic/ resolves to <dir>/test-comic.json.
type FixtureFetcher struct {
	dir string
}

// NewFixtureFetcher builds a fetcher reading from dir.
func NewFixtureFetcher(dir string) *FixtureFetcher {
	return &FixtureFetcher{dir: dir}
}

// Fetch implements [Fetcher].
func (fetcher *FixtureFetcher) Fetch(_ context.Context, sourceURL string) (*Payload, error) {
	name := slug.FromURL(sourceURL)
	if name == "" {
		return nil, apperr.ValidationError("Source URL has no usable path segment",
			apperr.FieldError{Field: "comic_url", Message: "Must end in a comic path"})
	}

	data, err := os.ReadFile(filepath.Join(fetcher.dir, name+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound("Fixture " + name)
	}
	if err != nil {
		return nil, apperr.UpstreamFailure(sourceURL, err)
	}

	return ParsePayload(data)
}
