// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../../internal/core/ingest/testdata"

// decodeOutcomes parses the JSON lines written to stdout.
func decodeOutcomes(t *testing.T, stdout *bytes.Buffer) []outcome {
	t.Helper()

	var outcomes []outcome
	decoder := json.NewDecoder(stdout)
	for decoder.More() {
		var line outcome
		require.NoError(t, decoder.Decode(&line))
		outcomes = append(outcomes, line)
	}
	return outcomes
}

/*
TestRun_Fixtures ingests two fixtures and one missing source in memory.
*/
func TestRun_Fixtures(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{
		"--memory", "--fixtures", fixtureDir, "-c", "2",
		"https://komiku.org/manga/test-comic/",
		"https://komiku.org/manga/one-piece/",
		"https://komiku.org/manga/unknown/",
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)

	outcomes := decodeOutcomes(t, &stdout)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "test-comic", outcomes[0].Slug)
	assert.Equal(t, 2, outcomes[0].Chapters)
	assert.Equal(t, "one-piece", outcomes[1].Slug)
	assert.Equal(t, "NOT_FOUND", outcomes[2].Code)
	assert.Contains(t, stderr.String(), "ingest_run_finished")
}

/*
TestRun_Payload reconciles a payload file directly.
*/
func TestRun_Payload(t *testing.T) {
	var stdout, stderr bytes.Buffer

	// The fixture carries no source_url, so validation rejects it
	code := run(context.Background(), []string{"--memory", "--payload", fixtureDir + "/test-comic.json"}, &stdout, &stderr)
	assert.Equal(t, 1, code)

	outcomes := decodeOutcomes(t, &stdout)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "VALIDATION_ERROR", outcomes[0].Code)

	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"title": "Local Comic",
		"source_url": "https://komiku.org/manga/local-comic/",
		"chapters": [{"chapter_number": 1, "pages": [{"page_number": 1, "image_url": "a.jpg"}]}],
	}`), 0o600))

	stdout.Reset()
	code = run(context.Background(), []string{"--memory", "--payload", path}, &stdout, &stderr)
	assert.Equal(t, 0, code)

	outcomes = decodeOutcomes(t, &stdout)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "local-comic", outcomes[0].Slug)
	assert.Equal(t, "https://komiku.org/manga/local-comic/", outcomes[0].SourceURL)
}

/*
TestParseFlags rejects inconsistent invocations.
*/
func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no_sources", []string{"--memory"}, "at least one source URL"},
		{"both_sources", []string{"--fixtures", "x", "--scraper", "http://s", "https://a/b"}, "mutually exclusive"},
		{"payload_with_urls", []string{"--payload", "p.json", "https://a/b"}, "does not take"},
		{"zero_concurrency", []string{"-c", "0", "https://a/b"}, "at least 1"},
		{"unknown_flag", []string{"--nope"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, &strings.Builder{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	opts, err := parseFlags([]string{"--memory", "https://a/b", "https://c/d"}, &strings.Builder{})
	require.NoError(t, err)
	assert.True(t, opts.memory)
	assert.Equal(t, []string{"https://a/b", "https://c/d"}, opts.urls)
	assert.Equal(t, 4, opts.concurrency)
}
