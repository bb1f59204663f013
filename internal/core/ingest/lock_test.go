// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvoice/internal/core/ingest"
	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/redis"
)

// exerciseLocker runs the shared contract against any [ingest.Locker].
func exerciseLocker(t *testing.T, locker ingest.Locker, key string) {
	t.Helper()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	// Independent keys do not contend
	releaseOther, err := locker.Acquire(ctx, key+"/other")
	require.NoError(t, err)
	releaseOther()

	release()
	release()

	again, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	again()
}

/*
TestMemoryLocker verifies exclusive acquisition and idempotent release.
*/
func TestMemoryLocker(t *testing.T) {
	exerciseLocker(t, ingest.NewMemoryLocker(), testComicURL)
}

/*
TestRedisLocker runs the same contract against TEST_REDIS_URL when it is set.
*/
func TestRedisLocker(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	client, err := redis.NewClient(context.Background(), redisURL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	key := "https://komiku.org/manga/lock-test-" + time.Now().Format("150405.000000")
	exerciseLocker(t, ingest.NewRedisLocker(client, time.Minute), key)
}
