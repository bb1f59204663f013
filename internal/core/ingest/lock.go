// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/constants"
	"github.com/taibuivan/comicvoice/pkg/uuid"
)

// Locker serialises ingestion per source URL.
//
// Acquire fails with CONFLICT when another holder owns the key. The returned
// release function is safe to call once the work is done, even after the
// context is cancelled.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// errLocked is the failure reported for a held lock.
func errLocked(key string) error {
	return apperr.Conflict(fmt.Sprintf("ingestion already in progress for %s", key))
}

// # Redis Lock

// releaseScript deletes the key only while it still carries our token, so an
// expired holder never frees a lock that has since moved to someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a TTL-guarded mutex shared by every replica and CLI run.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker builds a lock whose keys expire after ttl.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire implements [Locker] with SET NX PX.
func (locker *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := constants.RedisPrefixIngestLock + key
	token := uuid.New()

	acquired, err := locker.client.SetNX(ctx, redisKey, token, locker.ttl).Result()
	if err != nil {
		return nil, apperr.StorageFailure("acquire ingestion lock", err)
	}
	if !acquired {
		return nil, errLocked(key)
	}

	release := func() {
		// Detached so a cancelled request still frees its lock.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, locker.client, []string{redisKey}, token).Err()
	}
	return release, nil
}

// # In-Process Lock

// MemoryLocker is a process-local [Locker] for single-instance deployments and tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewMemoryLocker returns an empty lock table.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]bool)}
}

// Acquire implements [Locker].
func (locker *MemoryLocker) Acquire(_ context.Context, key string) (func(), error) {
	locker.mu.Lock()
	defer locker.mu.Unlock()

	if locker.held[key] {
		return nil, errLocked(key)
	}
	locker.held[key] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			locker.mu.Lock()
			delete(locker.held, key)
			locker.mu.Unlock()
		})
	}, nil
}
