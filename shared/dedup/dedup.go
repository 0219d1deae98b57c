// Package dedup provides the event-ID idempotency ledger.
//
// The bus delivers at least once with no deduplication of its own; replaying
// a counter transition such as reserve would double-decrement. Routers mark
// event IDs here before dispatch, drop IDs already marked, and forget the
// mark when dispatch fails so the bus redelivery is processed. Callers scope
// keys per consumer: one event fans out to several queues, and each consumer
// gets its own copy exactly once.
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Store records event IDs and answers whether one was seen before. Marking
// and checking are a single atomic step; Forget withdraws a mark so the next
// delivery of the same key is treated as new.
type Store interface {
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

// RedisStore implements Store with SETNX and a TTL, so the ledger does not
// grow without bound. Safe to share across processes of the same service.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Seen marks the key and reports whether it was already present.
func (s *RedisStore) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, "dedup:"+key, "1", s.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "dedup setnx failed")
	}
	return !ok, nil
}

// Forget removes the key so a redelivery is processed.
func (s *RedisStore) Forget(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, "dedup:"+key).Err(); err != nil {
		return errors.Wrap(err, "dedup del failed")
	}
	return nil
}

// MemoryStore implements Store in process memory. Single-process use only.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryStore creates a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

// Seen marks the key and reports whether it was already present.
func (s *MemoryStore) Seen(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return true, nil
	}
	s.seen[key] = struct{}{}
	return false, nil
}

// Forget removes the key so a redelivery is processed.
func (s *MemoryStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, key)
	return nil
}
