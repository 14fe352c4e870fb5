package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore records the last accepted heartbeat per session. Touch
// reports whether a heartbeat arriving at now is allowed, i.e. at least
// minInterval has passed since the previous accepted one, and records it
// when allowed.
type SessionStore interface {
	Touch(ctx context.Context, sessionID string, now time.Time, minInterval time.Duration) (bool, error)
	Close() error
}

// memoryEvictionThreshold bounds the in-memory store before stale entries
// are swept out during Touch.
const memoryEvictionThreshold = 10000

// MemoryStore keeps last-heartbeat times in a process-local map. Entries
// older than their own interval are evicted lazily once the map grows past
// a threshold, so the store cannot grow without bound.
type MemoryStore struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	maxAge   time.Duration
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store that forgets sessions idle longer than
// maxAge.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	return &MemoryStore{
		lastSeen: make(map[string]time.Time),
		maxAge:   maxAge,
	}
}

func (s *MemoryStore) Touch(_ context.Context, sessionID string, now time.Time, minInterval time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.lastSeen[sessionID]; ok && now.Sub(last) < minInterval {
		return false, nil
	}
	s.lastSeen[sessionID] = now

	if len(s.lastSeen) > memoryEvictionThreshold {
		s.evictLocked(now)
	}
	return true, nil
}

func (s *MemoryStore) evictLocked(now time.Time) {
	for id, seen := range s.lastSeen {
		if now.Sub(seen) > s.maxAge {
			delete(s.lastSeen, id)
		}
	}
}

// Len returns the number of tracked sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastSeen)
}

func (s *MemoryStore) Close() error { return nil }

// RedisStore coordinates heartbeat pacing across instances using SET NX
// with a TTL equal to the minimum interval: while the key lives, further
// heartbeats for the session are rejected.
type RedisStore struct {
	client *redis.Client
}

var _ SessionStore = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient wraps an existing client. Used in tests.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Touch(ctx context.Context, sessionID string, now time.Time, minInterval time.Duration) (bool, error) {
	key := "hb:" + sessionID
	ok, err := s.client.SetNX(ctx, key, now.UTC().Format(time.RFC3339), minInterval).Result()
	if err != nil {
		return false, fmt.Errorf("touching session %s: %w", sessionID, err)
	}
	return ok, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
