// Package ratelimit provides per-key request counters shared by the HTTP middleware.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Store decides whether one more request for key fits in the configured budget.
type Store interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryStore keeps one token bucket per key in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	limiters map[string]*memoryEntry
	every    rate.Limit
	burst    int
	idleTTL  time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryStore allows requests per interval for each key, with the full budget available as burst.
func NewMemoryStore(requests int, interval time.Duration) *MemoryStore {
	if requests <= 0 {
		requests = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	perRequest := interval / time.Duration(requests)
	if perRequest <= 0 {
		perRequest = time.Nanosecond
	}

	s := &MemoryStore{
		limiters: make(map[string]*memoryEntry),
		every:    rate.Every(perRequest),
		burst:    requests,
		idleTTL:  2 * interval,
		stopChan: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Allow consumes one token for key.
func (s *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.limiters[key]
	if !ok {
		entry = &memoryEntry{limiter: rate.NewLimiter(s.every, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1), nil
}

// Stop ends the background cleanup goroutine.
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupIdle(time.Now())
		case <-s.stopChan:
			return
		}
	}
}

func (s *MemoryStore) cleanupIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.idleTTL)
	for key, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, key)
		}
	}
}

// RedisStore counts requests in fixed windows so several API replicas share one budget.
type RedisStore struct {
	client   redis.Cmdable
	prefix   string
	requests int64
	window   time.Duration
}

// NewRedisStore builds a fixed-window counter under prefix.
func NewRedisStore(client redis.Cmdable, prefix string, requests int, window time.Duration) *RedisStore {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisStore{client: client, prefix: prefix, requests: int64(requests), window: window}
}

// fixedWindow bumps the counter and gives it a TTL whenever it has none, in one round trip.
// Repairing a missing TTL on every hit keeps a counter from outliving its window.
var fixedWindow = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Allow increments the counter for key and reports whether it is still within budget.
func (s *RedisStore) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := s.prefix + ":" + key

	count, err := fixedWindow.Run(ctx, s.client, []string{redisKey}, s.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("increment rate counter: %w", err)
	}
	return count <= s.requests, nil
}
