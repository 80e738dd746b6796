package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fardaevm/diversify/internal/models"
)

// Stats tracks cache performance counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.Mutex
}

func (s *Stats) hit()  { s.mu.Lock(); s.Hits++; s.mu.Unlock() }
func (s *Stats) miss() { s.mu.Lock(); s.Misses++; s.mu.Unlock() }
func (s *Stats) set()  { s.mu.Lock(); s.Sets++; s.mu.Unlock() }

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() (hits, misses, sets int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Hits, s.Misses, s.Sets
}

// ResponseCache caches assembled similarity payloads in Redis, keyed
// by (ticker, algorithm, limit). The correlation matrices themselves
// are never cached here: they are process-local compute-once
// artifacts. A nil *ResponseCache is a no-op, so callers need no
// enabled check.
type ResponseCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *Stats
	prefix string
	logger *logrus.Logger
}

// NewResponseCache creates a Redis-backed payload cache.
func NewResponseCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *ResponseCache {
	return &ResponseCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &Stats{},
		prefix: "diversify:response:",
		logger: logger,
	}
}

// SimilarityKey builds the cache key for a similarity query.
func SimilarityKey(ticker, algo string, n int) string {
	return fmt.Sprintf("similar:%s:%s:%d", ticker, algo, n)
}

// GroupedKey builds the cache key for a grouped query.
func GroupedKey(ticker, algo string, n int) string {
	return fmt.Sprintf("groups:%s:%s:%d", ticker, algo, n)
}

// GetSimilarity retrieves a cached similarity payload.
func (c *ResponseCache) GetSimilarity(ctx context.Context, key string) (*models.SimilarityResponse, bool) {
	var out models.SimilarityResponse
	if !c.get(ctx, key, &out) {
		return nil, false
	}
	return &out, true
}

// SetSimilarity stores a similarity payload.
func (c *ResponseCache) SetSimilarity(ctx context.Context, key string, resp *models.SimilarityResponse) {
	c.set(ctx, key, resp)
}

// GetGrouped retrieves a cached grouped payload.
func (c *ResponseCache) GetGrouped(ctx context.Context, key string) ([]models.GroupResponse, bool) {
	var out []models.GroupResponse
	if !c.get(ctx, key, &out) {
		return nil, false
	}
	return out, true
}

// SetGrouped stores a grouped payload.
func (c *ResponseCache) SetGrouped(ctx context.Context, key string, resp []models.GroupResponse) {
	c.set(ctx, key, resp)
}

// Stats returns the cache's counters.
func (c *ResponseCache) Stats() *Stats {
	if c == nil {
		return &Stats{}
	}
	return c.stats
}

func (c *ResponseCache) get(ctx context.Context, key string, out interface{}) bool {
	if c == nil || c.redis == nil {
		return false
	}

	data, err := c.redis.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		c.stats.miss()
		return false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("response cache read failed")
		c.stats.miss()
		return false
	}

	if err := json.Unmarshal([]byte(data), out); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("response cache entry corrupt")
		c.stats.miss()
		return false
	}

	c.stats.hit()
	return true
}

func (c *ResponseCache) set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.redis == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("response cache marshal failed")
		return
	}

	if err := c.redis.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("response cache write failed")
		return
	}
	c.stats.set()
}
