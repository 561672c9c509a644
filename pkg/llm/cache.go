package llm

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/domain"
)

// CachedClient layers a two-tier completion cache over a Completer: an in-process
// LRU for hot prompts, then Redis for cross-process reuse. Identical prompts occur
// whenever a report is regenerated from an unchanged assessment record.
type CachedClient struct {
	inner      Completer
	memory     *lru.Cache[string, string]
	redis      *redis.Client
	defaultTTL time.Duration
	logger     *logrus.Logger
}

// cachedCompletion is the Redis cache envelope.
type cachedCompletion struct {
	Text      string    `json:"text"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewCachedClient creates the caching wrapper. A Redis client is optional: when
// config.RedisURL is empty only the memory tier is used.
func NewCachedClient(inner Completer, config domain.CacheConfig, logger *logrus.Logger) (*CachedClient, error) {
	entries := config.MemoryEntries
	if entries <= 0 {
		entries = 256
	}
	memory, err := lru.New[string, string](entries)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	client := &CachedClient{
		inner:      inner,
		memory:     memory,
		defaultTTL: config.DefaultTTL,
		logger:     logger,
	}

	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts.PoolSize = config.PoolSize
		opts.PoolTimeout = config.PoolTimeout
		opts.MaxRetries = config.MaxRetries

		rdb := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		client.redis = rdb
	}

	return client, nil
}

// Complete returns a cached completion when one exists, otherwise calls through
// and populates both tiers. Cache errors degrade to a live call, never fail it.
func (c *CachedClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	key := cacheKey(req)

	if text, ok := c.memory.Get(key); ok {
		c.logger.WithField("tier", "memory").Debug("Completion cache hit")
		return &CompletionResult{Text: text}, nil
	}

	if text, ok := c.redisGet(ctx, key); ok {
		c.memory.Add(key, text)
		c.logger.WithField("tier", "redis").Debug("Completion cache hit")
		return &CompletionResult{Text: text}, nil
	}

	result, err := c.inner.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	c.memory.Add(key, result.Text)
	c.redisSet(ctx, key, result.Text)

	return result, nil
}

func (c *CachedClient) redisGet(ctx context.Context, key string) (string, bool) {
	if c.redis == nil {
		return "", false
	}

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.logger.WithError(err).Warn("Redis cache read failed")
		return "", false
	}

	var cached cachedCompletion
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		c.redis.Del(ctx, key)
		return "", false
	}
	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return "", false
	}

	return cached.Text, true
}

func (c *CachedClient) redisSet(ctx context.Context, key, text string) {
	if c.redis == nil {
		return
	}

	ttl := c.defaultTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	data, err := json.Marshal(cachedCompletion{
		Text:      text,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	})
	if err != nil {
		return
	}

	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("Redis cache write failed")
	}
}

// cacheKey hashes the prompt and token budget so long prompts stay off the
// Redis keyspace.
func cacheKey(req CompletionRequest) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d:%s", req.MaxTokens, req.Prompt))
	return fmt.Sprintf("llm:completion:%x", sum)
}
