package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spigell/jobfit/internal/matching"
	"github.com/spigell/jobfit/internal/resume"
	"go.uber.org/zap"
)

const (
	// DefaultCacheTTL applies when Cached is created with a non-positive TTL.
	DefaultCacheTTL = 10 * time.Minute

	keyPrefix = "jobfit:"
)

// RedisOptions configures NewRedisClient.
type RedisOptions struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NewRedisClient connects to Redis. A failed ping returns nil and the error, so callers
// can run without a cache.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Cached is a read-through Redis cache in front of another Store. Writes go to the
// backing store first and then refresh the cache. Redis failures never fail a call:
// the cache is bypassed and a warning is logged once.
type Cached struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	warned atomic.Bool
}

// NewCached wraps next. A nil client disables caching.
func NewCached(next Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{next: next, client: client, ttl: ttl, logger: logger}
}

func resumeKey(id string) string  { return keyPrefix + "resume:" + id }
func matchesKey(id string) string { return keyPrefix + "matches:" + id }

func (c *Cached) SaveResume(ctx context.Context, r *resume.Resume) error {
	if err := c.next.SaveResume(ctx, r); err != nil {
		return err
	}
	c.set(ctx, resumeKey(r.ID), r)
	return nil
}

func (c *Cached) GetResume(ctx context.Context, id string) (*resume.Resume, error) {
	var r resume.Resume
	if c.get(ctx, resumeKey(id), &r) {
		return &r, nil
	}

	got, err := c.next.GetResume(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, resumeKey(id), got)
	return got, nil
}

func (c *Cached) SaveMatches(ctx context.Context, resumeID string, matches []matching.JobMatch) error {
	if err := c.next.SaveMatches(ctx, resumeID, matches); err != nil {
		return err
	}
	c.set(ctx, matchesKey(resumeID), matches)
	return nil
}

func (c *Cached) GetMatches(ctx context.Context, resumeID string) ([]matching.JobMatch, error) {
	var matches []matching.JobMatch
	if c.get(ctx, matchesKey(resumeID), &matches) {
		return matches, nil
	}

	got, err := c.next.GetMatches(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, matchesKey(resumeID), got)
	return got, nil
}

func (c *Cached) get(ctx context.Context, key string, out any) bool {
	if c.client == nil {
		return false
	}

	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warnOnce(err)
		}
		return false
	}

	if err := json.Unmarshal(b, out); err != nil {
		c.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cached) set(ctx context.Context, key string, value any) {
	if c.client == nil {
		return
	}

	b, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("encoding cache entry failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.warnOnce(err)
	}
}

func (c *Cached) warnOnce(err error) {
	if c.warned.CompareAndSwap(false, true) {
		c.logger.Warn("redis unavailable, bypassing cache", zap.Error(err))
	}
}
