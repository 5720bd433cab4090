package setting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alberthlima/saas-legal/internal/logger"
)

const (
	cacheKey = "settings:v1"
	cacheTTL = 5 * time.Minute
)

// Repository is what the handlers depend on; both the SQL repository
// and its cached wrapper satisfy it.
type Repository interface {
	Get(ctx context.Context) (*Setting, error)
	Update(ctx context.Context, p Params) (*Setting, error)
	UpdateQR(ctx context.Context, path string) (*Setting, error)
}

// CachedRepository keeps the settings row in Redis. The bot fetches
// settings on nearly every payment conversation, so reads are served
// from cache and writes invalidate it. Redis being down degrades to
// plain database reads.
type CachedRepository struct {
	inner Repository
	rdb   redis.Cmdable
}

func NewCachedRepository(inner Repository, rdb redis.Cmdable) *CachedRepository {
	return &CachedRepository{inner: inner, rdb: rdb}
}

func (c *CachedRepository) Get(ctx context.Context) (*Setting, error) {
	raw, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if err == nil {
		s := &Setting{}
		if err := json.Unmarshal(raw, s); err == nil {
			return s, nil
		}
		logger.Error("corrupt settings cache entry, falling back to db", "key", cacheKey)
	} else if !errors.Is(err, redis.Nil) {
		logger.Error("settings cache read failed", "err", err)
	}

	s, err := c.inner.Get(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(s); err == nil {
		if err := c.rdb.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
			logger.Error("settings cache write failed", "err", err)
		}
	}
	return s, nil
}

func (c *CachedRepository) Update(ctx context.Context, p Params) (*Setting, error) {
	s, err := c.inner.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return s, nil
}

func (c *CachedRepository) UpdateQR(ctx context.Context, path string) (*Setting, error) {
	s, err := c.inner.UpdateQR(ctx, path)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return s, nil
}

func (c *CachedRepository) invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, cacheKey).Err(); err != nil {
		logger.Error("settings cache invalidation failed", "err", err)
	}
}
