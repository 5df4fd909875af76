package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"chyrp/internal/domain"
)

// Cache keys and lifetimes for read-mostly listings.
const (
	popularTagsKey       = "tags:popular"
	popularCategoriesKey = "categories:popular"
	categoryTreeKey      = "categories:tree"

	// popularCacheSize rows are cached; callers slice the prefix they asked for.
	popularCacheSize = 50

	popularTTL = 5 * time.Minute
	treeTTL    = time.Hour
)

// readThrough returns the cached value under key, or calls load and stores its result.
// Cache failures are logged and never fail the read.
func readThrough[T any](ctx context.Context, cache domain.Cache, logger *slog.Logger, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if cache == nil {
		return load()
	}
	if raw, err := cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	raw, err := json.Marshal(v)
	if err == nil {
		err = cache.Set(ctx, key, raw, ttl)
	}
	if err != nil {
		logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return v, nil
}

func invalidate(ctx context.Context, cache domain.Cache, logger *slog.Logger, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, keys...); err != nil {
		logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}
