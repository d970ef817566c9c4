package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// LookupCache keeps stored warranty records for the public lookup endpoint.
// The effective status is always recomputed by the caller, so a cached record
// never goes stale by the passage of time, only by a write. A nil
// *LookupCache is a valid, disabled cache.
type LookupCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewLookupCache returns a cache on top of redis, or nil when redis is nil.
func NewLookupCache(r *RedisClient, ttl time.Duration) *LookupCache {
	if r == nil {
		return nil
	}
	return &LookupCache{redis: r, ttl: ttl}
}

// warrantyKey normalises a lookup key. Numbers are case-insensitive.
func warrantyKey(key string) string {
	return "warranty:" + strings.ToUpper(strings.TrimSpace(key))
}

// GetWarranty returns the cached record for key. Cache failures are logged
// and reported as a miss.
func (c *LookupCache) GetWarranty(ctx context.Context, key string) (*models.Warranty, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.redis.Get(ctx, warrantyKey(key))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("Lookup cache read failed")
		}
		return nil, false
	}
	var w models.Warranty
	if err := json.Unmarshal(raw, &w); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Lookup cache entry corrupt")
		return nil, false
	}
	return &w, true
}

// PutWarranty caches w under each of keys.
func (c *LookupCache) PutWarranty(ctx context.Context, w *models.Warranty, keys ...string) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return
	}
	for _, k := range keys {
		if err := c.redis.Set(ctx, warrantyKey(k), raw, c.ttl); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("Lookup cache write failed")
			return
		}
	}
}

// InvalidateWarranty drops every key a warranty can be found by.
func (c *LookupCache) InvalidateWarranty(ctx context.Context, w *models.Warranty) {
	if c == nil {
		return
	}
	keys := []string{warrantyKey(w.WarrantyNumber), warrantyKey(w.LookupToken)}
	if w.IMEI != nil {
		keys = append(keys, warrantyKey(*w.IMEI))
	}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Str("warranty", w.WarrantyNumber).Msg("Lookup cache invalidation failed")
	}
}
