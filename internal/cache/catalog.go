// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed cache for the public catalog
// projections (the category tree and per-slug category pages). The public
// endpoints serve the cached JSON directly; every admin mutation to the
// hierarchy invalidates the whole catalog, since any change can ripple
// into the derived counts.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// catalogKeyPrefix namespaces catalog keys in Valkey.
	catalogKeyPrefix = "catalog:"

	// DefaultCatalogTTL is how long a catalog projection stays cached.
	DefaultCatalogTTL = 5 * time.Minute
)

// Catalog manages cached public catalog JSON in Valkey.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalog creates a catalog cache backed by the given Valkey client.
func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	return &Catalog{client: client, ttl: ttl}
}

// Get retrieves cached JSON for a catalog key. Returns false on miss.
func (c *Catalog) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("catalog cache hit", "key", key)
	return val, true
}

// Set stores catalog JSON under a key with the configured TTL.
func (c *Catalog) Set(ctx context.Context, key string, payload []byte) {
	if err := c.client.Set(ctx, catalogKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "key", key, "error", err)
	}
}

// Invalidate removes all cached catalog projections by scanning for the
// prefix. Called after every category, subcategory, or article mutation.
func (c *Catalog) Invalidate(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, catalogKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("catalog cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("catalog cache delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("catalog cache invalidated", "deleted", deleted)
	}
}

// TreeKey returns the cache key for the full category tree.
func TreeKey() string {
	return "_tree"
}

// CategoryKey returns the cache key for a single category page by slug.
func CategoryKey(slug string) string {
	return "category:" + slug
}
