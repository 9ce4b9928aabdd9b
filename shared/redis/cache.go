package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// DefaultTTL is how long cached list and detail views live when the service
// does not configure its own.
const DefaultTTL = 15 * 24 * time.Hour

const productionSuffix = ".prod"

// ComputeKey qualifies key for env so that production and non-production
// deployments sharing a Redis never read each other's entries.
func ComputeKey(env, key string) string {
	if env == "production" {
		return key + productionSuffix
	}
	return key
}

// DetailKey builds the per-entity key under a base key, e.g. xpch.bank.<id>.
func DetailKey(base, id string) string {
	return base + "." + id
}

// Keyspace deletes environment-qualified keys regardless of the value type
// stored under them.
type Keyspace struct {
	client goredis.Cmdable
	env    string
}

func NewKeyspace(client goredis.Cmdable, env string) *Keyspace {
	return &Keyspace{client: client, env: env}
}

// Delete removes keys. Failures are logged; a stale entry expires with its TTL.
func (k *Keyspace) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	qualified := make([]string, len(keys))
	for i, key := range keys {
		qualified[i] = ComputeKey(k.env, key)
	}
	if err := k.client.Del(ctx, qualified...).Err(); err != nil {
		log.WithError(err).WithField("keys", qualified).Error("cache delete failed")
	}
}

// ViewCache is a generic JSON-backed Redis cache for read projections.
// Keys passed to it are unqualified; the environment suffix is applied here.
type ViewCache[T any] struct {
	client goredis.Cmdable
	env    string
	ttl    time.Duration
}

// NewViewCache creates a ViewCache. A ttl of zero means DefaultTTL.
func NewViewCache[T any](client goredis.Cmdable, env string, ttl time.Duration) *ViewCache[T] {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &ViewCache[T]{client: client, env: env, ttl: ttl}
}

// Get returns (nil, false) on any miss or deserialisation error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, ComputeKey(c.env, key)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			log.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache entry is corrupt")
		return nil, false
	}
	return &v, true
}

// Set stores value under key with the cache TTL. Errors are logged rather
// than returned since a failed cache write only costs a later miss.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		log.WithError(err).WithField("key", key).Error("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, ComputeKey(c.env, key), data, c.ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Error("cache write failed")
	}
}

func (c *ViewCache[T]) Delete(ctx context.Context, keys ...string) {
	NewKeyspace(c.client, c.env).Delete(ctx, keys...)
}

// GetOrLoad serves key from the cache, falling back to load on a miss and
// caching what it returns. Load errors are returned and nothing is cached.
func (c *ViewCache[T]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (*T, error)) (*T, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.Set(ctx, key, v)
	return v, nil
}
