// Package cache wraps agent.Cache (LRU+TTL+Stats already) into a two-tier
// volatile/stable cache keyed by a query's classified intent.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/nvlabs/deepwatch/agent"
)

// Default TTLs: volatile results (news, fast-moving queries) expire in an
// hour; stable results (reference, academic) last a day.
const (
	DefaultVolatileTTL = 1 * time.Hour
	DefaultStableTTL   = 24 * time.Hour
)

// TieredCache routes Get/Set between two backing agent.Cache instances by a
// caller-supplied "stable" flag (normally queryopt.Classify's verdict).
type TieredCache struct {
	volatile   agent.Cache
	stable     agent.Cache
	volatileTTL time.Duration
	stableTTL   time.Duration
}

// New builds a TieredCache over two independently-backed caches. Passing the
// same backing implementation for both (e.g. two *agent.MemoryCache, or a
// shared Redis-backed cache with distinct key prefixes) is valid.
func New(volatile, stable agent.Cache) *TieredCache {
	return &TieredCache{
		volatile:    volatile,
		stable:      stable,
		volatileTTL: DefaultVolatileTTL,
		stableTTL:   DefaultStableTTL,
	}
}

// NewInMemory builds a TieredCache backed by two agent.MemoryCache instances,
// the default for a single-process orchestrator.
func NewInMemory(maxSize int) *TieredCache {
	return New(
		agent.NewMemoryCache(maxSize, DefaultVolatileTTL),
		agent.NewMemoryCache(maxSize, DefaultStableTTL),
	)
}

// NewRedis builds a TieredCache backed by a shared agent.RedisCache
// (agent/cache_redis.go), for deployments that want cache state shared
// across orchestrator processes. Volatile and stable entries share the
// connection but are namespaced by distinct key prefixes so a TTL-agnostic
// eviction sweep can't mix them up.
func NewRedis(addr, password string, db int) (*TieredCache, error) {
	volatile, err := agent.NewRedisCacheWithOptions(&agent.RedisCacheOptions{
		Addrs:      []string{addr},
		Password:   password,
		DB:         db,
		KeyPrefix:  "orchestrator:volatile",
		DefaultTTL: DefaultVolatileTTL,
	})
	if err != nil {
		return nil, err
	}
	stable, err := agent.NewRedisCacheWithOptions(&agent.RedisCacheOptions{
		Addrs:      []string{addr},
		Password:   password,
		DB:         db,
		KeyPrefix:  "orchestrator:stable",
		DefaultTTL: DefaultStableTTL,
	})
	if err != nil {
		return nil, err
	}
	return New(volatile, stable), nil
}

// Key builds the cache key for a normalized query and result-count cap. The
// count is always folded in: a cache entry for max_results=5 must never be
// served to a caller asking for max_results=20.
func Key(normalizedQuery string, maxResults int) string {
	return normalizedQuery + "|" + strconv.Itoa(maxResults)
}

// Get looks up key in the tier selected by stable.
func (c *TieredCache) Get(ctx context.Context, key string, stable bool) (string, bool, error) {
	return c.tier(stable).Get(ctx, key)
}

// Set stores value under key in the tier selected by stable, using that
// tier's default TTL.
func (c *TieredCache) Set(ctx context.Context, key string, value string, stable bool) error {
	ttl := c.volatileTTL
	if stable {
		ttl = c.stableTTL
	}
	return c.tier(stable).Set(ctx, key, value, ttl)
}

func (c *TieredCache) tier(stable bool) agent.Cache {
	if stable {
		return c.stable
	}
	return c.volatile
}

// Stats returns each tier's stats separately, volatile first.
func (c *TieredCache) Stats() (volatile, stable agent.CacheStats) {
	return c.volatile.Stats(), c.stable.Stats()
}
