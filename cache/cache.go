package cache

import (
	"time"

	"github.com/avinab11/velagio-qr-studio/config"
	"github.com/avinab11/velagio-qr-studio/model"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

// Cache keeps recently resolved code records in process memory so the
// resolve hot path can skip Redis. Management writes invalidate the entry;
// the short TTL bounds staleness for writes from other instances.
type Cache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

// New creates a new cache instance with the given configuration
func New(cfg config.CacheConfig) (*Cache, error) {
	maxCost := int64(cfg.MaxSizeMB) * 1024 * 1024

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(cfg.CounterSize), // keys tracked for admission frequency
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("max_size_mb", cfg.MaxSizeMB).
		Int("ttl_seconds", cfg.TTLSeconds).
		Msg("Code cache initialized")

	return &Cache{
		client: client,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

// GetCode returns a cached code record if present
func (c *Cache) GetCode(id string) (model.DynamicCode, bool) {
	if c == nil || c.client == nil {
		return model.DynamicCode{}, false
	}
	value, found := c.client.Get(id)
	if !found {
		return model.DynamicCode{}, false
	}
	code, ok := value.(model.DynamicCode)
	return code, ok
}

// SetCode stores a code record with the configured TTL
func (c *Cache) SetCode(code model.DynamicCode) {
	if c == nil || c.client == nil {
		return
	}
	cost := int64(len(code.ID) + len(code.TargetURL) + len(code.EditToken) + 64)
	c.client.SetWithTTL(code.ID, code, cost, c.ttl)
}

// Delete removes a code record from the cache
func (c *Cache) Delete(id string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(id)
}

// Close cleanly shuts down the cache
func (c *Cache) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
		log.Info().Msg("Cache closed")
	}
}

// MetricsSnapshot is a point-in-time view of cache performance
type MetricsSnapshot struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	KeysAdded   uint64  `json:"keys_added"`
	KeysEvicted uint64  `json:"keys_evicted"`
	HitRatio    float64 `json:"hit_ratio"`
	TTLSeconds  int     `json:"ttl_seconds"`
}

// GetMetricsSnapshot returns current cache metrics
func (c *Cache) GetMetricsSnapshot() MetricsSnapshot {
	if c == nil || c.client == nil || c.client.Metrics == nil {
		return MetricsSnapshot{}
	}

	m := c.client.Metrics
	hits := m.Hits()
	misses := m.Misses()
	total := hits + misses

	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return MetricsSnapshot{
		Hits:        hits,
		Misses:      misses,
		KeysAdded:   m.KeysAdded(),
		KeysEvicted: m.KeysEvicted(),
		HitRatio:    hitRatio,
		TTLSeconds:  int(c.ttl.Seconds()),
	}
}
