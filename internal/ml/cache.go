package ml

import (
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/daytrade-predictor/internal/models"
)

// MetadataCache keeps parsed model metadata in memory, keyed by symbol
type MetadataCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewMetadataCache creates a new metadata cache
func NewMetadataCache(ttl time.Duration) *MetadataCache {
	return &MetadataCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func cacheKey(symbol string) string {
	return strings.ToUpper(symbol)
}

// Get retrieves cached metadata, or nil on a miss
func (mc *MetadataCache) Get(symbol string) *models.ModelMetadata {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if value, found := mc.cache.Get(cacheKey(symbol)); found {
		if meta, ok := value.(*models.ModelMetadata); ok {
			mc.hitCount++
			mc.updateMetrics()
			return meta
		}
	}

	mc.missCount++
	mc.updateMetrics()
	return nil
}

// Set stores metadata for a symbol
func (mc *MetadataCache) Set(symbol string, meta *models.ModelMetadata) {
	mc.cache.Set(cacheKey(symbol), meta, mc.ttl)
}

// Invalidate drops the entry of one symbol, e.g. after retraining
func (mc *MetadataCache) Invalidate(symbol string) {
	mc.cache.Delete(cacheKey(symbol))
}

// Clear flushes the entire cache
func (mc *MetadataCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache.Flush()
	mc.hitCount = 0
	mc.missCount = 0
}

// Stats returns cache statistics
func (mc *MetadataCache) Stats() (hits, misses uint64, ratio float64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.stats()
}

func (mc *MetadataCache) stats() (hits, misses uint64, ratio float64) {
	hits = mc.hitCount
	misses = mc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// updateMetrics expects mc.mu to be held
func (mc *MetadataCache) updateMetrics() {
	_, _, ratio := mc.stats()
	MetadataCacheHitRatio.Set(ratio)
}

// ItemCount returns the number of items in cache
func (mc *MetadataCache) ItemCount() int {
	return mc.cache.ItemCount()
}
