package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AuthCacheHits         uint64
	AuthCacheMisses       uint64
	TokensIssued          uint64
	RecipesCreated        uint64
	RecipesUpdated        uint64
	RecipesDeleted        uint64
	ImageUploadCount      uint64
	ImageUploadTotalNanos int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	authCacheHits         uint64
	authCacheMisses       uint64
	tokensIssued          uint64
	recipesCreated        uint64
	recipesUpdated        uint64
	recipesDeleted        uint64
	imageUploadCount      uint64
	imageUploadTotalNanos int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		AuthCacheHits:         atomic.LoadUint64(&m.authCacheHits),
		AuthCacheMisses:       atomic.LoadUint64(&m.authCacheMisses),
		TokensIssued:          atomic.LoadUint64(&m.tokensIssued),
		RecipesCreated:        atomic.LoadUint64(&m.recipesCreated),
		RecipesUpdated:        atomic.LoadUint64(&m.recipesUpdated),
		RecipesDeleted:        atomic.LoadUint64(&m.recipesDeleted),
		ImageUploadCount:      atomic.LoadUint64(&m.imageUploadCount),
		ImageUploadTotalNanos: atomic.LoadInt64(&m.imageUploadTotalNanos),
	}
}

func (m *InMemoryRecorder) IncAuthCacheHit()  { atomic.AddUint64(&m.authCacheHits, 1) }
func (m *InMemoryRecorder) IncAuthCacheMiss() { atomic.AddUint64(&m.authCacheMisses, 1) }
func (m *InMemoryRecorder) IncTokenIssued()   { atomic.AddUint64(&m.tokensIssued, 1) }
func (m *InMemoryRecorder) IncRecipeCreated() { atomic.AddUint64(&m.recipesCreated, 1) }
func (m *InMemoryRecorder) IncRecipeUpdated() { atomic.AddUint64(&m.recipesUpdated, 1) }
func (m *InMemoryRecorder) IncRecipeDeleted() { atomic.AddUint64(&m.recipesDeleted, 1) }

func (m *InMemoryRecorder) ObserveImageUpload(duration time.Duration) {
	atomic.AddUint64(&m.imageUploadCount, 1)
	atomic.AddInt64(&m.imageUploadTotalNanos, duration.Nanoseconds())
}
