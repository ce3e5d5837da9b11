package metrics

import (
	"sync/atomic"
	"time"

	"pyroxy/internal/domain"
)

// Repository はメトリクスのリポジトリ実装
type Repository struct {
	metricsFile string
	startTime   time.Time
	requests    int64
	cacheHits   int64
	cacheMisses int64
	fetches     int64
	bytes       int64
	blocked     int64
	errors      int64
}

// インターフェースの実装を検証
var _ domain.MetricsCollector = (*Repository)(nil)

// New は新しいRepositoryインスタンスを作成
func New(metricsFile string) *Repository {
	return &Repository{
		metricsFile: metricsFile,
		startTime:   time.Now(),
	}
}

// 以下、MetricsCollector インターフェースの実装
func (r *Repository) RecordRequest() {
	atomic.AddInt64(&r.requests, 1)
}

func (r *Repository) RecordCacheHit() {
	atomic.AddInt64(&r.cacheHits, 1)
}

func (r *Repository) RecordCacheMiss() {
	atomic.AddInt64(&r.cacheMisses, 1)
}

func (r *Repository) RecordFetch() {
	atomic.AddInt64(&r.fetches, 1)
}

func (r *Repository) AddBytesFetched(bytes int64) {
	atomic.AddInt64(&r.bytes, bytes)
}

func (r *Repository) RecordBlockedRequest() {
	atomic.AddInt64(&r.blocked, 1)
}

func (r *Repository) RecordError() {
	atomic.AddInt64(&r.errors, 1)
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (r *Repository) Snapshot() *domain.MetricsSnapshot {
	return &domain.MetricsSnapshot{
		Timestamp:       time.Now(),
		StartTime:       r.startTime,
		TotalRequests:   atomic.LoadInt64(&r.requests),
		CacheHits:       atomic.LoadInt64(&r.cacheHits),
		CacheMisses:     atomic.LoadInt64(&r.cacheMisses),
		UpstreamFetches: atomic.LoadInt64(&r.fetches),
		BytesFetched:    atomic.LoadInt64(&r.bytes),
		BlockedRequests: atomic.LoadInt64(&r.blocked),
		Errors:          atomic.LoadInt64(&r.errors),
		Uptime:          time.Since(r.startTime).String(),
	}
}
