package domain

import (
	"fmt"
	"strings"
	"time"
)

// MetricsCollector はメトリクス収集のインターフェース
type MetricsCollector interface {
	RecordRequest()
	RecordCacheHit()
	RecordCacheMiss()
	RecordFetch()
	AddBytesFetched(bytes int64)
	RecordBlockedRequest()
	RecordError()
	Snapshot() *MetricsSnapshot
}

// MetricsSnapshot はメトリクスのスナップショットを表す
type MetricsSnapshot struct {
	Timestamp       time.Time `json:"timestamp"`
	StartTime       time.Time `json:"start_time"`
	TotalRequests   int64     `json:"total_requests"`
	CacheHits       int64     `json:"cache_hits"`
	CacheMisses     int64     `json:"cache_misses"`
	UpstreamFetches int64     `json:"upstream_fetches"`
	BytesFetched    int64     `json:"bytes_fetched"`
	BlockedRequests int64     `json:"blocked_requests"`
	Errors          int64     `json:"errors"`
	Uptime          string    `json:"uptime"`
}

// ToPrometheusFormat はメトリクスをPrometheus形式にフォーマット
func (ms *MetricsSnapshot) ToPrometheusFormat() string {
	var metrics []string

	metrics = append(metrics,
		fmt.Sprintf("# HELP pyroxy_total_requests Total number of processed requests\n"+
			"# TYPE pyroxy_total_requests counter\n"+
			"pyroxy_total_requests %d", ms.TotalRequests),

		fmt.Sprintf("# HELP pyroxy_cache_hits Total number of cache hits\n"+
			"# TYPE pyroxy_cache_hits counter\n"+
			"pyroxy_cache_hits %d", ms.CacheHits),

		fmt.Sprintf("# HELP pyroxy_cache_misses Total number of cache misses\n"+
			"# TYPE pyroxy_cache_misses counter\n"+
			"pyroxy_cache_misses %d", ms.CacheMisses),

		fmt.Sprintf("# HELP pyroxy_upstream_fetches Total number of upstream fetches\n"+
			"# TYPE pyroxy_upstream_fetches counter\n"+
			"pyroxy_upstream_fetches %d", ms.UpstreamFetches),

		fmt.Sprintf("# HELP pyroxy_bytes_fetched Total number of body bytes fetched upstream\n"+
			"# TYPE pyroxy_bytes_fetched counter\n"+
			"pyroxy_bytes_fetched %d", ms.BytesFetched),

		fmt.Sprintf("# HELP pyroxy_blocked_requests Total number of blocked requests\n"+
			"# TYPE pyroxy_blocked_requests counter\n"+
			"pyroxy_blocked_requests %d", ms.BlockedRequests),

		fmt.Sprintf("# HELP pyroxy_errors Total number of upstream errors\n"+
			"# TYPE pyroxy_errors counter\n"+
			"pyroxy_errors %d", ms.Errors),
	)

	return strings.Join(metrics, "\n\n") + "\n"
}
