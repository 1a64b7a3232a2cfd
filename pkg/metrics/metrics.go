// Package metrics documents the Prometheus metrics exposed by repolang.
// All metrics are defined in their respective packages (github, extract,
// upload, cache) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the pipeline.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/github):
//   - repolang_github_requests_total{endpoint, status} (Counter): API requests by endpoint and HTTP status
//   - repolang_github_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - repolang_github_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Fetch Metrics (pkg/extract):
//   - repolang_pages_fetched_total (Counter): Repository listing pages fetched
//   - repolang_rate_limit_waits_total (Counter): Waits caused by an exhausted quota
//   - repolang_fetch_results_total{status} (Counter): Fetch results by completeness (complete, partial, failed)
//
// Upload Metrics (pkg/upload):
//   - repolang_uploads_total{outcome} (Counter): File uploads by outcome (created, updated, failed)
//   - repolang_repo_create_total{status} (Counter): Repository creation attempts (created, already_exists, failed)
//
// Snapshot Cache Metrics (pkg/cache):
//   - repolang_cache_hits_total (Counter): Snapshot cache hits
//   - repolang_cache_misses_total (Counter): Snapshot cache misses
//   - repolang_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(repolang_cache_hits_total[5m]) /
//   (rate(repolang_cache_hits_total[5m]) + rate(repolang_cache_misses_total[5m]))
//
//   # Upload Failure Rate
//   rate(repolang_uploads_total{outcome="failed"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(repolang_github_request_duration_seconds_bucket[5m]))
