// Package metrics exposes the Prometheus registry and HTTP handler for
// dexview. Metrics are declared with promauto next to the code that records
// them (pkg/catalog, pkg/rangefetch, internal/server).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all promauto metrics end up in.
var Registry = prometheus.DefaultRegisterer

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Available metrics
//
// Catalog client (pkg/catalog):
//   - dexview_catalog_requests_total{endpoint, status} (Counter)
//   - dexview_catalog_request_duration_seconds{endpoint} (Histogram)
//   - dexview_catalog_errors_total{class} (Counter): client, server, network, decode
//   - dexview_catalog_retries_total{error_class} (Counter): only with opt-in retries
//
// Range fetch (pkg/rangefetch):
//   - dexview_range_fetches_total{result} (Counter): success, failed, invalid
//   - dexview_range_fetch_size (Histogram): IDs requested per fetch
//   - dexview_range_fetch_duration_seconds (Histogram)
//
// Web server (internal/server):
//   - dexview_http_requests_total{route, status} (Counter)
//   - dexview_sessions_active (Gauge)
//
// Example queries:
//
//	# Share of range fetches that were aborted
//	rate(dexview_range_fetches_total{result="failed"}[5m]) / rate(dexview_range_fetches_total[5m])
//
//	# P95 catalog latency
//	histogram_quantile(0.95, rate(dexview_catalog_request_duration_seconds_bucket[5m]))
