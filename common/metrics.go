package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector records request, cache and dedup activity. A nil
// *MetricsCollector is valid and records nothing.
//
// Every label is a resource family (see ResourceLabel), never a raw key or
// path, so record IDs and search terms do not become series.
type MetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	cacheSize       prometheus.Gauge
	dedupJoins      *prometheus.CounterVec
	inFlight        prometheus.Gauge
	errorsTotal     *prometheus.CounterVec
}

// NewMetricsCollector registers the collector's metrics on registry.
func NewMetricsCollector(registry prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(registry)
	return &MetricsCollector{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schooladmin_requests_total",
			Help: "Total number of API requests sent to the platform.",
		}, []string{"method", "resource", "status_code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schooladmin_request_duration_seconds",
			Help:    "Duration of API requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "resource"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schooladmin_cache_hits_total",
			Help: "Requests answered from the response cache.",
		}, []string{"resource"}),
		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schooladmin_cache_misses_total",
			Help: "Cacheable requests that needed the network.",
		}, []string{"resource"}),
		cacheSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "schooladmin_cache_entries",
			Help: "Live entries in the response cache.",
		}),
		dedupJoins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schooladmin_dedup_shared_total",
			Help: "Calls that shared the result of an in-flight request.",
		}, []string{"resource"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "schooladmin_dedup_in_flight",
			Help: "Deduplicated reads currently waiting on the network.",
		}),
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schooladmin_errors_total",
			Help: "Failed API requests by error kind.",
		}, []string{"kind", "resource"}),
	}
}

// ResourceLabel reduces a cache key or endpoint to its resource family:
// "/schools/42", "schools/42" and "/schools:status=active" all give "schools".
func ResourceLabel(keyOrEndpoint string) string {
	s := keyOrEndpoint
	if i := strings.IndexAny(s, ":?"); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "/")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "root"
	}
	return s
}

// RecordRequest counts a completed network call.
func (mc *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}
	resource := ResourceLabel(endpoint)
	mc.requestsTotal.WithLabelValues(method, resource, strconv.Itoa(statusCode)).Inc()
	mc.requestDuration.WithLabelValues(method, resource).Observe(duration.Seconds())
}

func (mc *MetricsCollector) RecordCacheHit(key string) {
	if mc == nil {
		return
	}
	mc.cacheHits.WithLabelValues(ResourceLabel(key)).Inc()
}

func (mc *MetricsCollector) RecordCacheMiss(key string) {
	if mc == nil {
		return
	}
	mc.cacheMisses.WithLabelValues(ResourceLabel(key)).Inc()
}

func (mc *MetricsCollector) RecordCacheSize(size int) {
	if mc == nil {
		return
	}
	mc.cacheSize.Set(float64(size))
}

func (mc *MetricsCollector) RecordDedupShared(key string) {
	if mc == nil {
		return
	}
	mc.dedupJoins.WithLabelValues(ResourceLabel(key)).Inc()
}

func (mc *MetricsCollector) RecordInFlight(n int) {
	if mc == nil {
		return
	}
	mc.inFlight.Set(float64(n))
}

func (mc *MetricsCollector) RecordError(kind error, endpoint string) {
	if mc == nil {
		return
	}
	mc.errorsTotal.WithLabelValues(KindName(kind), ResourceLabel(endpoint)).Inc()
}
