// Package observability holds the Prometheus collectors of the dashboard.
package observability

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// render cache outcomes
const (
	OutcomeHitLocal  = "hit_local"
	OutcomeHitRemote = "hit_remote"
	OutcomeMiss      = "miss"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	renderCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "render_cache_results_total",
			Help: "Render cache lookups by entry point and outcome.",
		},
		[]string{"entry", "outcome"},
	)

	renderDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "render_duration_seconds",
			Help:    "Time spent computing an artifact on a cache miss.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"entry"},
	)

	cacheOpTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Shared cache operations by op and result.",
		},
		[]string{"op", "result"},
	)

	redisOpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Latency of redis operations.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op"},
	)

	snapshotIngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_ingest_total",
			Help: "Snapshot feed events by result.",
		},
		[]string{"result"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		renderCacheResults,
		renderDurationSeconds,
		cacheOpTotal,
		redisOpDurationSeconds,
		snapshotIngestTotal,
	}
}

// Init registers the collectors on reg. Collectors keep counting when
// disabled, they are just not exported.
func Init(reg prometheus.Registerer, enabled bool) {
	if !enabled || reg == nil {
		return
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			panic(err)
		}
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveRenderCache(entry, outcome string) {
	renderCacheResults.WithLabelValues(entry, outcome).Inc()
}

func ObserveRender(entry string, durationSeconds float64) {
	renderDurationSeconds.WithLabelValues(entry).Observe(durationSeconds)
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	res := "ok"
	if err != nil {
		res = "error"
	}
	cacheOpTotal.WithLabelValues(op, res).Inc()
	redisOpDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func IncSnapshotIngest(result string) {
	snapshotIngestTotal.WithLabelValues(result).Inc()
}

// RenderCacheCounter exposes one counter series, used by tests.
func RenderCacheCounter(entry, outcome string) prometheus.Counter {
	return renderCacheResults.WithLabelValues(entry, outcome)
}
