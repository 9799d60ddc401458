package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the server's Prometheus collectors. A nil *Metrics is valid and records
// nothing, so components can run without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	recommendations        *prometheus.CounterVec
	recommendationDuration prometheus.Histogram
	cacheHits              prometheus.Counter
	cacheMisses            prometheus.Counter

	snapshotRefreshes *prometheus.CounterVec
	snapshotSize      *prometheus.GaugeVec

	ingestedReadings *prometheus.CounterVec
}

// New registers every collector on a fresh registry, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomrec_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roomrec_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomrec_recommendations_total",
			Help: "Recommendations served, by outcome (ok or the empty-result reason).",
		}, []string{"outcome"}),
		recommendationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roomrec_recommendation_duration_seconds",
			Help:    "Time spent running the recommendation pipeline.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomrec_cache_hits_total",
			Help: "Recommendation cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomrec_cache_misses_total",
			Help: "Recommendation cache misses.",
		}),
		snapshotRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomrec_snapshot_refreshes_total",
			Help: "Snapshot rebuilds by result (success or failure).",
		}, []string{"result"}),
		snapshotSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roomrec_snapshot_records",
			Help: "Records held by the current snapshot, by dataset.",
		}, []string{"dataset"}),
		ingestedReadings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomrec_ingested_readings_total",
			Help: "Sensor readings received over MQTT, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.recommendations,
		m.recommendationDuration,
		m.cacheHits,
		m.cacheMisses,
		m.snapshotRefreshes,
		m.snapshotSize,
		m.ingestedReadings,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts and times requests to one route.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Recommendation records one pipeline run; outcome is "ok" or the empty-result reason.
func (m *Metrics) Recommendation(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(outcome).Inc()
	m.recommendationDuration.Observe(duration.Seconds())
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// SnapshotRefreshed records a rebuild attempt and, on success, the new snapshot's size.
func (m *Metrics) SnapshotRefreshed(success bool, agenda, busy, facilities, readings int) {
	if m == nil {
		return
	}
	if !success {
		m.snapshotRefreshes.WithLabelValues("failure").Inc()
		return
	}
	m.snapshotRefreshes.WithLabelValues("success").Inc()
	m.snapshotSize.WithLabelValues("agenda").Set(float64(agenda))
	m.snapshotSize.WithLabelValues("busy_intervals").Set(float64(busy))
	m.snapshotSize.WithLabelValues("facilities").Set(float64(facilities))
	m.snapshotSize.WithLabelValues("readings").Set(float64(readings))
}

// ReadingIngested records one MQTT payload; result is "stored", "invalid" or "error".
func (m *Metrics) ReadingIngested(result string) {
	if m == nil {
		return
	}
	m.ingestedReadings.WithLabelValues(result).Inc()
}
