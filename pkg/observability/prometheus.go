package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	processRuns     *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	rebuildAffected prometheus.Histogram
	cacheEvents     *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	requests        *prometheus.CounterVec
	inflight        *prometheus.GaugeVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		processRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsmith_processor_runs_total",
			Help: "Processor runs labelled by processor and outcome.",
		}, []string{"processor", "outcome"}),
		processDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docsmith_processor_duration_seconds",
			Help:    "Time spent per processor run.",
			Buckets: prometheus.DefBuckets,
		}, []string{"processor"}),
		rebuildAffected: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docsmith_rebuild_affected_ratio",
			Help:    "Share of the corpus reprocessed by incremental runs.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsmith_cache_events_total",
			Help: "Cache hits, misses and writes labelled by key type.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsmith_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsmith_http_requests_total",
			Help: "Point-query requests labelled by method, route and status.",
		}, []string{"method", "route", "status"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "docsmith_http_inflight",
			Help: "Current number of in-flight point-query requests.",
		}, []string{"method", "route"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docsmith_http_request_duration_seconds",
			Help:    "Point-query request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.Collectors()...)
	}
	return m
}

// Collectors returns every collector, for custom registration.
func (m *Prometheus) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.processRuns, m.processDuration, m.rebuildAffected,
		m.cacheEvents, m.cacheBytes,
		m.requests, m.inflight, m.requestDuration,
	}
}

func (m *Prometheus) OnProcessStart(context.Context, string) {}

func (m *Prometheus) OnProcessComplete(_ context.Context, processor string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.processRuns.WithLabelValues(processor, outcome).Inc()
	m.processDuration.WithLabelValues(processor).Observe(d.Seconds())
}

func (m *Prometheus) OnRebuild(_ context.Context, affected, total int) {
	if total == 0 {
		return
	}
	m.rebuildAffected.Observe(float64(affected) / float64(total))
}

func (m *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Prometheus) OnRequest(_ context.Context, method, route string) {
	m.inflight.WithLabelValues(method, route).Inc()
}

func (m *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inflight.WithLabelValues(method, route).Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
