package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	errors       *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	delayedLeads *prometheus.GaugeVec
	stageLeads   *prometheus.GaugeVec
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lead_dashboard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lead_dashboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lead_dashboard",
			Name:      "http_errors_total",
			Help:      "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lead_dashboard",
			Name:      "snapshot_cache_lookups_total",
			Help:      "Snapshot cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		delayedLeads: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lead_dashboard",
			Name:      "delayed_leads",
			Help:      "Delayed leads per delay category, from the last monitor run.",
		}, []string{"category"}),
		stageLeads: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lead_dashboard",
			Name:      "stage_leads",
			Help:      "Leads per configured pipeline stage, from the last monitor run.",
		}, []string{"stage"}),
	}
	registry.MustRegister(m.requests, m.latency, m.errors, m.cacheLookups, m.delayedLeads, m.stageLeads)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordCacheLookup counts a snapshot cache hit, miss or error.
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// SetDelayedLeads replaces the delayed-lead gauges.
func (m *Metrics) SetDelayedLeads(byCategory map[string]int) {
	if m == nil {
		return
	}
	m.delayedLeads.Reset()
	for category, count := range byCategory {
		m.delayedLeads.WithLabelValues(category).Set(float64(count))
	}
}

// SetStageLeads replaces the per-stage gauges.
func (m *Metrics) SetStageLeads(byStage map[string]int) {
	if m == nil {
		return
	}
	m.stageLeads.Reset()
	for stage, count := range byStage {
		m.stageLeads.WithLabelValues(stage).Set(float64(count))
	}
}
