package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"promptd/internal/domain"
)

type PrometheusMetrics struct {
	reloadDuration    *prometheus.HistogramVec
	reloadRegistered  *prometheus.CounterVec
	registryEntries   *prometheus.GaugeVec
	remoteFetch       *prometheus.HistogramVec
	sinkRegistrations *prometheus.CounterVec
	exports           *prometheus.CounterVec
	httpRequests      *prometheus.HistogramVec
	eventSubscribers  prometheus.Gauge
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		reloadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promptd_reload_duration_seconds",
				Help:    "Duration of registry reloads in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30, 120},
			},
			[]string{"registry", "status"},
		),
		reloadRegistered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptd_entries_registered_total",
				Help: "Total number of entries newly registered by reloads",
			},
			[]string{"registry"},
		),
		registryEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "promptd_registry_entries",
				Help: "Current number of registry entries",
			},
			[]string{"registry"},
		),
		remoteFetch: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promptd_remote_fetch_duration_seconds",
				Help:    "Duration of remote source fetches in seconds",
				Buckets: []float64{.05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"source", "status"},
		),
		sinkRegistrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptd_sink_registrations_total",
				Help: "Total number of prompt registrations delivered to the MCP sink",
			},
			[]string{"kind", "status"},
		),
		exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptd_resource_exports_total",
				Help: "Total number of resources exported as prompts",
			},
			[]string{"status"},
		),
		httpRequests: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promptd_http_request_duration_seconds",
				Help:    "Duration of HTTP front end requests in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
			},
			[]string{"route", "code"},
		),
		eventSubscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "promptd_event_subscribers",
				Help: "Current number of connected SSE subscribers",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveReload(kind domain.RegistryKind, duration time.Duration, newlyRegistered int, err error) {
	p.reloadDuration.WithLabelValues(string(kind), statusLabel(err)).Observe(duration.Seconds())
	if newlyRegistered > 0 {
		p.reloadRegistered.WithLabelValues(string(kind)).Add(float64(newlyRegistered))
	}
}

func (p *PrometheusMetrics) SetRegistryEntries(kind domain.RegistryKind, count int) {
	p.registryEntries.WithLabelValues(string(kind)).Set(float64(count))
}

func (p *PrometheusMetrics) ObserveRemoteFetch(source string, duration time.Duration, err error) {
	p.remoteFetch.WithLabelValues(source, statusLabel(err)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveSinkRegistration(kind domain.HandlerKind, err error) {
	p.sinkRegistrations.WithLabelValues(string(kind), statusLabel(err)).Inc()
}

func (p *PrometheusMetrics) ObserveExport(exported int, failed int) {
	if exported > 0 {
		p.exports.WithLabelValues("success").Add(float64(exported))
	}
	if failed > 0 {
		p.exports.WithLabelValues("error").Add(float64(failed))
	}
}

func (p *PrometheusMetrics) ObserveHTTPRequest(route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) AddEventSubscribers(delta int) {
	p.eventSubscribers.Add(float64(delta))
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
