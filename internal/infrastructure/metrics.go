package infrastructure

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aqdaily/pkg/contracts/domain"
)

const metricsNamespace = "aqdaily"

// Metrics holds the Prometheus collectors of one process. Each instance owns
// its registry so tests never collide on the default one.
type Metrics struct {
	Registry *prometheus.Registry

	RowsTotal          *prometheus.CounterVec
	TimestampsAccepted *prometheus.CounterVec
	ValuesAccepted     *prometheus.CounterVec
	DeviceFailures     *prometheus.CounterVec
	ResampleFallbacks  prometheus.Counter
	StepDuration       *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
}

// NewMetrics registers every aqdaily collector plus the Go runtime and
// process collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		RowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_total",
			Help:      "Data rows read from vendor tables.",
		}, []string{"manufacturer"}),
		TimestampsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "timestamps_accepted_total",
			Help:      "Rows whose timestamp parsed.",
		}, []string{"manufacturer"}),
		ValuesAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "values_accepted_total",
			Help:      "Numeric values accepted per measurand.",
		}, []string{"manufacturer", "measurand"}),
		DeviceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "device_failures_total",
			Help:      "Devices that failed a pipeline stage.",
		}, []string{"manufacturer", "stage"}),
		ResampleFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "resample_fallbacks_total",
			Help:      "Analyses written without resampling after a resampling error.",
		}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of pipeline steps.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"step"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by route and status.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(
		m.RowsTotal,
		m.TimestampsAccepted,
		m.ValuesAccepted,
		m.DeviceFailures,
		m.ResampleFallbacks,
		m.StepDuration,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSummary adds one device's validation summary to the counters.
func (m *Metrics) ObserveSummary(manufacturer string, s domain.ValidationSummary) {
	if m == nil {
		return
	}
	m.RowsTotal.WithLabelValues(manufacturer).Add(float64(s.Rows))
	for key, n := range s.Counts {
		if key == domain.TimestampKey {
			m.TimestampsAccepted.WithLabelValues(manufacturer).Add(float64(n))
			continue
		}
		m.ValuesAccepted.WithLabelValues(manufacturer, key).Add(float64(n))
	}
}

// DeviceFailed counts a device failure at stage.
func (m *Metrics) DeviceFailed(manufacturer, stage string) {
	if m == nil {
		return
	}
	m.DeviceFailures.WithLabelValues(manufacturer, stage).Inc()
}

// ObserveStep records a step's duration in seconds.
func (m *Metrics) ObserveStep(step string, seconds float64) {
	if m == nil {
		return
	}
	m.StepDuration.WithLabelValues(step).Observe(seconds)
}

// FallbackResample counts an analysis written unresampled.
func (m *Metrics) FallbackResample() {
	if m == nil {
		return
	}
	m.ResampleFallbacks.Inc()
}

// ObserveRequest counts one HTTP response for a route pattern.
func (m *Metrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// WriteTextfile writes the registry for the node_exporter textfile collector.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
