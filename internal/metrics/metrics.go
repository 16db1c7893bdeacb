// Package metrics provides Prometheus metrics for codegenesis. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for codegenesis
type Metrics struct {
	registry *prometheus.Registry

	// Lifecycle operation metrics
	OperationsTotal *prometheus.CounterVec
	Busy            prometheus.Gauge

	// Generation client metrics
	GenerationRequestsTotal   *prometheus.CounterVec
	GenerationRequestDuration *prometheus.HistogramVec
	GeneratedFilesTotal       prometheus.Counter

	// Storage metrics
	StorageFaultsTotal *prometheus.CounterVec
}

// New creates and registers all metrics on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codegenesis_lifecycle_operations_total",
				Help: "Total number of lifecycle operations",
			},
			[]string{"operation", "status"},
		),
		Busy: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "codegenesis_lifecycle_busy",
				Help: "1 while a send-message or generate-code operation is outstanding",
			},
		),
		GenerationRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codegenesis_generation_requests_total",
				Help: "Total number of generation service requests",
			},
			[]string{"operation", "status"},
		),
		GenerationRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codegenesis_generation_request_duration_seconds",
				Help:    "Duration of generation service requests in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"operation"},
		),
		GeneratedFilesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "codegenesis_generated_files_total",
				Help: "Total number of files returned by code generation",
			},
		),
		StorageFaultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codegenesis_storage_faults_total",
				Help: "Total number of degraded storage reads and dropped writes",
			},
			[]string{"operation"},
		),
	}
}

// Handler exposes the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Operation records the outcome of a lifecycle operation.
func (m *Metrics) Operation(op string, err error) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(op, status(err)).Inc()
}

// SetBusy records the single-flight busy flag.
func (m *Metrics) SetBusy(busy bool) {
	if m == nil {
		return
	}
	if busy {
		m.Busy.Set(1)
		return
	}
	m.Busy.Set(0)
}

// GenerationRequest records one generation service call.
func (m *Metrics) GenerationRequest(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.GenerationRequestsTotal.WithLabelValues(op, status(err)).Inc()
	m.GenerationRequestDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// FilesGenerated records the size of a committed file set.
func (m *Metrics) FilesGenerated(n int) {
	if m == nil {
		return
	}
	m.GeneratedFilesTotal.Add(float64(n))
}

// StorageFault records a degraded read or dropped write.
func (m *Metrics) StorageFault(op string) {
	if m == nil {
		return
	}
	m.StorageFaultsTotal.WithLabelValues(op).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
