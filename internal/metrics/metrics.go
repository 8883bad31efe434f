// Package metrics provides Prometheus metrics for the gostep server
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine and its HTTP API
type Metrics struct {
	// HTTP request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Engine operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Loaded model
	ModelFaces     prometheus.Gauge
	ModelEntities  prometheus.Gauge
	MeshTriangles  prometheus.Gauge
	ReloadsTotal   prometheus.Counter
	LoadedAtSecond prometheus.Gauge
}

// New creates the metrics and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{}

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gostep_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gostep_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.RequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "gostep_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	m.OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gostep_operations_total",
			Help: "Total number of engine operations",
		},
		[]string{"operation", "status"},
	)

	m.OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gostep_operation_duration_seconds",
			Help:    "Duration of engine operations in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	m.ModelFaces = factory.NewGauge(prometheus.GaugeOpts{
		Name: "gostep_model_faces",
		Help: "Number of faces of the loaded model",
	})
	m.ModelEntities = factory.NewGauge(prometheus.GaugeOpts{
		Name: "gostep_model_step_entities",
		Help: "Number of indexed ADVANCED_FACE entities of the loaded model",
	})
	m.MeshTriangles = factory.NewGauge(prometheus.GaugeOpts{
		Name: "gostep_mesh_triangles",
		Help: "Number of triangles of the last assembled mesh",
	})
	m.ReloadsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "gostep_reloads_total",
		Help: "Total number of reloads triggered by file changes",
	})
	m.LoadedAtSecond = factory.NewGauge(prometheus.GaugeOpts{
		Name: "gostep_model_loaded_timestamp_seconds",
		Help: "Unix time the current model was loaded",
	})

	return m
}

// ObserveOperation records one engine operation
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveModel records the size of a freshly loaded model
func (m *Metrics) ObserveModel(faces, entities int, loadedAt time.Time) {
	m.ModelFaces.Set(float64(faces))
	m.ModelEntities.Set(float64(entities))
	m.LoadedAtSecond.Set(float64(loadedAt.Unix()))
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, method, statusClass(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
