package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"occupancy/ml"
)

// Prediction outcomes and error kinds used as label values.
const (
	OutcomeDefinitive   = "definitive"
	OutcomeInconclusive = "inconclusive"

	ErrorUnknownCategory = "unknown_category"
	ErrorClassification  = "classification"
	ErrorInvalidInput    = "invalid_input"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	predictions        *prometheus.CounterVec
	predictionErrors   *prometheus.CounterVec
	predictionDuration prometheus.Histogram
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "occupancy_predictions_total",
				Help: "Predictions served, by outcome",
			},
			[]string{"outcome"}, // definitive|inconclusive
		),
		predictionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "occupancy_prediction_errors_total",
				Help: "Failed prediction requests, by error kind",
			},
			[]string{"kind"},
		),
		predictionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "occupancy_prediction_duration_seconds",
				Help:    "Time spent building, classifying and deciding",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "occupancy_http_requests_total",
				Help: "HTTP requests, by method, route and status",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "occupancy_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	m.registry.MustRegister(
		m.predictions,
		m.predictionErrors,
		m.predictionDuration,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePrediction records a served prediction.
func (m *Metrics) ObservePrediction(result ml.PredictionResult, elapsed time.Duration) {
	outcome := OutcomeDefinitive
	if result.Inconclusive {
		outcome = OutcomeInconclusive
	}
	m.predictions.WithLabelValues(outcome).Inc()
	m.predictionDuration.Observe(elapsed.Seconds())
}

// ObserveError records a failed prediction request.
func (m *Metrics) ObserveError(kind string) {
	m.predictionErrors.WithLabelValues(kind).Inc()
}

// ObserveRequest records one HTTP exchange.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
