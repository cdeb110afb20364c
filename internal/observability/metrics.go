package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis service.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec   // labels: kind={area,trend,forecast}, outcome={success,error}
	AnalysisDuration *prometheus.HistogramVec // labels: kind

	// Sampling and gateway fan-out metrics.
	SamplesRequested prometheus.Counter
	SamplesAbsent    prometheus.Counter
	GatewayRequests  *prometheus.CounterVec   // labels: op={point,series}, outcome={success,absent,error}
	GatewayCache     *prometheus.CounterVec   // labels: op={point,series}, result={hit,miss}
	GatewayDuration  *prometheus.HistogramVec // labels: op

	// Forecast model metrics.
	ModelFits *prometheus.CounterVec // labels: model, outcome={fitted,skipped}

	PublishErrors prometheus.Counter
	ServiceUp     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.SamplesRequested,
		m.SamplesAbsent,
		m.GatewayRequests,
		m.GatewayCache,
		m.GatewayDuration,
		m.ModelFits,
		m.PublishErrors,
		m.ServiceUp,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skyglow",
			Name:      "analyses_total",
			Help:      "Completed analysis requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skyglow",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete analysis request.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		SamplesRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skyglow",
			Name:      "samples_requested_total",
			Help:      "Total sample locations resolved against the gateway.",
		}),
		SamplesAbsent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skyglow",
			Name:      "samples_absent_total",
			Help:      "Sample locations the gateway had no data for.",
		}),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skyglow",
			Name:      "gateway_requests_total",
			Help:      "Measurement gateway requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		GatewayCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skyglow",
			Name:      "gateway_cache_total",
			Help:      "Gateway cache lookups by operation and result.",
		}, []string{"op", "result"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skyglow",
			Name:      "gateway_request_duration_seconds",
			Help:      "Upstream gateway request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"op"}),
		ModelFits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skyglow",
			Name:      "model_fits_total",
			Help:      "Forecast model fits by model family and outcome.",
		}, []string{"model", "outcome"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skyglow",
			Name:      "publish_errors_total",
			Help:      "Failed report publishes, absorbed without failing the analysis.",
		}),
		ServiceUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skyglow",
			Name:      "service_up",
			Help:      "1 when the analysis service is wired and serving, 0 during shutdown.",
		}),
	}
}
