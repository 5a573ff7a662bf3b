package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	global *Metrics
	once   sync.Once
)

// Metrics holds the Prometheus collectors for the service.
//
//   - didyouthough_extractions_total{outcome} - ok, warning, not_configured, upstream_error
//   - didyouthough_llm_request_duration_seconds{kind} - completion, transcription
//   - didyouthough_gateway_mutations_total{op,result}
//   - didyouthough_change_subscribers - open change streams
type Metrics struct {
	Extractions       *prometheus.CounterVec
	LLMDuration       *prometheus.HistogramVec
	Mutations         *prometheus.CounterVec
	ChangeSubscribers prometheus.Gauge
}

// New registers the collectors with the default registry once and returns
// the shared instance on every call.
func New() *Metrics {
	once.Do(func() {
		global = &Metrics{
			Extractions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "didyouthough_extractions_total",
					Help: "Extraction requests by outcome",
				},
				[]string{"outcome"},
			),
			LLMDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "didyouthough_llm_request_duration_seconds",
					Help:    "Latency of hosted model calls",
					Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
				},
				[]string{"kind"},
			),
			Mutations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "didyouthough_gateway_mutations_total",
					Help: "Persistence gateway mutations by operation and result",
				},
				[]string{"op", "result"},
			),
			ChangeSubscribers: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "didyouthough_change_subscribers",
					Help: "Open real-time change streams",
				},
			),
		}
	})
	return global
}

// Result is the label value for an error outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
