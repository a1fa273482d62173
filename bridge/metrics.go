package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "wasm_bridge"

// Metrics holds the Prometheus metrics for one runtime.
type Metrics struct {
	// Boundary crossings
	Calls       *prometheus.CounterVec
	Faults      *prometheus.CounterVec
	CallLatency *prometheus.HistogramVec

	// Callbacks
	Callbacks      prometheus.Counter
	CallbackPanics prometheus.Counter

	// Ownership
	OutstandingBuffers prometheus.Gauge
	Violations         *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "native_calls_total",
			Help:      "Total number of managed to native calls",
		}, []string{"export"}),
		Faults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "boundary_faults_total",
			Help:      "Total number of native calls that trapped",
		}, []string{"export"}),
		CallLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "native_call_duration_seconds",
			Help:      "Native call latency in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"export"}),

		Callbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "callbacks_total",
			Help:      "Total number of native to managed callbacks",
		}),
		CallbackPanics: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "callback_panics_total",
			Help:      "Total number of callback panics recovered at the boundary",
		}),

		OutstandingBuffers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "outstanding_buffers",
			Help:      "Native buffers owned by the managed side and not yet freed",
		}),
		Violations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ownership_violations_total",
			Help:      "Total number of rejected frees and uses after free",
		}, []string{"kind"}),
	}
}
