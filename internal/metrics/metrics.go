package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is a dedicated registry so tests can assert on metrics without
// the global default registry leaking between packages.
var Registry = prometheus.NewRegistry()

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "droneplan_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "droneplan_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	PlanRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "droneplan_plan_requests_total",
		Help: "Delivery plan computations by outcome.",
	}, []string{"outcome"})

	PlanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "droneplan_plan_duration_seconds",
		Help:    "Time spent computing a delivery plan.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	WSConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "droneplan_ws_connections",
		Help: "Currently connected progress listeners.",
	})

	ProgressEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "droneplan_progress_events_total",
		Help: "Progress events broadcast to listeners, by type.",
	}, []string{"type"})
)

var registerOnce sync.Once

// RegisterDefault registers all collectors exactly once.
func RegisterDefault() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			PlanRequests,
			PlanDuration,
			WSConnections,
			ProgressEvents,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}
