package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Solves counts finished solve jobs by propagator and verdict
	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solves_total", Help: "Finished solve jobs by propagator and status."},
		[]string{"propagator", "status"},
	)
	// SolveNodes tracks search tree sizes per solve
	SolveNodes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solve_nodes", Help: "Search nodes expanded per solve.", Buckets: prometheus.ExponentialBuckets(10, 4, 10)},
		[]string{"propagator"},
	)
	// SolveBackjumps tracks non-chronological jumps per solve
	SolveBackjumps = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solve_backjumps", Help: "Backjumps taken per solve.", Buckets: prometheus.ExponentialBuckets(1, 4, 10)},
		[]string{"propagator"},
	)
	// SolveDuration records solver wall time in seconds
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solve_duration_seconds", Help: "Solver wall time in seconds.", Buckets: prometheus.ExponentialBuckets(0.001, 4, 10)},
		[]string{"propagator", "status"},
	)
	// BestDistance exposes the latest best total distance per instance
	BestDistance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "solve_best_distance", Help: "Best total distance of the latest solve per instance."},
		[]string{"instance"},
	)

	// WebhookDeliveries counts webhook delivery outcomes by event type and status
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
	// WebhookLatency tracks webhook delivery latencies in milliseconds
	WebhookLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"event_type", "status"},
	)
)

// RegisterDefault registers every collector on the package Registry, once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Solves)
		Registry.MustRegister(SolveNodes)
		Registry.MustRegister(SolveBackjumps)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(BestDistance)
		Registry.MustRegister(WebhookDeliveries)
		Registry.MustRegister(WebhookLatency)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
