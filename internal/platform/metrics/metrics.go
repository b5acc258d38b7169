package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide Prometheus metrics: HTTP traffic, event
// ingestion and graph size.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	EventsIngested  *prometheus.CounterVec
	GraphNodes      prometheus.Gauge
	GraphEdges      prometheus.Gauge
}

// New creates and registers all platform metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphtrust_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		EventsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "graphtrust_events_ingested_total",
			Help: "Marketplace events consumed from the stream",
		}, []string{"type", "result"}), // result: "processed", "rejected", "malformed", "unknown", "failed"

		GraphNodes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "graphtrust_graph_nodes",
			Help: "Nodes currently in the relationship graph",
		}),

		GraphEdges: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "graphtrust_graph_edges",
			Help: "Edges currently in the relationship graph",
		}),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// IncrementEvent counts one consumed event.
func (m *Metrics) IncrementEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.EventsIngested.WithLabelValues(eventType, result).Inc()
}

// SetGraphSize publishes the current graph size.
func (m *Metrics) SetGraphSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.GraphNodes.Set(float64(nodes))
	m.GraphEdges.Set(float64(edges))
}
