package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for scoring and graph events.
type Metrics struct {
	ScoreLatency     prometheus.Histogram
	Scores           *prometheus.CounterVec
	GraphEvents      *prometheus.CounterVec
	ReviewRejections *prometheus.CounterVec
	DashboardLatency prometheus.Histogram
}

// New creates a new Metrics instance with all scoring metrics registered.
func New() *Metrics {
	return &Metrics{
		ScoreLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "graphtrust_scoring_duration_seconds",
			Help:    "Duration of feature extraction plus prediction for one user",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		Scores: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "graphtrust_scores_total",
			Help: "Scores produced by tier and source",
		}, []string{"tier", "source"}), // source: "model", "default"

		GraphEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "graphtrust_graph_events_total",
			Help: "Marketplace events applied to the graph",
		}, []string{"type"}),

		ReviewRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "graphtrust_review_rejections_total",
			Help: "Reviews rejected before reaching the graph",
		}, []string{"reason"}),

		DashboardLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "graphtrust_dashboard_duration_seconds",
			Help:    "Duration of risk dashboard computation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveScore records one scoring.
func (m *Metrics) ObserveScore(tier, source string, d time.Duration) {
	if m != nil {
		m.ScoreLatency.Observe(d.Seconds())
		m.Scores.WithLabelValues(tier, source).Inc()
	}
}

// IncrementGraphEvent counts an applied event.
func (m *Metrics) IncrementGraphEvent(eventType string) {
	if m != nil {
		m.GraphEvents.WithLabelValues(eventType).Inc()
	}
}

// IncrementReviewRejected counts a rejected review.
func (m *Metrics) IncrementReviewRejected(reason string) {
	if m != nil {
		m.ReviewRejections.WithLabelValues(reason).Inc()
	}
}

// ObserveDashboard records a dashboard computation.
func (m *Metrics) ObserveDashboard(d time.Duration) {
	if m != nil {
		m.DashboardLatency.Observe(d.Seconds())
	}
}
