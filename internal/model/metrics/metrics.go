package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for training and model loading.
type Metrics struct {
	TrainDuration     prometheus.Histogram
	TrainRuns         *prometheus.CounterVec
	ModelLoadFailures *prometheus.CounterVec
	Predictions       *prometheus.CounterVec
}

// New creates a new Metrics instance with all model metrics registered.
func New() *Metrics {
	return &Metrics{
		TrainDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "graphtrust_model_train_duration_seconds",
			Help:    "Duration of model training including persistence",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		TrainRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "graphtrust_model_train_runs_total",
			Help: "Training runs by result",
		}, []string{"result"}), // result: "ok", "error"

		ModelLoadFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "graphtrust_model_load_failures_total",
			Help: "Model load failures that fell back to the default score",
		}, []string{"reason"}), // reason: "registry", "checksum", "decode"

		Predictions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "graphtrust_model_predictions_total",
			Help: "Predictions by score source",
		}, []string{"source"}),
	}
}

// ObserveTrain records a finished training run.
func (m *Metrics) ObserveTrain(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.TrainRuns.WithLabelValues(result).Inc()
	m.TrainDuration.Observe(d.Seconds())
}

// IncrementLoadFailure records a fallback caused by an unusable model.
func (m *Metrics) IncrementLoadFailure(reason string) {
	if m != nil {
		m.ModelLoadFailures.WithLabelValues(reason).Inc()
	}
}

// IncrementPrediction records a prediction by source.
func (m *Metrics) IncrementPrediction(source string) {
	if m != nil {
		m.Predictions.WithLabelValues(source).Inc()
	}
}
