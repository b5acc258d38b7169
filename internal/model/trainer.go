package model

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"graphtrust/internal/model/metrics"
	dErrors "graphtrust/pkg/domain-errors"
)

// Training defaults.
const (
	DefaultSampleCount = 100
	DefaultSeed        = 42
	MaxSampleCount     = 100_000
)

// TrainOptions selects the synthetic dataset for one run.
type TrainOptions struct {
	SampleCount int
	Seed        uint64
}

// Trainer fits forests on synthetic data and publishes them to a Registry.
type Trainer struct {
	registry Registry
	forest   ForestConfig
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	clock    func() time.Time
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

func WithForestConfig(cfg ForestConfig) TrainerOption {
	return func(t *Trainer) { t.forest = cfg }
}

func WithTrainerLogger(logger *slog.Logger) TrainerOption {
	return func(t *Trainer) { t.logger = logger }
}

func WithTrainerMetrics(m *metrics.Metrics) TrainerOption {
	return func(t *Trainer) { t.metrics = m }
}

func WithTrainerClock(clock func() time.Time) TrainerOption {
	return func(t *Trainer) { t.clock = clock }
}

// NewTrainer constructs a Trainer.
func NewTrainer(registry Registry, opts ...TrainerOption) (*Trainer, error) {
	if registry == nil {
		return nil, fmt.Errorf("model registry is required")
	}
	t := &Trainer{
		registry: registry,
		forest:   DefaultForestConfig(),
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer("graphtrust/model"),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Train generates the synthetic dataset, fits a forest and saves it as the new
// active version.
func (t *Trainer) Train(ctx context.Context, opts TrainOptions) (*Version, error) {
	if opts.SampleCount == 0 {
		opts.SampleCount = DefaultSampleCount
	}
	if opts.SampleCount < 0 || opts.SampleCount > MaxSampleCount {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("sample_count must be between 1 and %d", MaxSampleCount))
	}

	ctx, span := t.tracer.Start(ctx, "model.Train", trace.WithAttributes(
		attribute.Int("sample_count", opts.SampleCount),
		attribute.Int64("seed", int64(opts.Seed)),
	))
	defer span.End()

	start := time.Now()
	version, err := t.train(ctx, opts)
	t.metrics.ObserveTrain(time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "training failed")
		t.logger.ErrorContext(ctx, "model training failed",
			"sample_count", opts.SampleCount,
			"error", err,
		)
		return nil, err
	}

	t.logger.InfoContext(ctx, "model trained",
		"version", version.ID,
		"sample_count", version.SampleCount,
		"trees", version.Trees,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return version, nil
}

func (t *Trainer) train(ctx context.Context, opts TrainOptions) (*Version, error) {
	samples := GenerateSynthetic(opts.SampleCount, newRand(opts.Seed))

	forest, err := FitForest(ctx, samples, t.forest, opts.Seed)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fit model")
	}

	blob, err := Encode(forest)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode model")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate model version")
	}
	version := Version{
		ID:          id,
		CreatedAt:   t.clock().UTC(),
		SampleCount: opts.SampleCount,
		Seed:        opts.Seed,
		Trees:       forest.TreeCount(),
		Checksum:    Checksum(blob),
		Active:      true,
	}
	if err := t.registry.Save(ctx, version, blob); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save model")
	}
	return &version, nil
}
