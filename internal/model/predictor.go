package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"graphtrust/internal/features"
	"graphtrust/internal/model/metrics"
	"graphtrust/pkg/platform/sentinel"
)

// Source tells where a predicted score came from.
type Source string

const (
	SourceModel   Source = "model"
	SourceDefault Source = "default"
)

// Prediction is a raw (unrounded) score with its provenance.
type Prediction struct {
	Score   float64
	Source  Source
	Version uuid.UUID // uuid.Nil for default scores
}

const defaultCacheSize = 4

// Predictor scores feature vectors with the registry's active model. It reads
// the active version on every call and keeps decoded forests in a small LRU
// keyed by version, so a retrain or rollback takes effect immediately.
type Predictor struct {
	registry Registry
	cache    *lru.Cache[uuid.UUID, *Forest]
	loads    singleflight.Group
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// PredictorOption configures a Predictor.
type PredictorOption func(*Predictor)

func WithPredictorLogger(logger *slog.Logger) PredictorOption {
	return func(p *Predictor) { p.logger = logger }
}

func WithPredictorMetrics(m *metrics.Metrics) PredictorOption {
	return func(p *Predictor) { p.metrics = m }
}

// NewPredictor constructs a Predictor over a registry.
func NewPredictor(registry Registry, opts ...PredictorOption) (*Predictor, error) {
	if registry == nil {
		return nil, fmt.Errorf("model registry is required")
	}
	cache, err := lru.New[uuid.UUID, *Forest](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create model cache: %w", err)
	}
	p := &Predictor{
		registry: registry,
		cache:    cache,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Predict never fails: a missing or unusable model yields DefaultScore.
func (p *Predictor) Predict(ctx context.Context, v features.Vector) Prediction {
	forest, version, ok := p.activeForest(ctx)
	if !ok {
		p.metrics.IncrementPrediction(string(SourceDefault))
		return Prediction{Score: DefaultScore, Source: SourceDefault}
	}
	p.metrics.IncrementPrediction(string(SourceModel))
	return Prediction{Score: forest.Predict(v), Source: SourceModel, Version: version}
}

// Invalidate drops cached forests.
func (p *Predictor) Invalidate() {
	p.cache.Purge()
}

func (p *Predictor) activeForest(ctx context.Context) (*Forest, uuid.UUID, bool) {
	version, err := p.registry.Active(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, uuid.Nil, false
	}
	if err != nil {
		p.metrics.IncrementLoadFailure("registry")
		p.logger.WarnContext(ctx, "model registry unavailable, using default score", "error", err)
		return nil, uuid.Nil, false
	}

	if forest, ok := p.cache.Get(version.ID); ok {
		return forest, version.ID, true
	}

	res, err, _ := p.loads.Do(version.ID.String(), func() (any, error) {
		return p.load(ctx, version)
	})
	if err != nil {
		p.logger.WarnContext(ctx, "model unusable, using default score",
			"version", version.ID,
			"error", err,
		)
		return nil, uuid.Nil, false
	}
	return res.(*Forest), version.ID, true
}

func (p *Predictor) load(ctx context.Context, version *Version) (*Forest, error) {
	blob, err := p.registry.Load(ctx, version.ID)
	if err != nil {
		p.metrics.IncrementLoadFailure("registry")
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	if version.Checksum != "" && Checksum(blob) != version.Checksum {
		p.metrics.IncrementLoadFailure("checksum")
		return nil, fmt.Errorf("%w: checksum mismatch", sentinel.ErrCorrupt)
	}
	forest, err := Decode(blob)
	if err != nil {
		p.metrics.IncrementLoadFailure("decode")
		return nil, err
	}
	p.cache.Add(version.ID, forest)
	return forest, nil
}
