package scoring

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"graphtrust/internal/model"
	dErrors "graphtrust/pkg/domain-errors"
	"graphtrust/pkg/platform/sentinel"
	"graphtrust/pkg/requestcontext"
)

// TrainModel fits a new model on synthetic data and makes it active.
func (s *Service) TrainModel(ctx context.Context, req TrainRequest) (*model.Version, error) {
	if s.trainer == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "training is not configured")
	}
	opts := s.trainDefaults
	if req.SampleCount != 0 {
		opts.SampleCount = req.SampleCount
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}

	version, err := s.trainer.Train(ctx, opts)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "model activated",
		"request_id", requestcontext.RequestID(ctx),
		"version", version.ID,
		"sample_count", version.SampleCount,
		"seed", version.Seed,
	)
	return version, nil
}

// ListModels returns retained model versions, newest first.
func (s *Service) ListModels(ctx context.Context) ([]model.Version, error) {
	if s.registry == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "model registry is not configured")
	}
	versions, err := s.registry.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list models")
	}
	return versions, nil
}

// ActivateModel makes a retained version active again.
func (s *Service) ActivateModel(ctx context.Context, versionID uuid.UUID) error {
	if s.registry == nil {
		return dErrors.New(dErrors.CodeInternal, "model registry is not configured")
	}
	err := s.registry.Activate(ctx, versionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "model version not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to activate model")
	}
	s.logger.InfoContext(ctx, "model rolled back",
		"request_id", requestcontext.RequestID(ctx),
		"version", versionID,
	)
	return nil
}

// activeModel returns the active version, or nil when none exists or the
// registry is unreachable.
func (s *Service) activeModel(ctx context.Context) *model.Version {
	if s.registry == nil {
		return nil
	}
	v, err := s.registry.Active(ctx)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "active model lookup failed", "error", err)
		}
		return nil
	}
	return v
}
