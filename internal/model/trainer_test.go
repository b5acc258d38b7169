package model_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"graphtrust/internal/features"
	"graphtrust/internal/model"
	"graphtrust/internal/model/store"
	dErrors "graphtrust/pkg/domain-errors"
)

type ModelSuite struct {
	suite.Suite
	ctx       context.Context
	registry  *store.InMemoryRegistry
	trainer   *model.Trainer
	predictor *model.Predictor
}

func TestModelSuite(t *testing.T) {
	suite.Run(t, new(ModelSuite))
}

func (s *ModelSuite) SetupTest() {
	s.ctx = context.Background()
	s.registry = store.NewInMemory()

	var err error
	s.trainer, err = model.NewTrainer(s.registry, model.WithForestConfig(model.ForestConfig{Trees: 20}))
	s.Require().NoError(err)
	s.predictor, err = model.NewPredictor(s.registry)
	s.Require().NoError(err)
}

func (s *ModelSuite) TestConstructors() {
	_, err := model.NewTrainer(nil)
	s.Error(err)
	_, err = model.NewPredictor(nil)
	s.Error(err)
}

func (s *ModelSuite) TestTrain() {
	s.Run("defaults sample count", func() {
		v, err := s.trainer.Train(s.ctx, model.TrainOptions{Seed: model.DefaultSeed})
		s.Require().NoError(err)
		s.Equal(model.DefaultSampleCount, v.SampleCount)
		s.Equal(20, v.Trees)
		s.True(v.Active)
		s.Len(v.Checksum, 64)

		active, err := s.registry.Active(s.ctx)
		s.Require().NoError(err)
		s.Equal(v.ID, active.ID)
	})

	s.Run("rejects out of range sample count", func() {
		for _, n := range []int{-1, model.MaxSampleCount + 1} {
			_, err := s.trainer.Train(s.ctx, model.TrainOptions{SampleCount: n})
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		}
	})

	s.Run("same seed trains the same artifact", func() {
		a, err := s.trainer.Train(s.ctx, model.TrainOptions{SampleCount: 50, Seed: 7})
		s.Require().NoError(err)
		b, err := s.trainer.Train(s.ctx, model.TrainOptions{SampleCount: 50, Seed: 7})
		s.Require().NoError(err)
		s.NotEqual(a.ID, b.ID)
		s.Equal(a.Checksum, b.Checksum)
	})

	s.Run("uses injected clock", func() {
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		trainer, err := model.NewTrainer(s.registry,
			model.WithForestConfig(model.ForestConfig{Trees: 3}),
			model.WithTrainerClock(func() time.Time { return fixed }),
		)
		s.Require().NoError(err)
		v, err := trainer.Train(s.ctx, model.TrainOptions{SampleCount: 10})
		s.Require().NoError(err)
		s.Equal(fixed, v.CreatedAt)
	})
}

func (s *ModelSuite) TestPredict() {
	v := features.Vector{Degree: 10, DeviceLinks: 1}

	s.Run("untrained returns default", func() {
		p := s.predictor.Predict(s.ctx, v)
		s.Equal(model.DefaultScore, p.Score)
		s.Equal(model.SourceDefault, p.Source)
		s.Equal(uuid.Nil, p.Version)
	})

	s.Run("trained returns model score", func() {
		version, err := s.trainer.Train(s.ctx, model.TrainOptions{Seed: model.DefaultSeed})
		s.Require().NoError(err)

		p := s.predictor.Predict(s.ctx, v)
		s.Equal(model.SourceModel, p.Source)
		s.Equal(version.ID, p.Version)
		s.InDelta(4.9, p.Score, 0.75)
	})

	s.Run("corrupt artifact falls back to default", func() {
		version, err := s.trainer.Train(s.ctx, model.TrainOptions{Seed: 11})
		s.Require().NoError(err)
		s.registry.Corrupt(version.ID, []byte("garbage"))
		s.predictor.Invalidate()

		p := s.predictor.Predict(s.ctx, v)
		s.Equal(model.DefaultScore, p.Score)
		s.Equal(model.SourceDefault, p.Source)
	})
}

func (s *ModelSuite) TestRollback() {
	first, err := s.trainer.Train(s.ctx, model.TrainOptions{Seed: 1})
	s.Require().NoError(err)
	second, err := s.trainer.Train(s.ctx, model.TrainOptions{Seed: 2})
	s.Require().NoError(err)

	v := features.Vector{Degree: 30, DeviceLinks: 3, FlaggedLinks: 1}
	s.Equal(second.ID, s.predictor.Predict(s.ctx, v).Version)

	s.Require().NoError(s.registry.Activate(s.ctx, first.ID))
	s.Equal(first.ID, s.predictor.Predict(s.ctx, v).Version)
}

// undecodableRegistry serves an artifact whose checksum matches but whose
// contents are not a forest.
type undecodableRegistry struct {
	blob    []byte
	version model.Version
}

func (r *undecodableRegistry) Save(context.Context, model.Version, []byte) error { return nil }
func (r *undecodableRegistry) Active(context.Context) (*model.Version, error) {
	return &r.version, nil
}
func (r *undecodableRegistry) Load(context.Context, uuid.UUID) ([]byte, error) { return r.blob, nil }
func (r *undecodableRegistry) List(context.Context) ([]model.Version, error) {
	return []model.Version{r.version}, nil
}
func (r *undecodableRegistry) Activate(context.Context, uuid.UUID) error { return nil }

func (s *ModelSuite) TestPredictUndecodableArtifact() {
	blob := []byte(`{"format":1,"dimensions":3,"trees":[]}`)
	reg := &undecodableRegistry{
		blob:    blob,
		version: model.Version{ID: uuid.New(), Checksum: model.Checksum(blob), Active: true},
	}
	predictor, err := model.NewPredictor(reg)
	s.Require().NoError(err)

	p := predictor.Predict(s.ctx, features.Vector{Degree: 1})
	s.Equal(model.DefaultScore, p.Score)
	s.Equal(model.SourceDefault, p.Source)
}
