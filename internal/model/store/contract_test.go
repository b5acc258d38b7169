package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"graphtrust/internal/model"
	"graphtrust/pkg/platform/sentinel"
)

// registryContract exercises behavior every backend must share. Backend
// suites embed it and set newRegistry.
type registryContract struct {
	suite.Suite
	ctx         context.Context
	newRegistry func(opts ...Option) model.Registry
	registry    model.Registry
	clock       time.Time
}

func (s *registryContract) SetupTest() {
	s.ctx = context.Background()
	s.clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.registry = s.newRegistry(WithRetention(3))
}

func (s *registryContract) version() model.Version {
	s.clock = s.clock.Add(time.Minute)
	return model.Version{
		ID:          uuid.New(),
		CreatedAt:   s.clock,
		SampleCount: 100,
		Seed:        42,
		Trees:       50,
		Checksum:    "abc",
	}
}

func (s *registryContract) save(v model.Version, blob string) {
	s.Require().NoError(s.registry.Save(s.ctx, v, []byte(blob)))
}

func (s *registryContract) TestEmpty() {
	_, err := s.registry.Active(s.ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.registry.Load(s.ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)

	versions, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(versions)

	s.ErrorIs(s.registry.Activate(s.ctx, uuid.New()), sentinel.ErrNotFound)
}

func (s *registryContract) TestSaveActivates() {
	first := s.version()
	s.save(first, "one")
	second := s.version()
	s.save(second, "two")

	active, err := s.registry.Active(s.ctx)
	s.Require().NoError(err)
	s.Equal(second.ID, active.ID)
	s.Equal(second.Checksum, active.Checksum)
	s.Equal(second.Seed, active.Seed)

	blob, err := s.registry.Load(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("one", string(blob))

	versions, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(versions, 2)
	s.Equal(second.ID, versions[0].ID)
	s.True(versions[0].Active)
	s.False(versions[1].Active)
}

func (s *registryContract) TestActivateRollsBack() {
	first := s.version()
	s.save(first, "one")
	s.save(s.version(), "two")

	s.Require().NoError(s.registry.Activate(s.ctx, first.ID))

	active, err := s.registry.Active(s.ctx)
	s.Require().NoError(err)
	s.Equal(first.ID, active.ID)

	versions, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	activeCount := 0
	for _, v := range versions {
		if v.Active {
			activeCount++
		}
	}
	s.Equal(1, activeCount)
}

func (s *registryContract) TestRetention() {
	var ids []uuid.UUID
	for i := range 5 {
		v := s.version()
		ids = append(ids, v.ID)
		s.save(v, string(rune('a'+i)))
	}

	versions, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(versions, 3)
	s.Equal(ids[4], versions[0].ID)
	s.Equal(ids[2], versions[2].ID)

	_, err = s.registry.Load(s.ctx, ids[0])
	s.ErrorIs(err, sentinel.ErrNotFound)
}
