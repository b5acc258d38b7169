package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"graphtrust/internal/model"
	"graphtrust/pkg/platform/sentinel"
)

// InMemoryRegistry keeps models in process memory. Used for tests and for
// deployments that retrain on startup.
type InMemoryRegistry struct {
	mu        sync.RWMutex
	versions  map[uuid.UUID]model.Version
	artifacts map[uuid.UUID][]byte
	opts      options
}

// NewInMemory creates an empty in-memory registry.
func NewInMemory(opts ...Option) *InMemoryRegistry {
	return &InMemoryRegistry{
		versions:  make(map[uuid.UUID]model.Version),
		artifacts: make(map[uuid.UUID][]byte),
		opts:      applyOptions(opts),
	}
}

func (s *InMemoryRegistry) Save(_ context.Context, v model.Version, artifact []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deactivateAll()
	v.Active = true
	s.versions[v.ID] = v
	s.artifacts[v.ID] = slices.Clone(artifact)

	for _, old := range prune(s.list(), s.opts.retention) {
		delete(s.versions, old.ID)
		delete(s.artifacts, old.ID)
	}
	return nil
}

func (s *InMemoryRegistry) Active(_ context.Context) (*model.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.versions {
		if v.Active {
			return &v, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryRegistry) Load(_ context.Context, id uuid.UUID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.artifacts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return slices.Clone(blob), nil
}

func (s *InMemoryRegistry) List(_ context.Context) ([]model.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.list()
	sortNewestFirst(versions)
	return versions, nil
}

func (s *InMemoryRegistry) Activate(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.deactivateAll()
	v.Active = true
	s.versions[id] = v
	return nil
}

// Corrupt overwrites a stored artifact. Test hook for integrity failures.
func (s *InMemoryRegistry) Corrupt(id uuid.UUID, artifact []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[id] = artifact
}

func (s *InMemoryRegistry) list() []model.Version {
	out := make([]model.Version, 0, len(s.versions))
	for _, v := range s.versions {
		out = append(out, v)
	}
	return out
}

func (s *InMemoryRegistry) deactivateAll() {
	for id, v := range s.versions {
		if v.Active {
			v.Active = false
			s.versions[id] = v
		}
	}
}
