package orders

import (
	"context"
	"sync"

	"graphtrust/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{orders: make(map[string]Order)}
}

func (s *InMemoryStore) Save(_ context.Context, order Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, orderID string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &o, nil
}
