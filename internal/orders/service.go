package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	dErrors "graphtrust/pkg/domain-errors"
	"graphtrust/pkg/platform/sentinel"
	"graphtrust/pkg/requestcontext"
)

// Service records order status updates.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("order store is required")
	}
	s := &Service{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Upsert records the latest state of an order. The buyer of an existing
// order cannot change.
func (s *Service) Upsert(ctx context.Context, order Order) (*Order, error) {
	order.ID = strings.TrimSpace(order.ID)
	order.BuyerID = strings.TrimSpace(order.BuyerID)
	order.SellerID = strings.TrimSpace(order.SellerID)
	if order.ID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "order_id is required")
	}
	if order.BuyerID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "buyer_id is required")
	}

	existing, err := s.store.FindByID(ctx, order.ID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load order")
	case existing.BuyerID != order.BuyerID:
		return nil, dErrors.New(dErrors.CodeConflict, "order belongs to a different buyer")
	}

	order.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Save(ctx, order); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save order")
	}
	s.logger.InfoContext(ctx, "order updated",
		"request_id", requestcontext.RequestID(ctx),
		"order_id", order.ID,
		"status", order.Status,
	)
	return &order, nil
}

// Find returns an order or sentinel.ErrNotFound.
func (s *Service) Find(ctx context.Context, orderID string) (*Order, error) {
	return s.store.FindByID(ctx, orderID)
}
