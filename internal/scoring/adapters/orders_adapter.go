package adapters

import (
	"context"

	"graphtrust/internal/orders"
	"graphtrust/internal/scoring/ports"
)

// OrderFinder is the orders service as the adapter uses it.
type OrderFinder interface {
	Find(ctx context.Context, orderID string) (*orders.Order, error)
}

// OrdersAdapter exposes the orders module through the scoring OrderLookup port.
type OrdersAdapter struct {
	orders OrderFinder
}

func NewOrdersAdapter(orders OrderFinder) *OrdersAdapter {
	return &OrdersAdapter{orders: orders}
}

func (a *OrdersAdapter) FindOrder(ctx context.Context, orderID string) (*ports.Order, error) {
	o, err := a.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &ports.Order{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		SellerID:  o.SellerID,
		Delivered: o.Delivered(),
	}, nil
}
