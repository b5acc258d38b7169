package ports

import "context"

// Order is the slice of order state the review check needs.
type Order struct {
	ID        string
	BuyerID   string
	SellerID  string
	Delivered bool
}

// OrderLookup resolves orders for review validation.
// Implementations return sentinel.ErrNotFound for unknown orders.
type OrderLookup interface {
	FindOrder(ctx context.Context, orderID string) (*Order, error)
}
