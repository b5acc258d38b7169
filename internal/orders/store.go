package orders

import "context"

type Store interface {
	Save(ctx context.Context, order Order) error
	FindByID(ctx context.Context, orderID string) (*Order, error)
}
