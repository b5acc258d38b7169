// Package orders keeps the minimal order state review validation depends on.
// Orders are recorded by the marketplace; this service never creates them on
// its own.
package orders

import (
	"fmt"
	"strings"
	"time"

	dErrors "graphtrust/pkg/domain-errors"
)

// Status is an order's fulfilment state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ParseStatus accepts any casing, so "Delivered" from upstream works.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return s, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown order status %q", raw))
}

// Order is one marketplace order.
type Order struct {
	ID        string
	BuyerID   string
	SellerID  string
	Status    Status
	UpdatedAt time.Time
}

// Delivered reports whether the order may be reviewed.
func (o Order) Delivered() bool { return o.Status == StatusDelivered }
