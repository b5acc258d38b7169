package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"graphtrust/internal/orders"
	dErrors "graphtrust/pkg/domain-errors"
	"graphtrust/pkg/platform/httputil"
	"graphtrust/pkg/requestcontext"
)

// Service defines the order operations exposed over HTTP.
type Service interface {
	Upsert(ctx context.Context, order orders.Order) (*orders.Order, error)
}

// Handler wires order endpoints to the orders service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts order endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Put("/orders/{orderID}", h.HandleUpsertOrder)
}

// UpsertOrderRequest is the body of PUT /orders/{orderID}.
type UpsertOrderRequest struct {
	BuyerID  httputil.ID `json:"buyer_id"`
	SellerID httputil.ID `json:"seller_id"`
	Status   string      `json:"status"`

	parsedStatus orders.Status
}

func (r *UpsertOrderRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.BuyerID == "" {
		return dErrors.New(dErrors.CodeValidation, "buyer_id is required")
	}
	status, err := orders.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	r.parsedStatus = status
	return nil
}

// OrderResponse is the order as returned over HTTP.
type OrderResponse struct {
	OrderID   string    `json:"order_id"`
	BuyerID   string    `json:"buyer_id"`
	SellerID  string    `json:"seller_id,omitempty"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HandleUpsertOrder handles PUT /orders/{orderID}.
func (h *Handler) HandleUpsertOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpsertOrderRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	order, err := h.service.Upsert(ctx, orders.Order{
		ID:       chi.URLParam(r, "orderID"),
		BuyerID:  req.BuyerID.String(),
		SellerID: req.SellerID.String(),
		Status:   req.parsedStatus,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "order update failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, OrderResponse{
		OrderID:   order.ID,
		BuyerID:   order.BuyerID,
		SellerID:  order.SellerID,
		Status:    string(order.Status),
		UpdatedAt: order.UpdatedAt,
	})
}
