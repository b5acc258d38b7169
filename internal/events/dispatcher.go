// Package events applies marketplace events delivered over Kafka to the
// scoring and order services.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"graphtrust/internal/events/kafka"
	"graphtrust/internal/orders"
	"graphtrust/internal/platform/metrics"
	"graphtrust/internal/scoring"
	dErrors "graphtrust/pkg/domain-errors"
	"graphtrust/pkg/platform/httputil"
	"graphtrust/pkg/requestcontext"
)

// Event types carried in the envelope's "type" field.
const (
	TypeSignup          = "signup"
	TypeKYCSubmitted    = "kyc_submitted"
	TypeReviewSubmitted = "review_submitted"
	TypeOrderUpdated    = "order_updated"
	TypeActorFlagged    = "actor_flagged"
)

// KnownType reports whether the dispatcher routes events of type t.
func KnownType(t string) bool {
	switch t {
	case TypeSignup, TypeKYCSubmitted, TypeReviewSubmitted, TypeOrderUpdated, TypeActorFlagged:
		return true
	}
	return false
}

// Results recorded per event.
const (
	resultProcessed = "processed"
	resultRejected  = "rejected"
	resultMalformed = "malformed"
	resultUnknown   = "unknown"
	resultFailed    = "failed"
)

// ScoringEvents is the part of the scoring service fed by the stream.
type ScoringEvents interface {
	OnSignup(ctx context.Context, ev scoring.SignupEvent) error
	OnKYCSubmitted(ctx context.Context, ev scoring.KYCEvent) (*scoring.KYCResult, error)
	OnReviewSubmitted(ctx context.Context, ev scoring.ReviewEvent) error
	FlagActor(ctx context.Context, userID, reason string) error
}

// OrderEvents records order state.
type OrderEvents interface {
	Upsert(ctx context.Context, order orders.Order) (*orders.Order, error)
}

// envelope is the common header of every event.
type envelope struct {
	Type       string     `json:"type"`
	RequestID  string     `json:"request_id"`
	OccurredAt *time.Time `json:"occurred_at"`
}

type signupPayload struct {
	UserID   httputil.ID `json:"user_id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	UserType string      `json:"user_type"`
}

type kycPayload struct {
	UserID    httputil.ID `json:"user_id"`
	DocURL    string      `json:"doc_url"`
	SelfieURL string      `json:"selfie_url"`
	IP        string      `json:"ip"`
	UserAgent string      `json:"user_agent"`
}

type reviewPayload struct {
	BuyerID   httputil.ID `json:"buyer_id"`
	SellerID  httputil.ID `json:"seller_id"`
	ProductID httputil.ID `json:"product_id"`
	OrderID   httputil.ID `json:"order_item_id"`
	Rating    float64     `json:"rating"`
	Comment   string      `json:"comment"`
}

type orderPayload struct {
	OrderID  httputil.ID `json:"order_id"`
	BuyerID  httputil.ID `json:"buyer_id"`
	SellerID httputil.ID `json:"seller_id"`
	Status   string      `json:"status"`
}

type flagPayload struct {
	UserID httputil.ID `json:"user_id"`
	Reason string      `json:"reason"`
}

// Dispatcher decodes envelopes and routes them by type. Unknown, malformed and
// rejected events are logged, counted and skipped; only infrastructure
// failures are returned.
type Dispatcher struct {
	scoring ScoringEvents
	orders  OrderEvents
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func NewDispatcher(scoringEvents ScoringEvents, orderEvents OrderEvents, opts ...Option) (*Dispatcher, error) {
	if scoringEvents == nil {
		return nil, errors.New("scoring service is required")
	}
	if orderEvents == nil {
		return nil, errors.New("order service is required")
	}
	d := &Dispatcher{
		scoring: scoringEvents,
		orders:  orderEvents,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

var _ kafka.Handler = (*Dispatcher)(nil)

// Handle implements kafka.Handler.
func (d *Dispatcher) Handle(ctx context.Context, msg *kafka.Message) error {
	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		d.skip(ctx, msg, "", resultMalformed, err)
		return nil
	}

	requestID := env.RequestID
	if requestID == "" {
		requestID = fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	}
	ctx = requestcontext.WithRequestID(ctx, requestID)
	if env.OccurredAt != nil {
		ctx = requestcontext.WithTime(ctx, *env.OccurredAt)
	}

	var err error
	switch env.Type {
	case TypeSignup:
		err = d.signup(ctx, msg.Value)
	case TypeKYCSubmitted:
		err = d.kyc(ctx, msg.Value)
	case TypeReviewSubmitted:
		err = d.review(ctx, msg.Value)
	case TypeOrderUpdated:
		err = d.order(ctx, msg.Value)
	case TypeActorFlagged:
		err = d.flag(ctx, msg.Value)
	default:
		d.skip(ctx, msg, "", resultUnknown, fmt.Errorf("unknown event type %q", env.Type))
		return nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		d.metrics.IncrementEvent(env.Type, resultProcessed)
		return nil
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, errMalformed):
		d.skip(ctx, msg, env.Type, resultMalformed, err)
		return nil
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		d.skip(ctx, msg, env.Type, resultRejected, err)
		return nil
	default:
		d.metrics.IncrementEvent(env.Type, resultFailed)
		return fmt.Errorf("apply %s event: %w", env.Type, err)
	}
}

var errMalformed = errors.New("malformed event payload")

func (d *Dispatcher) signup(ctx context.Context, raw []byte) error {
	var p signupPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.Join(errMalformed, err)
	}
	return d.scoring.OnSignup(ctx, scoring.SignupEvent{
		UserID:   p.UserID.String(),
		Name:     p.Name,
		Email:    p.Email,
		UserType: p.UserType,
	})
}

func (d *Dispatcher) kyc(ctx context.Context, raw []byte) error {
	var p kycPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.Join(errMalformed, err)
	}
	ctx = requestcontext.WithClientMetadata(ctx, p.IP, p.UserAgent)
	_, err := d.scoring.OnKYCSubmitted(ctx, scoring.KYCEvent{
		UserID:    p.UserID.String(),
		DocURL:    p.DocURL,
		SelfieURL: p.SelfieURL,
	})
	return err
}

func (d *Dispatcher) review(ctx context.Context, raw []byte) error {
	var p reviewPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.Join(errMalformed, err)
	}
	return d.scoring.OnReviewSubmitted(ctx, scoring.ReviewEvent{
		BuyerID:   p.BuyerID.String(),
		SellerID:  p.SellerID.String(),
		ProductID: p.ProductID.String(),
		OrderID:   p.OrderID.String(),
		Rating:    p.Rating,
		Comment:   p.Comment,
	})
}

func (d *Dispatcher) order(ctx context.Context, raw []byte) error {
	var p orderPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.Join(errMalformed, err)
	}
	status, err := orders.ParseStatus(p.Status)
	if err != nil {
		return err
	}
	_, err = d.orders.Upsert(ctx, orders.Order{
		ID:       p.OrderID.String(),
		BuyerID:  p.BuyerID.String(),
		SellerID: p.SellerID.String(),
		Status:   status,
	})
	return err
}

func (d *Dispatcher) flag(ctx context.Context, raw []byte) error {
	var p flagPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.Join(errMalformed, err)
	}
	return d.scoring.FlagActor(ctx, p.UserID.String(), p.Reason)
}

func (d *Dispatcher) skip(ctx context.Context, msg *kafka.Message, eventType, result string, err error) {
	if eventType == "" {
		eventType = resultUnknown
	}
	d.metrics.IncrementEvent(eventType, result)
	d.logger.WarnContext(ctx, "skipping event",
		"request_id", requestcontext.RequestID(ctx),
		"type", eventType,
		"result", result,
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"error", err,
	)
}
