// Package scoring turns marketplace events into graph mutations and graph
// neighborhoods into trust scores and risk tiers.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"graphtrust/internal/device"
	"graphtrust/internal/features"
	"graphtrust/internal/graph"
	"graphtrust/internal/model"
	platformmetrics "graphtrust/internal/platform/metrics"
	"graphtrust/internal/scoring/metrics"
	"graphtrust/internal/scoring/ports"
	dErrors "graphtrust/pkg/domain-errors"
	"graphtrust/pkg/platform/sentinel"
	"graphtrust/pkg/requestcontext"
)

// Graph is the relationship graph as the service uses it.
type Graph interface {
	features.Graph
	AddNode(ref graph.Ref)
	AddEdge(a, b graph.Ref, tag graph.Tag)
	MarkFlagged(id graph.NodeID)
	Kind(id graph.NodeID) (graph.Kind, bool)
	Degree(id graph.NodeID) int
	NodesOfKind(kind graph.Kind) []graph.NodeID
	Stats() graph.Stats
}

// Predictor maps a feature vector to a raw score. It never fails.
type Predictor interface {
	Predict(ctx context.Context, v features.Vector) model.Prediction
}

// Trainer fits and publishes a new model version.
type Trainer interface {
	Train(ctx context.Context, opts model.TrainOptions) (*model.Version, error)
}

const defaultDashboardConcurrency = 8

// Service is the scoring orchestrator. Graph writes are applied before any
// score that depends on them is computed.
type Service struct {
	graph      Graph
	predictor  Predictor
	trainer    Trainer
	registry   model.Registry
	orders     ports.OrderLookup
	devices    *device.Service
	thresholds Thresholds

	trainDefaults        model.TrainOptions
	dashboardConcurrency int

	logger          *slog.Logger
	metrics         *metrics.Metrics
	platformMetrics *platformmetrics.Metrics
	tracer          trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPlatformMetrics publishes graph size after every mutation.
func WithPlatformMetrics(m *platformmetrics.Metrics) Option {
	return func(s *Service) { s.platformMetrics = m }
}

func WithThresholds(t Thresholds) Option {
	return func(s *Service) { s.thresholds = t }
}

// WithTraining enables TrainModel, ListModels and ActivateModel.
func WithTraining(trainer Trainer, registry model.Registry) Option {
	return func(s *Service) {
		s.trainer = trainer
		s.registry = registry
	}
}

// WithTrainDefaults sets the dataset used when a train request leaves fields empty.
func WithTrainDefaults(sampleCount int, seed uint64) Option {
	return func(s *Service) {
		s.trainDefaults = model.TrainOptions{SampleCount: sampleCount, Seed: seed}
	}
}

// WithOrderLookup makes reviews require a delivered order owned by the buyer.
func WithOrderLookup(orders ports.OrderLookup) Option {
	return func(s *Service) { s.orders = orders }
}

func WithDeviceService(d *device.Service) Option {
	return func(s *Service) { s.devices = d }
}

func WithDashboardConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dashboardConcurrency = n
		}
	}
}

// NewService constructs the scoring service.
func NewService(g Graph, predictor Predictor, opts ...Option) (*Service, error) {
	if g == nil {
		return nil, fmt.Errorf("graph is required")
	}
	if predictor == nil {
		return nil, fmt.Errorf("predictor is required")
	}
	s := &Service{
		graph:                g,
		predictor:            predictor,
		devices:              device.NewService(true),
		thresholds:           DefaultThresholds(),
		trainDefaults:        model.TrainOptions{SampleCount: model.DefaultSampleCount, Seed: model.DefaultSeed},
		dashboardConcurrency: defaultDashboardConcurrency,
		logger:               slog.New(slog.DiscardHandler),
		tracer:               otel.Tracer("graphtrust/scoring"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.thresholds.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ScoreUser extracts the user's features, predicts, rounds to two decimals
// and classifies. Unknown users score on the zero vector.
func (s *Service) ScoreUser(ctx context.Context, userID string) (*Assessment, error) {
	userID, err := normalizeUserID(userID, "user_id")
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "scoring.ScoreUser", trace.WithAttributes(
		attribute.String("user_id", userID),
	))
	defer span.End()

	a := s.score(ctx, userID)
	span.SetAttributes(
		attribute.Float64("score", a.Score),
		attribute.String("tier", string(a.Tier)),
		attribute.String("source", string(a.Source)),
	)
	return a, nil
}

func (s *Service) score(ctx context.Context, userID string) *Assessment {
	start := time.Now()
	vec := features.Extract(s.graph, userID)
	pred := s.predictor.Predict(ctx, vec)
	score := model.Round2(model.Clamp(pred.Score))
	tier := s.thresholds.Classify(score)
	s.metrics.ObserveScore(string(tier), string(pred.Source), time.Since(start))

	return &Assessment{
		UserID:       userID,
		Score:        score,
		Tier:         tier,
		Features:     vec,
		ModelVersion: pred.Version,
		Source:       pred.Source,
		EvaluatedAt:  requestcontext.Now(ctx),
	}
}

// TrustScore returns the rounded score only.
func (s *Service) TrustScore(ctx context.Context, userID string) (float64, error) {
	a, err := s.ScoreUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return a.Score, nil
}

// RiskTier returns the tier only.
func (s *Service) RiskTier(ctx context.Context, userID string) (Tier, error) {
	a, err := s.ScoreUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return a.Tier, nil
}

// OnSignup registers the account in the graph.
func (s *Service) OnSignup(ctx context.Context, ev SignupEvent) error {
	userID, err := normalizeUserID(ev.UserID, "user_id")
	if err != nil {
		return err
	}
	s.graph.AddNode(graph.User(userID))
	s.afterMutation("signup")

	s.logger.InfoContext(ctx, "user signed up",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"user_type", ev.UserType,
	)
	return nil
}

// OnKYCSubmitted links the user to the device they submitted from, then
// scores them so the new device link is reflected in the result.
func (s *Service) OnKYCSubmitted(ctx context.Context, ev KYCEvent) (*KYCResult, error) {
	userID, err := normalizeUserID(ev.UserID, "user_id")
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "scoring.OnKYCSubmitted", trace.WithAttributes(
		attribute.String("user_id", userID),
	))
	defer span.End()

	key := s.devices.Key(requestcontext.UserAgent(ctx), requestcontext.ClientIP(ctx), userID)
	s.graph.AddEdge(graph.User(userID), graph.Device(key), graph.TagDeviceLink)
	s.afterMutation("kyc_submitted")

	// Document checks are not modeled; every submission passes.
	a := s.score(ctx, userID)
	span.SetAttributes(attribute.Float64("score", a.Score))

	s.logger.InfoContext(ctx, "kyc processed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"device_key", key,
		"trust_score", a.Score,
		"tier", a.Tier,
		"source", a.Source,
	)
	return &KYCResult{Status: KYCVerified, Assessment: a, Message: "Documents processed."}, nil
}

// OnReviewSubmitted validates the review and records a review edge between
// buyer and seller. Repeat reviews between the same pair keep one edge.
func (s *Service) OnReviewSubmitted(ctx context.Context, ev ReviewEvent) error {
	if err := s.validateReview(ctx, &ev); err != nil {
		s.logger.WarnContext(ctx, "review rejected",
			"request_id", requestcontext.RequestID(ctx),
			"buyer_id", ev.BuyerID,
			"seller_id", ev.SellerID,
			"order_id", ev.OrderID,
			"error", err,
		)
		return err
	}

	s.graph.AddEdge(graph.User(ev.BuyerID), graph.User(ev.SellerID), graph.TagReview)
	s.afterMutation("review_submitted")

	s.logger.InfoContext(ctx, "review recorded",
		"request_id", requestcontext.RequestID(ctx),
		"buyer_id", ev.BuyerID,
		"seller_id", ev.SellerID,
		"rating", ev.Rating,
	)
	return nil
}

func (s *Service) validateReview(ctx context.Context, ev *ReviewEvent) error {
	var err error
	if ev.BuyerID, err = normalizeUserID(ev.BuyerID, "buyer_id"); err != nil {
		s.metrics.IncrementReviewRejected("invalid_input")
		return err
	}
	if ev.SellerID, err = normalizeUserID(ev.SellerID, "seller_id"); err != nil {
		s.metrics.IncrementReviewRejected("invalid_input")
		return err
	}
	if ev.BuyerID == ev.SellerID {
		s.metrics.IncrementReviewRejected("self_review")
		return dErrors.New(dErrors.CodeValidation, "buyer and seller must differ")
	}
	if !validRating(ev.Rating) {
		s.metrics.IncrementReviewRejected("rating")
		return dErrors.New(dErrors.CodeValidation, "rating must be between 1 and 5 in steps of 0.5")
	}

	if s.orders == nil {
		return nil
	}
	ev.OrderID = strings.TrimSpace(ev.OrderID)
	if ev.OrderID == "" {
		s.metrics.IncrementReviewRejected("missing_order")
		return dErrors.New(dErrors.CodeValidation, "order_id is required")
	}
	order, err := s.orders.FindOrder(ctx, ev.OrderID)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncrementReviewRejected("missing_order")
		return dErrors.New(dErrors.CodeValidation, "order not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up order")
	}
	if order.BuyerID != ev.BuyerID {
		s.metrics.IncrementReviewRejected("not_owner")
		return dErrors.New(dErrors.CodeForbidden, "order does not belong to buyer")
	}
	if order.SellerID != "" && order.SellerID != ev.SellerID {
		s.metrics.IncrementReviewRejected("seller_mismatch")
		return dErrors.New(dErrors.CodeValidation, "seller does not match order")
	}
	if !order.Delivered {
		s.metrics.IncrementReviewRejected("not_delivered")
		return dErrors.New(dErrors.CodeForbidden, "reviews can only be submitted for delivered orders")
	}
	return nil
}

func validRating(r float64) bool {
	if math.IsNaN(r) || r < MinRating || r > MaxRating {
		return false
	}
	steps := r / RatingStep
	return steps == math.Trunc(steps)
}

// FlagActor marks an account as a known bad actor. Every account linked to
// it then counts the link as a flagged link.
func (s *Service) FlagActor(ctx context.Context, userID, reason string) error {
	userID, err := normalizeUserID(userID, "user_id")
	if err != nil {
		return err
	}
	s.graph.MarkFlagged(graph.UserNode(userID))
	s.afterMutation("actor_flagged")

	s.logger.WarnContext(ctx, "account flagged",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"reason", reason,
	)
	return nil
}

// LinkFlaggedActor connects a user to an external flagged actor, such as a
// banned account known only by an identifier.
func (s *Service) LinkFlaggedActor(ctx context.Context, userID, actorID string) error {
	userID, err := normalizeUserID(userID, "user_id")
	if err != nil {
		return err
	}
	actorID, err = normalizeUserID(actorID, "actor_id")
	if err != nil {
		return err
	}
	s.graph.AddEdge(graph.User(userID), graph.FlaggedActor(actorID), graph.TagFlaggedLink)
	s.afterMutation("flagged_link")

	s.logger.InfoContext(ctx, "flagged actor linked",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"actor_id", actorID,
	)
	return nil
}

func (s *Service) afterMutation(eventType string) {
	s.metrics.IncrementGraphEvent(eventType)
	if s.platformMetrics != nil {
		st := s.graph.Stats()
		s.platformMetrics.SetGraphSize(st.Nodes, st.Edges)
	}
}

const maxIDLength = 128

func normalizeUserID(raw, field string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	if len(id) > maxIDLength {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be at most %d characters", field, maxIDLength))
	}
	return id, nil
}
