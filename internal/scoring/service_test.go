package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"graphtrust/internal/device"
	"graphtrust/internal/features"
	"graphtrust/internal/graph"
	"graphtrust/internal/model"
	"graphtrust/internal/model/store"
	"graphtrust/internal/scoring/ports"
	dErrors "graphtrust/pkg/domain-errors"
	"graphtrust/pkg/platform/sentinel"
	"graphtrust/pkg/requestcontext"
)

type fakeOrders map[string]ports.Order

func (f fakeOrders) FindOrder(_ context.Context, orderID string) (*ports.Order, error) {
	if orderID == "broken" {
		return nil, errors.New("connection reset")
	}
	o, ok := f[orderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &o, nil
}

type ScoringServiceSuite struct {
	suite.Suite
	ctx      context.Context
	graph    *graph.Store
	registry *store.InMemoryRegistry
	service  *Service
	now      time.Time
}

func TestScoringServiceSuite(t *testing.T) {
	suite.Run(t, new(ScoringServiceSuite))
}

func (s *ScoringServiceSuite) SetupTest() {
	s.now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.graph = graph.NewStore()
	s.registry = store.NewInMemory()

	trainer, err := model.NewTrainer(s.registry, model.WithForestConfig(model.ForestConfig{Trees: 25}))
	s.Require().NoError(err)
	predictor, err := model.NewPredictor(s.registry)
	s.Require().NoError(err)

	s.service, err = NewService(s.graph, predictor,
		WithTraining(trainer, s.registry),
		WithOrderLookup(fakeOrders{
			"delivered": {ID: "delivered", BuyerID: "1", SellerID: "2", Delivered: true},
			"shipped":   {ID: "shipped", BuyerID: "1", SellerID: "2"},
			"other":     {ID: "other", BuyerID: "9", SellerID: "2", Delivered: true},
		}),
	)
	s.Require().NoError(err)
}

func (s *ScoringServiceSuite) train() *model.Version {
	seed := uint64(model.DefaultSeed)
	v, err := s.service.TrainModel(s.ctx, TrainRequest{Seed: &seed})
	s.Require().NoError(err)
	return v
}

func (s *ScoringServiceSuite) TestNewService() {
	_, err := NewService(nil, nil)
	s.Error(err)

	predictor, err := model.NewPredictor(s.registry)
	s.Require().NoError(err)
	_, err = NewService(s.graph, predictor, WithThresholds(Thresholds{HighBelow: 3, MediumBelow: 2}))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ScoringServiceSuite) TestScoreUserUntrained() {
	a, err := s.service.ScoreUser(s.ctx, "42")
	s.Require().NoError(err)
	s.Equal(model.DefaultScore, a.Score)
	s.Equal(TierMedium, a.Tier)
	s.Equal(model.SourceDefault, a.Source)
	s.Equal(uuid.Nil, a.ModelVersion)
	s.True(a.Features.IsZero())
	s.Equal(s.now, a.EvaluatedAt)
	s.False(s.graph.Has(graph.UserNode("42")), "scoring must not mutate the graph")
}

func (s *ScoringServiceSuite) TestScoreUserRejectsBlankID() {
	_, err := s.service.ScoreUser(s.ctx, "  ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ScoringServiceSuite) TestKYCThenTrainedScore() {
	result, err := s.service.OnKYCSubmitted(s.ctx, KYCEvent{UserID: "42"})
	s.Require().NoError(err)
	s.Equal(KYCVerified, result.Status)
	s.Equal(model.DefaultScore, result.Assessment.Score)
	s.Equal(features.Vector{Degree: 1, DeviceLinks: 1}, result.Assessment.Features)
	s.True(s.graph.Has(graph.DeviceNode("ip-42")))

	version := s.train()

	a, err := s.service.ScoreUser(s.ctx, "42")
	s.Require().NoError(err)
	s.Equal(features.Vector{Degree: 1, DeviceLinks: 1}, a.Features)
	s.Equal(model.SourceModel, a.Source)
	s.Equal(version.ID, a.ModelVersion)
	s.NotEqual(model.DefaultScore, a.Score)
	s.GreaterOrEqual(a.Score, model.MinScore)
	s.LessOrEqual(a.Score, model.MaxScore)
	s.Equal(a.Score, model.Round2(a.Score))
}

func (s *ScoringServiceSuite) TestKYCUsesDeviceFingerprint() {
	ua := "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	ctx := requestcontext.WithClientMetadata(s.ctx, "10.0.0.5", ua)

	_, err := s.service.OnKYCSubmitted(ctx, KYCEvent{UserID: "1"})
	s.Require().NoError(err)
	_, err = s.service.OnKYCSubmitted(ctx, KYCEvent{UserID: "2"})
	s.Require().NoError(err)

	key := device.NewService(true).Key(ua, "10.0.0.5", "1")
	s.Equal(2, s.graph.Degree(graph.DeviceNode(key)))
}

func (s *ScoringServiceSuite) TestKYCIsIdempotentPerDevice() {
	for range 3 {
		_, err := s.service.OnKYCSubmitted(s.ctx, KYCEvent{UserID: "5"})
		s.Require().NoError(err)
	}
	s.Equal(1, s.graph.Degree(graph.UserNode("5")))
}

func (s *ScoringServiceSuite) TestOnSignup() {
	s.Require().NoError(s.service.OnSignup(s.ctx, SignupEvent{UserID: "7", Name: "Grace"}))
	kind, ok := s.graph.Kind(graph.UserNode("7"))
	s.True(ok)
	s.Equal(graph.KindUser, kind)

	err := s.service.OnSignup(s.ctx, SignupEvent{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ScoringServiceSuite) TestOnReviewSubmitted() {
	valid := ReviewEvent{BuyerID: "1", SellerID: "2", OrderID: "delivered", Rating: 4.5}

	s.Run("delivered order adds review edge", func() {
		s.Require().NoError(s.service.OnReviewSubmitted(s.ctx, valid))
		s.Require().NoError(s.service.OnReviewSubmitted(s.ctx, valid))
		s.Equal([]graph.NodeID{graph.UserNode("2")}, s.graph.Neighbors(graph.UserNode("1")))
	})

	tests := []struct {
		name string
		mut  func(*ReviewEvent)
		code dErrors.Code
	}{
		{"rating too low", func(e *ReviewEvent) { e.Rating = 0.5 }, dErrors.CodeValidation},
		{"rating too high", func(e *ReviewEvent) { e.Rating = 5.5 }, dErrors.CodeValidation},
		{"rating off step", func(e *ReviewEvent) { e.Rating = 3.3 }, dErrors.CodeValidation},
		{"self review", func(e *ReviewEvent) { e.SellerID = "1" }, dErrors.CodeValidation},
		{"missing buyer", func(e *ReviewEvent) { e.BuyerID = "" }, dErrors.CodeValidation},
		{"missing order", func(e *ReviewEvent) { e.OrderID = "" }, dErrors.CodeValidation},
		{"unknown order", func(e *ReviewEvent) { e.OrderID = "nope" }, dErrors.CodeValidation},
		{"seller mismatch", func(e *ReviewEvent) { e.SellerID = "3" }, dErrors.CodeValidation},
		{"not delivered", func(e *ReviewEvent) { e.OrderID = "shipped" }, dErrors.CodeForbidden},
		{"not the buyer's order", func(e *ReviewEvent) { e.OrderID = "other" }, dErrors.CodeForbidden},
		{"lookup failure", func(e *ReviewEvent) { e.OrderID = "broken" }, dErrors.CodeInternal},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			ev := valid
			ev.BuyerID, ev.SellerID = "1", "2"
			tt.mut(&ev)
			before := s.graph.Stats().Edges

			err := s.service.OnReviewSubmitted(s.ctx, ev)
			s.Require().Error(err)
			s.Equal(tt.code, dErrors.CodeOf(err))
			s.Equal(before, s.graph.Stats().Edges)
		})
	}
}

func (s *ScoringServiceSuite) TestReviewWithoutOrderLookup() {
	predictor, err := model.NewPredictor(s.registry)
	s.Require().NoError(err)
	svc, err := NewService(s.graph, predictor)
	s.Require().NoError(err)

	s.Require().NoError(svc.OnReviewSubmitted(s.ctx, ReviewEvent{BuyerID: "1", SellerID: "2", Rating: 1}))
	s.Equal(1, s.graph.Degree(graph.UserNode("2")))
}

func (s *ScoringServiceSuite) TestFlaggingLowersScore() {
	s.train()
	s.Require().NoError(s.service.OnSignup(s.ctx, SignupEvent{UserID: "1"}))
	_, err := s.service.OnKYCSubmitted(s.ctx, KYCEvent{UserID: "1"})
	s.Require().NoError(err)
	s.Require().NoError(s.service.OnReviewSubmitted(s.ctx, ReviewEvent{BuyerID: "1", SellerID: "2", OrderID: "delivered", Rating: 5}))

	before, err := s.service.TrustScore(s.ctx, "1")
	s.Require().NoError(err)

	s.Require().NoError(s.service.FlagActor(s.ctx, "2", "scam reports"))
	s.Require().NoError(s.service.LinkFlaggedActor(s.ctx, "1", "banned-7"))

	a, err := s.service.ScoreUser(s.ctx, "1")
	s.Require().NoError(err)
	s.Equal(2, a.Features.FlaggedLinks)
	s.Less(a.Score, before)

	tier, err := s.service.RiskTier(s.ctx, "1")
	s.Require().NoError(err)
	s.Equal(a.Tier, tier)
}

func (s *ScoringServiceSuite) TestModelLifecycle() {
	_, err := s.service.TrainModel(s.ctx, TrainRequest{SampleCount: -5})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	first := s.train()
	second := s.train()

	versions, err := s.service.ListModels(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(versions, 2)
	s.Equal(second.ID, versions[0].ID)

	s.Require().NoError(s.service.ActivateModel(s.ctx, first.ID))
	a, err := s.service.ScoreUser(s.ctx, "1")
	s.Require().NoError(err)
	s.Equal(first.ID, a.ModelVersion)

	err = s.service.ActivateModel(s.ctx, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ScoringServiceSuite) TestTrainingNotConfigured() {
	predictor, err := model.NewPredictor(s.registry)
	s.Require().NoError(err)
	svc, err := NewService(s.graph, predictor)
	s.Require().NoError(err)

	_, err = svc.TrainModel(s.ctx, TrainRequest{})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	_, err = svc.ListModels(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ScoringServiceSuite) TestThresholds() {
	t := DefaultThresholds()
	s.Equal(TierHigh, t.Classify(0))
	s.Equal(TierHigh, t.Classify(1.99))
	s.Equal(TierMedium, t.Classify(2.0))
	s.Equal(TierMedium, t.Classify(3.49))
	s.Equal(TierLow, t.Classify(3.5))
	s.Equal(TierLow, t.Classify(5))
	s.NoError(t.Validate())
	s.Error(Thresholds{HighBelow: -1, MediumBelow: 2}.Validate())
	s.Error(Thresholds{HighBelow: 1, MediumBelow: 6}.Validate())
}
