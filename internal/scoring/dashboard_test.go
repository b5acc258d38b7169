package scoring

import (
	"context"

	"graphtrust/internal/graph"
	"graphtrust/pkg/requestcontext"
)

func (s *ScoringServiceSuite) TestRiskDashboardEmpty() {
	d, err := s.service.RiskDashboard(s.ctx)
	s.Require().NoError(err)
	s.Empty(d.HighRiskUsers)
	s.Equal(0, d.Stats.Users)
	s.Equal(0, d.TierCounts[TierHigh])
	s.Nil(d.ActiveModel)
	s.Equal(s.now, d.GeneratedAt)
}

func (s *ScoringServiceSuite) TestRiskDashboard() {
	version := s.train()

	// Two accounts sharing a device, one linked to a banned actor, one flagged.
	ua := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	shared := contextWithUA(s.ctx, ua)
	for _, id := range []string{"10", "11"} {
		_, err := s.service.OnKYCSubmitted(shared, KYCEvent{UserID: id})
		s.Require().NoError(err)
	}
	for _, id := range []string{"20", "21"} {
		_, err := s.service.OnKYCSubmitted(s.ctx, KYCEvent{UserID: id})
		s.Require().NoError(err)
	}
	s.Require().NoError(s.service.LinkFlaggedActor(s.ctx, "20", "banned-1"))
	s.Require().NoError(s.service.LinkFlaggedActor(s.ctx, "20", "banned-2"))
	s.Require().NoError(s.service.FlagActor(s.ctx, "30", "chargebacks"))

	d, err := s.service.RiskDashboard(s.ctx)
	s.Require().NoError(err)

	s.Equal(5, d.Stats.Users)
	total := 0
	for _, n := range d.TierCounts {
		total += n
	}
	s.Equal(5, total)
	s.Equal(d.TierCounts[TierLow], d.Stats.SafeUsers)
	s.Require().NotNil(d.ActiveModel)
	s.Equal(version.ID, d.ActiveModel.ID)
	s.Equal(s.graph.Stats(), d.Graph)

	rows := map[string]RiskyUser{}
	for _, u := range d.HighRiskUsers {
		rows[u.UserID] = u
	}
	s.NotContains(rows, "21")
	s.Contains(rows["10"].Reasons, ReasonSharedDevice)
	s.Contains(rows["11"].Reasons, ReasonSharedDevice)
	s.Contains(rows["20"].Reasons, ReasonFlaggedLink)
	s.Contains(rows["30"].Reasons, ReasonFlaggedAccount)

	for i := 1; i < len(d.HighRiskUsers); i++ {
		s.LessOrEqual(d.HighRiskUsers[i-1].Score, d.HighRiskUsers[i].Score)
	}
	s.Greater(d.Stats.MeanScore, 0.0)
	s.Greater(d.Stats.StdDevScore, 0.0)
}

func (s *ScoringServiceSuite) TestRiskDashboardCancelled() {
	for _, id := range []string{"1", "2", "3"} {
		s.graph.AddNode(graph.User(id))
	}
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.service.RiskDashboard(ctx)
	s.ErrorIs(err, context.Canceled)
}

func contextWithUA(ctx context.Context, ua string) context.Context {
	return requestcontext.WithClientMetadata(ctx, "192.168.1.20", ua)
}
