package scoring

import (
	"cmp"
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"graphtrust/internal/graph"
	"graphtrust/internal/model"
	"graphtrust/pkg/requestcontext"
)

// RiskDashboard scores every account in the graph and summarizes the
// result. High-risk rows are accounts in the High tier, flagged accounts, and
// accounts with a flagged or shared-device link.
func (s *Service) RiskDashboard(ctx context.Context) (*Dashboard, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDashboard(time.Since(start)) }()

	accounts := s.accounts()
	assessments := make([]*Assessment, len(accounts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.dashboardConcurrency)
	for i, userID := range accounts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			assessments[i] = s.score(gctx, userID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		TierCounts:  make(map[Tier]int, len(Tiers)),
		Graph:       s.graph.Stats(),
		ActiveModel: s.activeModel(ctx),
		GeneratedAt: requestcontext.Now(ctx),
	}
	for _, t := range Tiers {
		d.TierCounts[t] = 0
	}

	scores := make([]float64, 0, len(assessments))
	for _, a := range assessments {
		scores = append(scores, a.Score)
		d.TierCounts[a.Tier]++
		if reasons := s.reasons(a); len(reasons) > 0 {
			d.HighRiskUsers = append(d.HighRiskUsers, RiskyUser{
				UserID:   a.UserID,
				Score:    a.Score,
				Tier:     a.Tier,
				Features: a.Features,
				Reasons:  reasons,
			})
		}
	}
	slices.SortFunc(d.HighRiskUsers, func(a, b RiskyUser) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})

	d.Stats = DashboardStats{Users: len(scores), SafeUsers: d.TierCounts[TierLow]}
	switch len(scores) {
	case 0:
	case 1:
		d.Stats.MeanScore = scores[0]
	default:
		mean, std := stat.MeanStdDev(scores, nil)
		d.Stats.MeanScore = model.Round2(mean)
		d.Stats.StdDevScore = model.Round2(std)
	}

	s.logger.InfoContext(ctx, "risk dashboard computed",
		"request_id", requestcontext.RequestID(ctx),
		"users", d.Stats.Users,
		"high_risk", len(d.HighRiskUsers),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return d, nil
}

// accounts lists every user id in the graph, flagged accounts included.
func (s *Service) accounts() []string {
	var ids []string
	for _, kind := range []graph.Kind{graph.KindUser, graph.KindFlaggedActor} {
		for _, id := range s.graph.NodesOfKind(kind) {
			if userID, ok := graph.UserIDOf(id); ok {
				ids = append(ids, userID)
			}
		}
	}
	slices.Sort(ids)
	return ids
}

func (s *Service) reasons(a *Assessment) []string {
	var reasons []string
	if kind, ok := s.graph.Kind(graph.UserNode(a.UserID)); ok && kind == graph.KindFlaggedActor {
		reasons = append(reasons, ReasonFlaggedAccount)
	}
	if a.Features.FlaggedLinks > 0 {
		reasons = append(reasons, ReasonFlaggedLink)
	}
	if s.sharesDevice(a.UserID) {
		reasons = append(reasons, ReasonSharedDevice)
	}
	if a.Tier == TierHigh {
		reasons = append(reasons, ReasonLowScore)
	}
	return reasons
}

// sharesDevice reports whether any of the user's devices is linked to
// another account.
func (s *Service) sharesDevice(userID string) bool {
	neighbors, _ := s.graph.Neighborhood(graph.UserNode(userID))
	for _, nb := range neighbors {
		if nb.Kind == graph.KindDevice && s.graph.Degree(nb.ID) > 1 {
			return true
		}
	}
	return false
}
