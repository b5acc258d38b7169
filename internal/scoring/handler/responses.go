package handler

import (
	"time"

	"graphtrust/internal/features"
	"graphtrust/internal/graph"
	"graphtrust/internal/model"
	"graphtrust/internal/scoring"
)

// StatusResponse acknowledges an accepted event.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FeaturesResponse names the feature vector components.
type FeaturesResponse struct {
	TotalConnections int `json:"total_connections"`
	DeviceLinks      int `json:"device_links"`
	FlaggedLinks     int `json:"flagged_links"`
}

func fromFeatures(v features.Vector) FeaturesResponse {
	return FeaturesResponse{TotalConnections: v.Degree, DeviceLinks: v.DeviceLinks, FlaggedLinks: v.FlaggedLinks}
}

// TrustScoreResponse is returned by GET /users/{userID}/trust-score.
type TrustScoreResponse struct {
	UserID       string           `json:"user_id"`
	TrustScore   float64          `json:"trust_score"`
	RiskTier     string           `json:"risk_tier"`
	Source       string           `json:"source"`
	ModelVersion string           `json:"model_version,omitempty"`
	Features     FeaturesResponse `json:"features"`
	EvaluatedAt  time.Time        `json:"evaluated_at"`
}

func fromAssessment(a *scoring.Assessment) TrustScoreResponse {
	resp := TrustScoreResponse{
		UserID:      a.UserID,
		TrustScore:  a.Score,
		RiskTier:    string(a.Tier),
		Source:      string(a.Source),
		Features:    fromFeatures(a.Features),
		EvaluatedAt: a.EvaluatedAt,
	}
	if a.Source == model.SourceModel {
		resp.ModelVersion = a.ModelVersion.String()
	}
	return resp
}

// RiskTierResponse is returned by GET /users/{userID}/risk-tier.
type RiskTierResponse struct {
	UserID   string `json:"user_id"`
	RiskTier string `json:"risk_tier"`
}

// KYCResponse keeps the field names marketplace clients already read.
type KYCResponse struct {
	KYCStatus  string  `json:"kyc_status"`
	TrustScore float64 `json:"trust_score"`
	RiskTier   string  `json:"risk_tier"`
	Message    string  `json:"message"`
}

func fromKYCResult(r *scoring.KYCResult) KYCResponse {
	return KYCResponse{
		KYCStatus:  string(r.Status),
		TrustScore: r.Assessment.Score,
		RiskTier:   string(r.Assessment.Tier),
		Message:    r.Message,
	}
}

// ModelResponse describes one model version.
type ModelResponse struct {
	VersionID   string    `json:"version_id"`
	CreatedAt   time.Time `json:"created_at"`
	SampleCount int       `json:"sample_count"`
	Seed        uint64    `json:"seed"`
	Trees       int       `json:"trees"`
	Checksum    string    `json:"checksum"`
	Active      bool      `json:"active"`
}

func fromVersion(v *model.Version) *ModelResponse {
	if v == nil {
		return nil
	}
	return &ModelResponse{
		VersionID:   v.ID.String(),
		CreatedAt:   v.CreatedAt,
		SampleCount: v.SampleCount,
		Seed:        v.Seed,
		Trees:       v.Trees,
		Checksum:    v.Checksum,
		Active:      v.Active,
	}
}

// TrainResponse is returned by POST /admin/train-model.
type TrainResponse struct {
	Message string         `json:"message"`
	Model   *ModelResponse `json:"model"`
}

// ModelsResponse is returned by GET /admin/models.
type ModelsResponse struct {
	Models []ModelResponse `json:"models"`
}

// RiskyUserResponse is one dashboard row.
type RiskyUserResponse struct {
	UserID     string           `json:"user_id"`
	TrustScore float64          `json:"trust_score"`
	RiskLevel  string           `json:"risk_level"`
	Reason     string           `json:"reason"`
	Reasons    []string         `json:"reasons"`
	Features   FeaturesResponse `json:"features"`
}

// DashboardResponse is returned by GET /admin/risk-dashboard.
type DashboardResponse struct {
	HighRiskUsers []RiskyUserResponse `json:"high_risk_users"`
	Stats         DashboardStats      `json:"stats"`
	Graph         GraphStats          `json:"graph"`
	ActiveModel   *ModelResponse      `json:"active_model"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

type DashboardStats struct {
	Users            int            `json:"users"`
	SafeUsers        int            `json:"safe_users"`
	AvgTrustScore    float64        `json:"avg_trust_score"`
	StdDevTrustScore float64        `json:"stddev_trust_score"`
	TierCounts       map[string]int `json:"tier_counts"`
}

type GraphStats struct {
	Nodes       int            `json:"nodes"`
	Edges       int            `json:"edges"`
	NodesByKind map[string]int `json:"nodes_by_kind"`
}

func fromGraphStats(st graph.Stats) GraphStats {
	byKind := make(map[string]int, len(st.NodesByKind))
	for k, n := range st.NodesByKind {
		byKind[string(k)] = n
	}
	return GraphStats{Nodes: st.Nodes, Edges: st.Edges, NodesByKind: byKind}
}

func fromDashboard(d *scoring.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		HighRiskUsers: make([]RiskyUserResponse, 0, len(d.HighRiskUsers)),
		Stats: DashboardStats{
			Users:            d.Stats.Users,
			SafeUsers:        d.Stats.SafeUsers,
			AvgTrustScore:    d.Stats.MeanScore,
			StdDevTrustScore: d.Stats.StdDevScore,
			TierCounts:       make(map[string]int, len(d.TierCounts)),
		},
		Graph:       fromGraphStats(d.Graph),
		ActiveModel: fromVersion(d.ActiveModel),
		GeneratedAt: d.GeneratedAt,
	}
	for t, n := range d.TierCounts {
		resp.Stats.TierCounts[string(t)] = n
	}
	for _, u := range d.HighRiskUsers {
		resp.HighRiskUsers = append(resp.HighRiskUsers, RiskyUserResponse{
			UserID:     u.UserID,
			TrustScore: u.Score,
			RiskLevel:  string(u.Tier),
			Reason:     u.Reasons[0],
			Reasons:    u.Reasons,
			Features:   fromFeatures(u.Features),
		})
	}
	return resp
}
