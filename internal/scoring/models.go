package scoring

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"graphtrust/internal/features"
	"graphtrust/internal/graph"
	"graphtrust/internal/model"
	dErrors "graphtrust/pkg/domain-errors"
)

// Tier is the discrete risk classification of a trust score.
type Tier string

const (
	TierLow    Tier = "Low"
	TierMedium Tier = "Medium"
	TierHigh   Tier = "High"
)

// Tiers lists every tier from most to least risky.
var Tiers = []Tier{TierHigh, TierMedium, TierLow}

// Thresholds map a score to a tier: below HighBelow is High, below
// MediumBelow is Medium, anything else is Low.
type Thresholds struct {
	HighBelow   float64
	MediumBelow float64
}

// DefaultThresholds places the untrained default score (2.5) in Medium.
func DefaultThresholds() Thresholds {
	return Thresholds{HighBelow: 2.0, MediumBelow: 3.5}
}

// Validate rejects thresholds outside the score range or out of order.
func (t Thresholds) Validate() error {
	if t.HighBelow < model.MinScore || t.MediumBelow > model.MaxScore || t.HighBelow >= t.MediumBelow {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("invalid risk thresholds high_below=%.2f medium_below=%.2f", t.HighBelow, t.MediumBelow))
	}
	return nil
}

// Classify maps a score to its tier.
func (t Thresholds) Classify(score float64) Tier {
	switch {
	case score < t.HighBelow:
		return TierHigh
	case score < t.MediumBelow:
		return TierMedium
	default:
		return TierLow
	}
}

// Assessment is the result of scoring one user.
type Assessment struct {
	UserID       string
	Score        float64
	Tier         Tier
	Features     features.Vector
	ModelVersion uuid.UUID // uuid.Nil when the default score was used
	Source       model.Source
	EvaluatedAt  time.Time
}

// SignupEvent announces a new marketplace account.
type SignupEvent struct {
	UserID   string
	Name     string
	Email    string
	UserType string
}

// KYCEvent announces submitted identity documents.
type KYCEvent struct {
	UserID    string
	DocURL    string
	SelfieURL string
}

// KYCStatus is the document check outcome.
type KYCStatus string

const (
	KYCVerified     KYCStatus = "verified"
	KYCManualReview KYCStatus = "manual_review"
)

// KYCResult reports the document check and the post-KYC score.
type KYCResult struct {
	Status     KYCStatus
	Assessment *Assessment
	Message    string
}

// ReviewEvent is a buyer's review of a seller.
type ReviewEvent struct {
	BuyerID   string
	SellerID  string
	ProductID string
	OrderID   string
	Rating    float64
	Comment   string
}

// Review rating bounds. Ratings move in half-star steps.
const (
	MinRating  = 1.0
	MaxRating  = 5.0
	RatingStep = 0.5
)

// Dashboard reasons for listing a user as high risk.
const (
	ReasonFlaggedAccount = "account flagged"
	ReasonFlaggedLink    = "linked to flagged actor"
	ReasonSharedDevice   = "shared device cluster"
	ReasonLowScore       = "low trust score"
)

// RiskyUser is one dashboard row.
type RiskyUser struct {
	UserID   string
	Score    float64
	Tier     Tier
	Features features.Vector
	Reasons  []string
}

// DashboardStats aggregates every scored user.
type DashboardStats struct {
	Users       int
	SafeUsers   int // users in the Low tier
	MeanScore   float64
	StdDevScore float64
}

// Dashboard is the admin risk overview computed from live scores.
type Dashboard struct {
	HighRiskUsers []RiskyUser
	TierCounts    map[Tier]int
	Stats         DashboardStats
	Graph         graph.Stats
	ActiveModel   *model.Version
	GeneratedAt   time.Time
}

// TrainRequest selects the synthetic dataset for a training run. Zero
// SampleCount and nil Seed fall back to the configured defaults.
type TrainRequest struct {
	SampleCount int
	Seed        *uint64
}
