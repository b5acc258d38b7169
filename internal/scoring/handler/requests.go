package handler

import (
	"strings"

	"graphtrust/internal/scoring"
	dErrors "graphtrust/pkg/domain-errors"
	"graphtrust/pkg/platform/httputil"
)

// SignupRequest is the body of POST /auth/signup. Credentials are accepted
// for client compatibility and ignored.
type SignupRequest struct {
	UserID   httputil.ID `json:"user_id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	UserType string      `json:"user_type"`
}

func (r *SignupRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if len(r.Name) > 200 || len(r.Email) > 320 {
		return dErrors.New(dErrors.CodeValidation, "name or email too long")
	}
	return nil
}

func (r *SignupRequest) toEvent() scoring.SignupEvent {
	return scoring.SignupEvent{
		UserID:   r.UserID.String(),
		Name:     r.Name,
		Email:    r.Email,
		UserType: r.UserType,
	}
}

// KYCRequest is the body of POST /kyc/upload.
type KYCRequest struct {
	UserID    httputil.ID `json:"user_id"`
	DocURL    string      `json:"doc_url"`
	SelfieURL string      `json:"selfie_url"`
}

func (r *KYCRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	return nil
}

func (r *KYCRequest) toEvent() scoring.KYCEvent {
	return scoring.KYCEvent{UserID: r.UserID.String(), DocURL: r.DocURL, SelfieURL: r.SelfieURL}
}

// ReviewRequest is the body of POST /reviews/submit.
type ReviewRequest struct {
	BuyerID     httputil.ID `json:"buyer_id"`
	SellerID    httputil.ID `json:"seller_id"`
	ProductID   httputil.ID `json:"product_id"`
	OrderItemID httputil.ID `json:"order_item_id"`
	Rating      *float64    `json:"rating"`
	Comment     string      `json:"comment"`
}

func (r *ReviewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.BuyerID == "" || r.SellerID == "" {
		return dErrors.New(dErrors.CodeValidation, "buyer_id and seller_id are required")
	}
	if r.Rating == nil {
		return dErrors.New(dErrors.CodeValidation, "rating is required")
	}
	if len(r.Comment) > 5000 {
		return dErrors.New(dErrors.CodeValidation, "comment must be at most 5000 characters")
	}
	return nil
}

func (r *ReviewRequest) toEvent() scoring.ReviewEvent {
	return scoring.ReviewEvent{
		BuyerID:   r.BuyerID.String(),
		SellerID:  r.SellerID.String(),
		ProductID: r.ProductID.String(),
		OrderID:   r.OrderItemID.String(),
		Rating:    *r.Rating,
		Comment:   r.Comment,
	}
}

// TrainRequest is the optional body of POST /admin/train-model.
type TrainRequest struct {
	SampleCount int     `json:"sample_count"`
	Seed        *uint64 `json:"seed"`
}

func (r *TrainRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.SampleCount < 0 {
		return dErrors.New(dErrors.CodeValidation, "sample_count must be positive")
	}
	return nil
}

// FlagActorRequest is the body of POST /admin/flagged-actors.
type FlagActorRequest struct {
	UserID httputil.ID `json:"user_id"`
	Reason string      `json:"reason"`
}

func (r *FlagActorRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return nil
}

// FlaggedLinkRequest is the body of POST /admin/flagged-links.
type FlaggedLinkRequest struct {
	UserID  httputil.ID `json:"user_id"`
	ActorID httputil.ID `json:"actor_id"`
}

func (r *FlaggedLinkRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.UserID == "" || r.ActorID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id and actor_id are required")
	}
	return nil
}
