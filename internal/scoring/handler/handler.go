package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"graphtrust/internal/model"
	"graphtrust/internal/scoring"
	dErrors "graphtrust/pkg/domain-errors"
	"graphtrust/pkg/platform/httputil"
	"graphtrust/pkg/platform/middleware/admin"
	"graphtrust/pkg/requestcontext"
)

// Service defines the scoring operations exposed over HTTP.
type Service interface {
	OnSignup(ctx context.Context, ev scoring.SignupEvent) error
	OnKYCSubmitted(ctx context.Context, ev scoring.KYCEvent) (*scoring.KYCResult, error)
	OnReviewSubmitted(ctx context.Context, ev scoring.ReviewEvent) error
	ScoreUser(ctx context.Context, userID string) (*scoring.Assessment, error)
	RiskTier(ctx context.Context, userID string) (scoring.Tier, error)
	TrainModel(ctx context.Context, req scoring.TrainRequest) (*model.Version, error)
	ListModels(ctx context.Context) ([]model.Version, error)
	ActivateModel(ctx context.Context, versionID uuid.UUID) error
	FlagActor(ctx context.Context, userID, reason string) error
	LinkFlaggedActor(ctx context.Context, userID, actorID string) error
	RiskDashboard(ctx context.Context) (*scoring.Dashboard, error)
}

// Handler wires marketplace events, score queries and admin endpoints to the
// scoring service.
type Handler struct {
	service    Service
	logger     *slog.Logger
	adminToken string
}

// New constructs a scoring handler. Admin routes require adminToken in the
// X-Admin-Token header.
func New(service Service, logger *slog.Logger, adminToken string) *Handler {
	return &Handler{
		service:    service,
		logger:     logger,
		adminToken: adminToken,
	}
}

// Register mounts scoring endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signup", h.HandleSignup)
	r.Post("/kyc/upload", h.HandleKYCUpload)
	r.Post("/reviews/submit", h.HandleReviewSubmit)
	r.Get("/users/{userID}/trust-score", h.HandleTrustScore)
	r.Get("/users/{userID}/risk-tier", h.HandleRiskTier)

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		ar.Post("/train-model", h.HandleTrainModel)
		ar.Get("/models", h.HandleListModels)
		ar.Post("/models/{versionID}/activate", h.HandleActivateModel)
		ar.Post("/flagged-actors", h.HandleFlagActor)
		ar.Post("/flagged-links", h.HandleLinkFlaggedActor)
		ar.Get("/risk-dashboard", h.HandleRiskDashboard)
	})
}

// HandleSignup handles POST /auth/signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SignupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.OnSignup(ctx, req.toEvent()); err != nil {
		h.writeFailure(ctx, w, "signup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, StatusResponse{
		Status:  "success",
		Message: "User registered. Please complete KYC.",
	})
}

// HandleKYCUpload handles POST /kyc/upload.
func (h *Handler) HandleKYCUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[KYCRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.OnKYCSubmitted(ctx, req.toEvent())
	if err != nil {
		h.writeFailure(ctx, w, "kyc processing failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromKYCResult(result))
}

// HandleReviewSubmit handles POST /reviews/submit.
func (h *Handler) HandleReviewSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.OnReviewSubmitted(ctx, req.toEvent()); err != nil {
		h.writeFailure(ctx, w, "review rejected", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, StatusResponse{
		Status:  "success",
		Message: "Review submitted successfully and logged for graph analysis.",
	})
}

// HandleTrustScore handles GET /users/{userID}/trust-score.
func (h *Handler) HandleTrustScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	a, err := h.service.ScoreUser(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		h.writeFailure(ctx, w, "scoring failed", err)
		return
	}
	h.logger.DebugContext(ctx, "user scored",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", a.UserID,
		"score", a.Score,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromAssessment(a))
}

// HandleRiskTier handles GET /users/{userID}/risk-tier.
func (h *Handler) HandleRiskTier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	tier, err := h.service.RiskTier(ctx, userID)
	if err != nil {
		h.writeFailure(ctx, w, "risk tier failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RiskTierResponse{UserID: userID, RiskTier: string(tier)})
}

// HandleTrainModel handles POST /admin/train-model. The body is optional.
func (h *Handler) HandleTrainModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req := &TrainRequest{}
	if r.ContentLength != 0 && r.Body != http.NoBody {
		var ok bool
		req, ok = httputil.DecodeAndPrepare[TrainRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
	}

	version, err := h.service.TrainModel(ctx, scoring.TrainRequest{SampleCount: req.SampleCount, Seed: req.Seed})
	if err != nil {
		h.writeFailure(ctx, w, "model training failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, TrainResponse{
		Message: "Model trained and activated.",
		Model:   fromVersion(version),
	})
}

// HandleListModels handles GET /admin/models.
func (h *Handler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versions, err := h.service.ListModels(ctx)
	if err != nil {
		h.writeFailure(ctx, w, "list models failed", err)
		return
	}
	resp := ModelsResponse{Models: make([]ModelResponse, 0, len(versions))}
	for i := range versions {
		resp.Models = append(resp.Models, *fromVersion(&versions[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleActivateModel handles POST /admin/models/{versionID}/activate.
func (h *Handler) HandleActivateModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versionID, err := uuid.Parse(chi.URLParam(r, "versionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "version id must be a uuid"))
		return
	}
	if err := h.service.ActivateModel(ctx, versionID); err != nil {
		h.writeFailure(ctx, w, "model activation failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFlagActor handles POST /admin/flagged-actors.
func (h *Handler) HandleFlagActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[FlagActorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.FlagActor(ctx, req.UserID.String(), req.Reason); err != nil {
		h.writeFailure(ctx, w, "flag actor failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLinkFlaggedActor handles POST /admin/flagged-links.
func (h *Handler) HandleLinkFlaggedActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[FlaggedLinkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.LinkFlaggedActor(ctx, req.UserID.String(), req.ActorID.String()); err != nil {
		h.writeFailure(ctx, w, "flagged link failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRiskDashboard handles GET /admin/risk-dashboard.
func (h *Handler) HandleRiskDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := h.service.RiskDashboard(ctx)
	if err != nil {
		h.writeFailure(ctx, w, "risk dashboard failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDashboard(d))
}

// writeFailure logs client errors at warn and server errors at error, then
// writes the error envelope.
func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{"request_id", requestcontext.RequestID(ctx), "error", err}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
