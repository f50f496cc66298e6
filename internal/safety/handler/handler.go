package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aegis/internal/audit"
	"aegis/internal/platform/metrics"
	"aegis/internal/platform/middleware"
	"aegis/internal/platform/privacy"
	"aegis/internal/safety/classifier"
	"aegis/internal/safety/models"
	"aegis/internal/transport/http/shared"
	respond "aegis/internal/transport/http/shared/json"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/validation"
)

// Service defines the safety operations the HTTP layer delegates to.
type Service interface {
	Verify(ctx context.Context, userID string, forceReverify bool) (bool, error)
	IsVerified(ctx context.Context, userID string) bool
	IntrospectToken(ctx context.Context, token string) (*models.TokenIntrospection, error)
	CheckConsent(ctx context.Context, userID string, feature models.Feature) bool
	RecordConsent(ctx context.Context, userID string, feature models.Feature, info map[string]string) (bool, error)
	RevokeConsent(ctx context.Context, userID string, feature models.Feature) (bool, error)
	CheckContentSafety(ctx context.Context, image []byte, mimeType string) (*models.ContentSafetyResult, error)
	DetectSuspiciousActivity(ctx context.Context, userID string, action models.Action) (*models.ActivityAssessment, error)
	SafetyRecommendations(ctx context.Context, userID string) []models.Recommendation
	PanicButton(ctx context.Context, userID string) (*models.PanicResult, error)
}

// AuditLog reads back per-user audit events.
type AuditLog interface {
	List(ctx context.Context, userID string) ([]audit.Event, error)
}

// Handler handles safety endpoints.
type Handler struct {
	logger   *slog.Logger
	safety   Service
	auditLog AuditLog
	metrics  *metrics.Metrics
}

// New creates a new safety Handler. auditLog may be nil; the audit endpoint
// then reports not found.
func New(safety Service, auditLog AuditLog, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		safety:   safety,
		auditLog: auditLog,
		metrics:  metrics,
	}
}

// Register registers the safety routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/safety/verification", h.handleVerify)
	r.Get("/safety/verification/{userID}", h.handleVerificationStatus)
	r.Post("/safety/verification/introspect", h.handleIntrospect)
	r.Post("/safety/consent", h.handleRecordConsent)
	r.Post("/safety/consent/revoke", h.handleRevokeConsent)
	r.Get("/safety/consent/{userID}/{feature}", h.handleConsentStatus)
	r.Post("/safety/content/check", h.handleContentCheck)
	r.Post("/safety/activity", h.handleActivity)
	r.Get("/safety/recommendations/{userID}", h.handleRecommendations)
	r.Post("/safety/panic", h.handlePanic)
	r.Get("/safety/audit/{userID}", h.handleAudit)
}

func (h *Handler) observe(endpoint string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveEndpointLatency(endpoint, time.Since(start).Seconds())
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	ctx := r.Context()
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode request body",
			"request_id", middleware.GetRequestID(ctx),
			"path", r.URL.Path,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	if err := validation.Validate(req); err != nil {
		h.logger.WarnContext(ctx, "invalid request",
			"request_id", middleware.GetRequestID(ctx),
			"path", r.URL.Path,
			"error", err,
		)
		shared.WriteError(w, err)
		return false
	}
	return true
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	defer h.observe("verify", time.Now())
	ctx := r.Context()

	var req VerifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	verified, err := h.safety.Verify(ctx, req.UserID, req.ForceReverify)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, &VerifyResponse{Verified: verified})
}

func (h *Handler) handleVerificationStatus(w http.ResponseWriter, r *http.Request) {
	defer h.observe("verification_status", time.Now())
	ctx := r.Context()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user ID is required"))
		return
	}

	respond.WriteJSON(w, http.StatusOK, &VerificationStatusResponse{
		UserID:   userID,
		Verified: h.safety.IsVerified(ctx, userID),
	})
}

func (h *Handler) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	defer h.observe("introspect", time.Now())
	ctx := r.Context()

	var req IntrospectRequest
	if !h.decode(w, r, &req) {
		return
	}

	introspection, err := h.safety.IntrospectToken(ctx, req.Token)
	if err != nil {
		h.logger.ErrorContext(ctx, "token introspection failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, introspection)
}

func (h *Handler) handleRecordConsent(w http.ResponseWriter, r *http.Request) {
	defer h.observe("consent_grant", time.Now())
	ctx := r.Context()

	var req ConsentRequest
	if !h.decode(w, r, &req) {
		return
	}

	feature := models.Feature(req.Feature)
	if !feature.IsValid() {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown feature"))
		return
	}

	info := req.AdditionalInfo
	if ua := middleware.GetUserAgent(ctx); ua != "" {
		if info == nil {
			info = make(map[string]string, 1)
		}
		info["device"] = privacy.DeviceSummary(ua)
	}

	recorded, err := h.safety.RecordConsent(ctx, req.UserID, feature, info)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record consent",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	res := &ConsentResponse{Recorded: recorded}
	if !recorded {
		res.Reason = "verification required"
		respond.WriteJSON(w, http.StatusForbidden, res)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleRevokeConsent(w http.ResponseWriter, r *http.Request) {
	defer h.observe("consent_revoke", time.Now())
	ctx := r.Context()

	var req RevokeRequest
	if !h.decode(w, r, &req) {
		return
	}

	revoked, err := h.safety.RevokeConsent(ctx, req.UserID, models.Feature(req.Feature))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke consent",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	res := &RevokeResponse{Revoked: revoked}
	if !revoked {
		res.Reason = "no consent record"
		respond.WriteJSON(w, http.StatusNotFound, res)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleConsentStatus(w http.ResponseWriter, r *http.Request) {
	defer h.observe("consent_status", time.Now())
	ctx := r.Context()

	userID := chi.URLParam(r, "userID")
	feature := chi.URLParam(r, "feature")
	if userID == "" || feature == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user ID and feature are required"))
		return
	}

	respond.WriteJSON(w, http.StatusOK, &ConsentStatusResponse{
		UserID:    userID,
		Feature:   feature,
		Consented: h.safety.CheckConsent(ctx, userID, models.Feature(feature)),
	})
}

func (h *Handler) handleContentCheck(w http.ResponseWriter, r *http.Request) {
	defer h.observe("content_check", time.Now())
	ctx := r.Context()

	var req ContentCheckRequest
	if !h.decode(w, r, &req) {
		return
	}

	image, mimeType, err := classifier.DecodeInput(req.Image)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "image could not be decoded"))
		return
	}
	if req.MimeType != "" {
		mimeType = req.MimeType
	}

	result, err := h.safety.CheckContentSafety(ctx, image, mimeType)
	if err != nil {
		h.logger.ErrorContext(ctx, "content check failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	defer h.observe("activity", time.Now())
	ctx := r.Context()

	var req ActivityRequest
	if !h.decode(w, r, &req) {
		return
	}

	assessment, err := h.safety.DetectSuspiciousActivity(ctx, req.UserID, models.Action(req.Action))
	if err != nil {
		h.logger.ErrorContext(ctx, "activity assessment failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, assessment)
}

func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	defer h.observe("recommendations", time.Now())
	ctx := r.Context()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user ID is required"))
		return
	}

	recommendations := h.safety.SafetyRecommendations(ctx, userID)
	if recommendations == nil {
		recommendations = []models.Recommendation{}
	}
	respond.WriteJSON(w, http.StatusOK, &RecommendationsResponse{
		UserID:          userID,
		Recommendations: recommendations,
	})
}

func (h *Handler) handlePanic(w http.ResponseWriter, r *http.Request) {
	defer h.observe("panic", time.Now())
	ctx := r.Context()

	var req PanicRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.safety.PanicButton(ctx, req.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "panic activation failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	defer h.observe("audit", time.Now())
	ctx := r.Context()

	if h.auditLog == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "audit log not enabled"))
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user ID is required"))
		return
	}

	events, err := h.auditLog.List(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"events":  events,
	})
}
