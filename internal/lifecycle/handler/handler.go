package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vcc/internal/lifecycle/models"
	profile "vcc/internal/profile/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/httputil"
	authmw "vcc/pkg/platform/middleware/auth"
	request "vcc/pkg/platform/middleware/request"
	"vcc/pkg/requestcontext"
)

type Service interface {
	Submit(ctx context.Context, principal *domain.Principal, req *models.SubmitApplicationRequest) (*models.SubmitResult, error)
	MarkReadyForApproval(ctx context.Context, principal *domain.Principal, id domain.ProfileID, note string) (*profile.Profile, error)
	RejectAfterReview(ctx context.Context, principal *domain.Principal, id domain.ProfileID, note string) (*profile.Profile, error)
	Approve(ctx context.Context, principal *domain.Principal, id domain.ProfileID, note string) (*profile.Profile, error)
	Reject(ctx context.Context, principal *domain.Principal, id domain.ProfileID, note string) (*profile.Profile, error)
}

type transitionFunc func(ctx context.Context, principal *domain.Principal, id domain.ProfileID, note string) (*profile.Profile, error)

type Handler struct {
	lifecycle Service
	logger    *slog.Logger
}

func New(lifecycle Service, logger *slog.Logger) *Handler {
	return &Handler{lifecycle: lifecycle, logger: logger}
}

// Register mounts submission and review routes. Submission is open to
// anonymous callers; review actions need a session.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.handleSubmit)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSession(h.logger))
		r.Post("/applications/{id}/ready", h.transition(h.lifecycle.MarkReadyForApproval))
		r.Post("/applications/{id}/reject-review", h.transition(h.lifecycle.RejectAfterReview))
		r.Post("/applications/{id}/approve", h.transition(h.lifecycle.Approve))
		r.Post("/applications/{id}/reject", h.transition(h.lifecycle.Reject))
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.SubmitApplicationRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.lifecycle.Submit(ctx, requestcontext.Principal(ctx), &req)
	if err != nil {
		h.logger.WarnContext(ctx, "application submission failed",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.SubmitResponse{
		ID:     result.ProfileID.String(),
		Status: string(result.Status),
	})
}

func (h *Handler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := domain.ParseProfileID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		var req models.TransitionRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
		updated, err := fn(ctx, requestcontext.Principal(ctx), id, req.Note)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, models.TransitionResponse{
			ID:         updated.ID.String(),
			Status:     string(updated.Status),
			Note:       updated.ReviewerNote,
			ReviewedAt: updated.ReviewedAt,
		})
	}
}
