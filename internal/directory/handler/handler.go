package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vcc/internal/directory/models"
	profile "vcc/internal/profile/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/httputil"
	authmw "vcc/pkg/platform/middleware/auth"
	"vcc/pkg/requestcontext"
)

type Service interface {
	ListApproved(ctx context.Context, limit int, cursor string) (*models.Page, error)
	Featured(ctx context.Context, limit int) (*models.Featured, error)
	GetByID(ctx context.Context, requester *domain.Principal, id domain.ProfileID) (*models.DetailProfile, bool, error)
	Queue(ctx context.Context, principal *domain.Principal, status profile.Status) (*models.Queue, error)
	AuditTrail(ctx context.Context, principal *domain.Principal, id domain.ProfileID) ([]models.AuditEntry, error)
}

type Handler struct {
	directory Service
	logger    *slog.Logger
}

func New(directory Service, logger *slog.Logger) *Handler {
	return &Handler{directory: directory, logger: logger}
}

// Register mounts the public listing and the staff views. The listing is
// open to anonymous callers; an authenticated principal only widens what
// GET /directory/{id} returns.
func (h *Handler) Register(r chi.Router) {
	r.Get("/directory", h.handleList)
	r.Get("/directory/featured", h.handleFeatured)
	r.Get("/directory/{id}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSession(h.logger))
		r.Get("/queues/{status}", h.handleQueue)
		r.Get("/admin/profiles/{id}/audit", h.handleAudit)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := h.directory.ListApproved(r.Context(), limit, q.Get("cursor"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleFeatured(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	featured, err := h.directory.Featured(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, featured)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, detailed, err := h.directory.GetByID(ctx, requestcontext.Principal(ctx), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if detailed {
		httputil.WriteJSON(w, http.StatusOK, view)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view.PublicProfile)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := profile.ParseStatus(chi.URLParam(r, "status"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	queue, err := h.directory.Queue(ctx, requestcontext.Principal(ctx), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, queue)
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.directory.AuditTrail(ctx, requestcontext.Principal(ctx), id)
	if err != nil {
		h.logger.WarnContext(ctx, "audit trail request failed", "error", err, "profile_id", id.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": entries})
}

// parseLimit reads an optional limit query value; zero means the default.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, "limit: must be a number")
	}
	return n, nil
}
