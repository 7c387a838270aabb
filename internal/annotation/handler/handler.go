package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vcc/internal/annotation/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/httputil"
	authmw "vcc/pkg/platform/middleware/auth"
	request "vcc/pkg/platform/middleware/request"
	"vcc/pkg/requestcontext"
)

type Service interface {
	AddComment(ctx context.Context, principal *domain.Principal, id domain.ProfileID, req *models.AddCommentRequest) (*models.Comment, error)
	List(ctx context.Context, principal *domain.Principal, id domain.ProfileID) ([]*models.Comment, error)
}

type Handler struct {
	comments Service
	logger   *slog.Logger
}

func New(comments Service, logger *slog.Logger) *Handler {
	return &Handler{comments: comments, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSession(h.logger))
		r.Get("/applications/{id}/comments", h.handleList)
		r.Post("/applications/{id}/comments", h.handleAdd)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	comments, err := h.comments.List(ctx, requestcontext.Principal(ctx), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]models.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, models.NewCommentResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"comments": out})
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.AddCommentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.comments.AddComment(ctx, requestcontext.Principal(ctx), id, &req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to add comment",
			"error", err,
			"profile_id", id.String(),
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.NewCommentResponse(c))
}
