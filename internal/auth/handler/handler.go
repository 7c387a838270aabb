// Package handler exposes registration, login and session endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vcc/internal/auth/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/httputil"
	adminmw "vcc/pkg/platform/middleware/admin"
	authmw "vcc/pkg/platform/middleware/auth"
	request "vcc/pkg/platform/middleware/request"
	"vcc/pkg/requestcontext"
)

const (
	// SessionCookie carries the opaque session token.
	SessionCookie = "vcc_session"
	// legacyMemberCookie predates server-side sessions and is cleared on login.
	legacyMemberCookie = "member_email"
)

// Service is the credential and session surface the handler needs.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*domain.Principal, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error)
	IssueSession(ctx context.Context, principal *domain.Principal) (*models.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, principal *domain.Principal) (*models.MeResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, principal *domain.Principal) error
	UpdateUserRoles(ctx context.Context, actor *domain.Principal, profileID domain.ProfileID, roles []string) (domain.RoleSet, error)
	BootstrapAdmin(ctx context.Context, email, password string) (*domain.Principal, error)
}

type Handler struct {
	auth         Service
	logger       *slog.Logger
	secureCookie bool
	adminToken   string
}

type Option func(*Handler)

// WithSecureCookies marks the session cookie Secure; enable in production.
func WithSecureCookies(secure bool) Option {
	return func(h *Handler) {
		h.secureCookie = secure
	}
}

// WithAdminToken enables POST /admin/bootstrap behind X-Admin-Token.
func WithAdminToken(token string) Option {
	return func(h *Handler) {
		h.adminToken = token
	}
}

func New(auth Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{auth: auth, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the auth routes. The router must already run the
// session-resolving middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/verify-email/{token}", h.handleVerifyEmail)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSession(h.logger))
		r.Get("/auth/me", h.handleMe)
		r.Post("/auth/resend-verification", h.handleResendVerification)
		r.Put("/admin/profiles/{id}/roles", h.handleUpdateRoles)
	})

	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/bootstrap", h.handleBootstrap)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeAndPrepare[models.RegisterRequest](w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	principal, err := h.auth.Register(ctx, req)
	if err != nil {
		h.logFailure(ctx, "registration failed", err)
		httputil.WriteError(w, err)
		return
	}

	// New accounts are signed in straight away.
	result, err := h.auth.IssueSession(ctx, principal)
	if err != nil {
		h.logFailure(ctx, "failed to open session after registration", err)
		httputil.WriteJSON(w, http.StatusCreated, models.FromPrincipal(principal))
		return
	}
	h.setSessionCookie(w, result.Token, result.ExpiresAt)
	httputil.WriteJSON(w, http.StatusCreated, models.FromPrincipal(result.Principal))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeAndPrepare[models.LoginRequest](w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.auth.Login(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.setSessionCookie(w, result.Token, result.ExpiresAt)
	h.clearCookie(w, legacyMemberCookie)
	httputil.WriteJSON(w, http.StatusOK, models.FromPrincipal(result.Principal))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.Logout(ctx, requestcontext.SessionToken(ctx)); err != nil {
		h.logFailure(ctx, "logout failed", err)
		httputil.WriteError(w, err)
		return
	}
	h.clearCookie(w, SessionCookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me, err := h.auth.Me(ctx, requestcontext.Principal(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, me)
}

func (h *Handler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.VerifyEmail(ctx, chi.URLParam(r, "token")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "email verified"})
}

func (h *Handler) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.ResendVerification(ctx, requestcontext.Principal(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, models.MessageResponse{Message: "verification email sent"})
}

func (h *Handler) handleUpdateRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, err := domain.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeAndPrepare[models.UpdateRolesRequest](w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	roles, err := h.auth.UpdateUserRoles(ctx, requestcontext.Principal(ctx), profileID, req.Roles)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.RolesResponse{
		ProfileID: profileID.String(),
		Roles:     roles.Strings(),
	})
}

func (h *Handler) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeAndPrepare[models.BootstrapAdminRequest](w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	principal, err := h.auth.BootstrapAdmin(ctx, req.Email, req.Password)
	if err != nil {
		h.logFailure(ctx, "admin bootstrap failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.FromPrincipal(principal))
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(models.SessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
}
