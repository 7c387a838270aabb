// Package auth resolves the session cookie into a principal on every request.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/httputil"
	request "vcc/pkg/platform/middleware/request"
	"vcc/pkg/requestcontext"
)

// SessionResolver maps an opaque session token to its principal. A nil
// principal with a nil error means the token is unknown or expired.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*domain.Principal, error)
}

// Authenticate attaches the principal of a valid session cookie to the
// context. Requests without a usable session continue anonymously.
func Authenticate(resolver SessionResolver, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := requestcontext.WithSessionToken(r.Context(), cookie.Value)
			principal, err := resolver.ResolveSession(ctx, cookie.Value)
			if err != nil {
				// A store outage degrades to anonymous; protected routes still refuse.
				logger.ErrorContext(ctx, "failed to resolve session",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if principal != nil {
				ctx = requestcontext.WithPrincipal(ctx, principal)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects anonymous requests with the uniform 401.
func RequireSession(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.Principal(ctx) == nil {
				logger.WarnContext(ctx, "unauthorized access - missing session",
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
