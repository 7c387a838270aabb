package testutil

import (
	"net/http"

	"vcc/pkg/domain"
	"vcc/pkg/requestcontext"
)

// WithPrincipal attaches a principal to the request context.
// This simulates what the session middleware does for authenticated requests.
func WithPrincipal(req *http.Request, p *domain.Principal) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
}

// WithClientIP sets the client metadata the rate limiter keys on.
func WithClientIP(req *http.Request, ip string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, req.UserAgent()))
}

// PrincipalWith builds a principal holding roles (MEMBER is implicit).
func PrincipalWith(roles ...domain.Role) *domain.Principal {
	return &domain.Principal{
		ID:          domain.NewProfileID(),
		Email:       "actor@example.com",
		DisplayName: "Actor",
		Roles:       domain.NewRoleSet(roles...),
	}
}
