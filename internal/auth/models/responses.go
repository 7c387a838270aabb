package models

import (
	"time"

	"vcc/pkg/domain"
)

// LoginResult carries the raw session token to the transport, which puts it
// in the cookie and never in a response body.
type LoginResult struct {
	Principal *domain.Principal
	Token     string
	ExpiresAt time.Time
}

// PrincipalResponse is the public JSON shape of an authenticated account.
type PrincipalResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
}

func FromPrincipal(p *domain.Principal) *PrincipalResponse {
	return &PrincipalResponse{
		ID:          p.ID.String(),
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Roles:       p.Roles.Strings(),
	}
}

// ApplicationSummary is the member dashboard view of one's own application.
type ApplicationSummary struct {
	Status         string     `json:"status"`
	SubmissionRole string     `json:"submission_role,omitempty"`
	ReviewerNote   string     `json:"reviewer_note,omitempty"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
}

// MeResponse is the member dashboard payload.
type MeResponse struct {
	PrincipalResponse
	EmailVerified bool                `json:"email_verified"`
	Application   *ApplicationSummary `json:"application,omitempty"`
}

type RolesResponse struct {
	ProfileID string   `json:"profile_id"`
	Roles     []string `json:"roles"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
