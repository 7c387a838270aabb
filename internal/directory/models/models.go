// Package models holds the read-side views of the directory.
package models

import (
	"encoding/base64"
	"encoding/json"
	"time"

	profile "vcc/internal/profile/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
	MaxQueueSize    = 200
	// FeaturedSize is how many recently approved profiles the landing
	// page shows.
	FeaturedSize = 6
)

// Summary is a directory listing card.
type Summary struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Role        string   `json:"role"`
	Handle      string   `json:"handle,omitempty"`
	Location    string   `json:"location,omitempty"`
	Skills      []string `json:"skills"`
	Tags        []string `json:"tags"`
}

// PublicProfile is what anyone may see of an APPROVED profile.
type PublicProfile struct {
	Summary
	Bio        string     `json:"bio,omitempty"`
	Telegram   string     `json:"telegram,omitempty"`
	XHandle    string     `json:"x_handle,omitempty"`
	Website    string     `json:"website,omitempty"`
	GitHub     string     `json:"github,omitempty"`
	LinkedIn   string     `json:"linkedin,omitempty"`
	Chain      string     `json:"chain,omitempty"`
	Wallet     string     `json:"wallet,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// DetailProfile adds the review data staff work from.
type DetailProfile struct {
	PublicProfile
	Email         string              `json:"email"`
	EmailVerified bool                `json:"email_verified"`
	Status        string              `json:"status"`
	ReviewerNote  string              `json:"reviewer_note,omitempty"`
	References    []profile.Reference `json:"references"`
	SubmittedAt   *time.Time          `json:"submitted_at,omitempty"`
	ReviewedAt    *time.Time          `json:"reviewed_at,omitempty"`
}

// Page is one slice of the approved listing. NextCursor is empty on the
// last page.
type Page struct {
	Items      []Summary `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// Featured lists the most recently approved profiles.
type Featured struct {
	Items []PublicProfile `json:"items"`
}

type Queue struct {
	Status string          `json:"status"`
	Items  []DetailProfile `json:"items"`
}

type AuditEntry struct {
	Action    string    `json:"action"`
	Decision  string    `json:"decision,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSummary(p *profile.Profile) Summary {
	return Summary{
		ID:          p.ID.String(),
		DisplayName: p.DisplayName,
		Role:        p.SubmissionRole,
		Handle:      p.Handle,
		Location:    p.Location,
		Skills:      nonNil(p.Skills),
		Tags:        nonNil(p.Tags),
	}
}

func NewPublicProfile(p *profile.Profile) PublicProfile {
	out := PublicProfile{
		Summary:  NewSummary(p),
		Bio:      p.Bio,
		Telegram: p.Telegram,
		XHandle:  p.XHandle,
		Website:  p.Website,
		GitHub:   p.GitHub,
		LinkedIn: p.LinkedIn,
		Chain:    p.Chain,
		Wallet:   p.Wallet,
	}
	if p.Status == profile.StatusApproved {
		out.ApprovedAt = p.ReviewedAt
	}
	return out
}

func NewDetailProfile(p *profile.Profile) DetailProfile {
	refs := p.References
	if refs == nil {
		refs = []profile.Reference{}
	}
	return DetailProfile{
		PublicProfile: NewPublicProfile(p),
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		Status:        string(p.Status),
		ReviewerNote:  p.ReviewerNote,
		References:    refs,
		SubmittedAt:   p.SubmittedAt,
		ReviewedAt:    p.ReviewedAt,
	}
}

func NewAuditEntry(e audit.Event) AuditEntry {
	return AuditEntry{
		Action:    e.Action,
		Decision:  e.Decision,
		Subject:   e.Subject,
		Reason:    e.Reason,
		ActorID:   e.ActorID,
		Timestamp: e.Timestamp,
	}
}

type cursorPayload struct {
	SubmittedAt time.Time `json:"t"`
	ID          string    `json:"id"`
}

// EncodeCursor makes the opaque continuation token for the listing.
func EncodeCursor(c profile.Cursor) string {
	raw, _ := json.Marshal(cursorPayload{SubmittedAt: c.SubmittedAt.UTC(), ID: c.ID.String()})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor; an empty token means the first page.
func DecodeCursor(token string) (*profile.Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "cursor: is invalid")
	}
	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.SubmittedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "cursor: is invalid")
	}
	id, err := domain.ParseProfileID(payload.ID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "cursor: is invalid")
	}
	return &profile.Cursor{SubmittedAt: payload.SubmittedAt, ID: id}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
