// Package service projects profiles into the public directory and the staff
// review queues.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vcc/internal/authz"
	"vcc/internal/directory/models"
	profile "vcc/internal/profile/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
	"vcc/pkg/platform/sentinel"
)

type ProfileReader interface {
	FindByID(ctx context.Context, id domain.ProfileID) (*profile.Profile, error)
	ListByStatus(ctx context.Context, status profile.Status, limit int) ([]*profile.Profile, error)
	ListApproved(ctx context.Context, limit int, after *profile.Cursor) ([]*profile.Profile, error)
	ListFeatured(ctx context.Context, limit int) ([]*profile.Profile, error)
}

type AuditReader interface {
	ListByProfile(ctx context.Context, id domain.ProfileID) ([]audit.Event, error)
}

type Authorizer interface {
	Require(ctx context.Context, principal *domain.Principal, c authz.Capability) error
}

type Service struct {
	profiles ProfileReader
	audit    AuditReader
	guard    Authorizer
	logger   *slog.Logger
}

type Option func(*Service)

func WithAuditReader(r AuditReader) Option {
	return func(s *Service) {
		s.audit = r
	}
}

func WithAuthorizer(g Authorizer) Option {
	return func(s *Service) {
		s.guard = g
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(profiles ProfileReader, opts ...Option) (*Service, error) {
	if profiles == nil {
		return nil, errors.New("profile reader is required")
	}
	svc := &Service{
		profiles: profiles,
		guard:    authz.NewGuard(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ListApproved pages the public directory, newest submission first.
func (s *Service) ListApproved(ctx context.Context, limit int, cursor string) (*models.Page, error) {
	switch {
	case limit <= 0:
		limit = models.DefaultPageSize
	case limit > models.MaxPageSize:
		limit = models.MaxPageSize
	}
	after, err := models.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	// One extra row tells whether another page exists.
	rows, err := s.profiles.ListApproved(ctx, limit+1, after)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list directory")
	}
	page := &models.Page{Items: make([]models.Summary, 0, min(len(rows), limit))}
	for i, p := range rows {
		if i == limit {
			last := rows[limit-1]
			page.NextCursor = models.EncodeCursor(profile.Cursor{SubmittedAt: listedAt(last), ID: last.ID})
			break
		}
		page.Items = append(page.Items, models.NewSummary(p))
	}
	return page, nil
}

// Featured returns the most recently approved profiles.
func (s *Service) Featured(ctx context.Context, limit int) (*models.Featured, error) {
	switch {
	case limit <= 0:
		limit = models.FeaturedSize
	case limit > models.MaxPageSize:
		limit = models.MaxPageSize
	}
	rows, err := s.profiles.ListFeatured(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list featured profiles")
	}
	out := &models.Featured{Items: make([]models.PublicProfile, 0, len(rows))}
	for _, p := range rows {
		out.Items = append(out.Items, models.NewPublicProfile(p))
	}
	return out, nil
}

// GetByID returns the public view of an APPROVED profile. Staff holding the
// preview capability get the detail view of any application. Everyone else
// gets NotFound for anything unpublished.
func (s *Service) GetByID(ctx context.Context, requester *domain.Principal, id domain.ProfileID) (*models.DetailProfile, bool, error) {
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, notFound()
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	if authz.Allows(requester, authz.CapPreview) && p.HasApplication() {
		detail := models.NewDetailProfile(p)
		return &detail, true, nil
	}
	if p.Status != profile.StatusApproved {
		s.logger.DebugContext(ctx, "unpublished profile requested", "profile_id", id.String())
		return nil, false, notFound()
	}
	return &models.DetailProfile{PublicProfile: models.NewPublicProfile(p)}, false, nil
}

// Queue lists applications in status for the staff member allowed to act on
// them, oldest submission first.
func (s *Service) Queue(ctx context.Context, principal *domain.Principal, status profile.Status) (*models.Queue, error) {
	capability, ok := queueCapability(status)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeValidation, "status: unknown queue %q", status)
	}
	if err := s.guard.Require(ctx, principal, capability); err != nil {
		return nil, err
	}
	rows, err := s.profiles.ListByStatus(ctx, status, models.MaxQueueSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load queue")
	}
	q := &models.Queue{Status: string(status), Items: make([]models.DetailProfile, 0, len(rows))}
	for _, p := range rows {
		q.Items = append(q.Items, models.NewDetailProfile(p))
	}
	return q, nil
}

// AuditTrail returns the recorded events of profile id, newest first.
func (s *Service) AuditTrail(ctx context.Context, principal *domain.Principal, id domain.ProfileID) ([]models.AuditEntry, error) {
	if err := s.guard.Require(ctx, principal, authz.CapAdminister); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []models.AuditEntry{}, nil
	}
	events, err := s.audit.ListByProfile(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail")
	}
	out := make([]models.AuditEntry, 0, len(events))
	for _, e := range events {
		out = append(out, models.NewAuditEntry(e))
	}
	return out, nil
}

func queueCapability(status profile.Status) (authz.Capability, bool) {
	switch status {
	case profile.StatusPending:
		return authz.CapReview, true
	case profile.StatusReady:
		return authz.CapApprove, true
	case profile.StatusApproved, profile.StatusRejected:
		return authz.CapAdminister, true
	}
	return "", false
}

func listedAt(p *profile.Profile) time.Time {
	if p.SubmittedAt != nil {
		return *p.SubmittedAt
	}
	return p.CreatedAt
}

func notFound() error {
	return dErrors.New(dErrors.CodeNotFound, "profile not found")
}
