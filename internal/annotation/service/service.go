// Package service keeps the staff comment thread of each application.
package service

import (
	"context"
	"errors"
	"log/slog"

	"vcc/internal/annotation/models"
	"vcc/internal/authz"
	profile "vcc/internal/profile/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
	"vcc/pkg/platform/sentinel"
	"vcc/pkg/requestcontext"
)

type CommentStore interface {
	Append(ctx context.Context, c *models.Comment) error
	ListByProfile(ctx context.Context, id domain.ProfileID) ([]*models.Comment, error)
}

type ProfileReader interface {
	FindByID(ctx context.Context, id domain.ProfileID) (*profile.Profile, error)
}

type Authorizer interface {
	Require(ctx context.Context, principal *domain.Principal, c authz.Capability) error
}

type Service struct {
	comments CommentStore
	profiles ProfileReader
	guard    Authorizer
	auditor  audit.Appender
	logger   *slog.Logger
}

type Option func(*Service)

func WithAuthorizer(g Authorizer) Option {
	return func(s *Service) {
		s.guard = g
	}
}

func WithAuditor(a audit.Appender) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(comments CommentStore, profiles ProfileReader, opts ...Option) (*Service, error) {
	if comments == nil {
		return nil, errors.New("comment store is required")
	}
	if profiles == nil {
		return nil, errors.New("profile reader is required")
	}
	svc := &Service{
		comments: comments,
		profiles: profiles,
		guard:    authz.NewGuard(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// AddComment appends a staff note to the application id.
func (s *Service) AddComment(ctx context.Context, principal *domain.Principal, id domain.ProfileID, req *models.AddCommentRequest) (*models.Comment, error) {
	if err := s.guard.Require(ctx, principal, authz.CapComment); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireApplication(ctx, id); err != nil {
		return nil, err
	}

	c := &models.Comment{
		ID:         domain.NewCommentID(),
		ProfileID:  id,
		AuthorID:   principal.ID,
		AuthorName: principal.DisplayName,
		Content:    req.Content,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.comments.Append(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save comment")
	}

	if err := audit.Record(ctx, s.logger, s.auditor, audit.Event{
		Action:    string(audit.EventCommentAdded),
		ProfileID: id,
		ActorID:   principal.ID.String(),
		Subject:   c.ID.String(),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to record comment event", "error", err)
	}
	return c, nil
}

// List returns the thread of application id, oldest first.
func (s *Service) List(ctx context.Context, principal *domain.Principal, id domain.ProfileID) ([]*models.Comment, error) {
	if err := s.guard.Require(ctx, principal, authz.CapComment); err != nil {
		return nil, err
	}
	if err := s.requireApplication(ctx, id); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByProfile(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list comments")
	}
	return comments, nil
}

func (s *Service) requireApplication(ctx context.Context, id domain.ProfileID) error {
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	if !p.HasApplication() {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	return nil
}
