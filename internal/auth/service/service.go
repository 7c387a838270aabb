package service

import (
	"context"
	"errors"
	"log/slog"

	"vcc/internal/auth/models"
	"vcc/internal/authz"
	"vcc/internal/platform/metrics"
	profile "vcc/internal/profile/models"
	rlmodels "vcc/internal/ratelimit/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/audit"
	txcontext "vcc/pkg/platform/tx"
)

// ProfileStore persists principals.
type ProfileStore interface {
	Create(ctx context.Context, p *profile.Profile) error
	FindByID(ctx context.Context, id domain.ProfileID) (*profile.Profile, error)
	FindByEmail(ctx context.Context, email string) (*profile.Profile, error)
	FindByVerificationTokenHash(ctx context.Context, hash string) (*profile.Profile, error)
	Execute(ctx context.Context, id domain.ProfileID, validate func(*profile.Profile) error, mutate func(*profile.Profile)) (*profile.Profile, error)
}

// SessionStore persists sessions keyed by token hash.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByTokenHash(ctx context.Context, hash string) (*models.Session, error)
	DeleteByTokenHash(ctx context.Context, hash string) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(digest, plain string) error
	CompareDummy(plain string)
}

type RateLimiter interface {
	Enforce(ctx context.Context, action rlmodels.Action, subjects ...rlmodels.Subject) error
}

type Authorizer interface {
	Require(ctx context.Context, principal *domain.Principal, c authz.Capability) error
}

// VerificationMailer queues the verification email; it never blocks on delivery.
type VerificationMailer interface {
	SendVerification(ctx context.Context, to, name, token string)
}

// Service owns credentials, sessions and roles.
type Service struct {
	profiles ProfileStore
	sessions SessionStore
	hasher   PasswordHasher
	limiter  RateLimiter
	guard    Authorizer
	mailer   VerificationMailer
	tx       txcontext.Runner
	auditor  audit.Appender
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithRateLimiter(l RateLimiter) Option {
	return func(s *Service) {
		s.limiter = l
	}
}

func WithAuthorizer(g Authorizer) Option {
	return func(s *Service) {
		s.guard = g
	}
}

func WithMailer(m VerificationMailer) Option {
	return func(s *Service) {
		s.mailer = m
	}
}

// WithTxRunner makes account writes and their audit rows commit together.
func WithTxRunner(r txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = r
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(profiles ProfileStore, sessions SessionStore, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if profiles == nil {
		return nil, errors.New("profile store is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if hasher == nil {
		return nil, errors.New("password hasher is required")
	}
	svc := &Service{
		profiles: profiles,
		sessions: sessions,
		hasher:   hasher,
		guard:    authz.NewGuard(),
		tx:       txcontext.NopRunner{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) enforce(ctx context.Context, action rlmodels.Action, subjects ...rlmodels.Subject) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Enforce(ctx, action, subjects...)
}

// record writes an audit event. Inside RunInTx the error aborts the
// transaction; outside, callers log and continue.
func (s *Service) record(ctx context.Context, event audit.Event) error {
	return audit.Record(ctx, s.logger, s.auditor, event)
}

func (s *Service) recordBestEffort(ctx context.Context, event audit.Event) {
	if err := s.record(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event", "event", event.Action, "error", err)
	}
}

// authFailure logs a failed authentication without revealing which check failed.
func (s *Service) authFailure(ctx context.Context, reason string, attrs ...any) {
	s.logger.WarnContext(ctx, "authentication failed", append([]any{"reason", reason}, attrs...)...)
	s.recordBestEffort(ctx, audit.Event{
		Action:   string(audit.EventAuthFailed),
		Decision: "denied",
		Reason:   reason,
	})
	if s.metrics != nil {
		s.metrics.ObserveLogin("failure")
	}
}
