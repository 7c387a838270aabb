// Package service runs the application lifecycle: submission and the
// review transitions NONE → PENDING → READY_FOR_APPROVAL → APPROVED | REJECTED.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"vcc/internal/authz"
	"vcc/internal/lifecycle/metrics"
	"vcc/internal/lifecycle/models"
	profile "vcc/internal/profile/models"
	rlmodels "vcc/internal/ratelimit/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/audit"
	txcontext "vcc/pkg/platform/tx"
)

const tracerName = "vcc/internal/lifecycle"

// ProfileStore is the profile persistence the lifecycle needs.
type ProfileStore interface {
	Create(ctx context.Context, p *profile.Profile) error
	FindByID(ctx context.Context, id domain.ProfileID) (*profile.Profile, error)
	FindByEmail(ctx context.Context, email string) (*profile.Profile, error)
	Execute(ctx context.Context, id domain.ProfileID, validate func(*profile.Profile) error, mutate func(*profile.Profile)) (*profile.Profile, error)
}

// AccountIssuer creates and checks credentials on behalf of a submission.
type AccountIssuer interface {
	PrepareAccount(ctx context.Context, email, password, displayName string) (*profile.Profile, string, error)
	CheckPassword(ctx context.Context, p *profile.Profile, plain string) error
	QueueVerification(ctx context.Context, p *profile.Profile, token string)
}

type RateLimiter interface {
	Enforce(ctx context.Context, action rlmodels.Action, subjects ...rlmodels.Subject) error
}

type Authorizer interface {
	Require(ctx context.Context, principal *domain.Principal, c authz.Capability) error
}

// Publisher receives committed transitions. Publish must not block.
type Publisher interface {
	Publish(ctx context.Context, event models.TransitionEvent)
}

type Service struct {
	profiles   ProfileStore
	accounts   AccountIssuer
	limiter    RateLimiter
	guard      Authorizer
	publishers []Publisher
	tx         txcontext.Runner
	auditor    audit.Appender
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
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

// WithPublisher adds a transition subscriber. Subscribers see events in
// registration order.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publishers = append(s.publishers, p)
		}
	}
}

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

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(profiles ProfileStore, accounts AccountIssuer, opts ...Option) (*Service, error) {
	if profiles == nil {
		return nil, errors.New("profile store is required")
	}
	if accounts == nil {
		return nil, errors.New("account issuer is required")
	}
	svc := &Service{
		profiles: profiles,
		accounts: accounts,
		guard:    authz.NewGuard(),
		tx:       txcontext.NopRunner{},
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
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

func (s *Service) publish(ctx context.Context, event models.TransitionEvent) {
	for _, p := range s.publishers {
		p.Publish(ctx, event)
	}
}

func (s *Service) record(ctx context.Context, event audit.Event) error {
	return audit.Record(ctx, s.logger, s.auditor, event)
}
