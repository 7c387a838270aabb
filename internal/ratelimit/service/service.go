package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"vcc/internal/ratelimit/metrics"
	"vcc/internal/ratelimit/models"
	"vcc/internal/ratelimit/store/bucket"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
	"vcc/pkg/platform/circuit"
	"vcc/pkg/platform/privacy"
)

// BucketStore is a sliding-window counter backend.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

const defaultBackendTimeout = 250 * time.Millisecond

// Service answers rate limit checks from the distributed store when one is
// configured, and from the in-process fallback otherwise or while the
// circuit breaker is open.
type Service struct {
	primary  BucketStore
	fallback *bucket.InMemoryBucketStore
	breaker  *circuit.Breaker
	policies map[models.Action]models.Policy
	timeout  time.Duration
	disabled bool
	auditor  audit.Appender
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

// WithPrimary sets the distributed store. Without one every result is a fallback result.
func WithPrimary(store BucketStore) Option {
	return func(s *Service) {
		s.primary = store
	}
}

func WithPolicies(policies map[models.Action]models.Policy) Option {
	return func(s *Service) {
		s.policies = policies
	}
}

func WithBackendTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

// WithDisabled turns Enforce into a no-op (local development).
func WithDisabled(disabled bool) Option {
	return func(s *Service) {
		s.disabled = disabled
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

func New(fallback *bucket.InMemoryBucketStore, opts ...Option) (*Service, error) {
	if fallback == nil {
		return nil, errors.New("fallback bucket store is required")
	}
	svc := &Service{
		fallback: fallback,
		breaker:  circuit.New("ratelimit"),
		policies: models.DefaultPolicies(),
		timeout:  defaultBackendTimeout,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check admits one attempt against key. Backend errors never surface: the
// fallback answers instead.
func (s *Service) Check(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	if s.primary == nil {
		return s.checkFallback(ctx, key, limit, window)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	result, err := s.primary.Allow(callCtx, key, limit, window)
	cancel()
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementBackendErrors()
		}
		_, change := s.breaker.RecordFailure()
		s.reportBreaker(ctx, change, err)
		return s.checkFallback(ctx, key, limit, window)
	}

	usePrimary, change := s.breaker.RecordSuccess()
	s.reportBreaker(ctx, change, nil)
	if !usePrimary {
		return s.checkFallback(ctx, key, limit, window)
	}
	return result, nil
}

func (s *Service) checkFallback(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	result, err := s.fallback.Allow(ctx, key, limit, window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check rate limit")
	}
	result.Fallback = true
	if s.metrics != nil {
		s.metrics.IncrementFallback()
	}
	return result, nil
}

func (s *Service) reportBreaker(ctx context.Context, change circuit.StateChange, cause error) {
	switch {
	case change.Opened:
		s.logger.WarnContext(ctx, "rate limit backend unhealthy, using in-process fallback",
			"breaker", s.breaker.Name(), "error", cause)
		if s.metrics != nil {
			s.metrics.SetBreakerOpen(true)
		}
	case change.Closed:
		s.logger.InfoContext(ctx, "rate limit backend recovered", "breaker", s.breaker.Name())
		if s.metrics != nil {
			s.metrics.SetBreakerOpen(false)
		}
	}
}

// Enforce counts one attempt of action against every subject in parallel.
// All windows must admit it; otherwise the error carries the longest
// retry-after among the denying windows. Subjects with an empty identifier
// are skipped.
func (s *Service) Enforce(ctx context.Context, action models.Action, subjects ...models.Subject) error {
	if s.disabled {
		return nil
	}
	policy, ok := s.policies[action]
	if !ok {
		// Default-deny: an unconfigured action is never unlimited.
		s.logger.ErrorContext(ctx, "rate limit policy missing", "action", string(action))
		return dErrors.NewRateLimited("too many attempts, please try again later", time.Minute)
	}

	results := make([]*models.RateLimitResult, len(subjects))
	g, gctx := errgroup.WithContext(ctx)
	for i, subject := range subjects {
		if subject.IsZero() {
			continue
		}
		g.Go(func() error {
			res, err := s.Check(gctx, models.Key(action, subject), policy.Limit, policy.Window)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
			"action", string(action), "error", err)
		return nil
	}

	var retryAfter time.Duration
	var denied []string
	for i, res := range results {
		if res == nil || res.Allowed {
			continue
		}
		denied = append(denied, string(subjects[i].Scope))
		retryAfter = max(retryAfter, res.RetryAfter)
	}
	if s.metrics != nil {
		s.metrics.ObserveDecision(string(action), len(denied) == 0)
	}
	if len(denied) == 0 {
		return nil
	}

	s.recordDenial(ctx, action, subjects, denied, retryAfter)
	return dErrors.NewRateLimited("too many attempts, please try again later", retryAfter)
}

func (s *Service) recordDenial(ctx context.Context, action models.Action, subjects []models.Subject, denied []string, retryAfter time.Duration) {
	var subject string
	for _, sub := range subjects {
		switch sub.Scope {
		case models.ScopeEmail:
			subject = privacy.MaskEmail(sub.ID)
		case models.ScopeIP:
			if subject == "" {
				subject = privacy.AnonymizeIP(sub.ID)
			}
		case models.ScopePrincipal:
			if subject == "" {
				subject = sub.ID
			}
		}
	}
	err := audit.Record(ctx, s.logger, s.auditor, audit.Event{
		Action:   string(audit.EventRateLimitExceeded),
		Subject:  subject,
		Decision: "denied",
		Reason:   string(action) + " limit exceeded on " + strings.Join(denied, ",") + ", retry in " + retryAfter.Round(time.Second).String(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record rate limit denial", "error", err)
	}
}

// SweepFallback drops idle fallback buckets.
func (s *Service) SweepFallback(ctx context.Context) int {
	n := s.fallback.Sweep()
	if n > 0 {
		s.logger.DebugContext(ctx, "swept idle rate limit buckets", "count", n)
		if s.metrics != nil {
			s.metrics.AddSwept(n)
		}
	}
	return n
}

// ScheduleSweep registers SweepFallback on c with a cron spec such as "@every 5m".
func (s *Service) ScheduleSweep(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		s.SweepFallback(context.Background())
	})
}
