// Package notify delivers transactional email for lifecycle transitions and
// account verification. Delivery is asynchronous and best effort: callers
// never wait on, or see failures from, the mail transport.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	lifecycle "vcc/internal/lifecycle/models"
	"vcc/internal/notify/metrics"
	"vcc/internal/notify/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/privacy"
	textutil "vcc/pkg/platform/strings"
	"vcc/pkg/requestcontext"
)

const (
	defaultWorkers     = 2
	defaultQueueSize   = 256
	defaultSendTimeout = 10 * time.Second
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, msg models.Message) error
}

// RecipientDirectory resolves role audiences to addresses.
type RecipientDirectory interface {
	EmailsByRole(ctx context.Context, role domain.Role) ([]string, error)
}

type job struct {
	ctx      context.Context
	event    *lifecycle.TransitionEvent
	messages []models.Message
}

// Dispatcher fans lifecycle events and verification requests out to a pool
// of workers. Publish and SendVerification never block; a full queue drops
// the job.
type Dispatcher struct {
	sender      Sender
	recipients  RecipientDirectory
	links       Links
	workers     int
	sendTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics

	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type Option func(*Dispatcher)

func WithBaseURL(base string) Option {
	return func(d *Dispatcher) {
		d.links = NewLinks(base)
	}
}

func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.jobs = make(chan job, n)
		}
	}
}

func WithSendTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.sendTimeout = t
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New starts the worker pool. Call Close to drain it.
func New(sender Sender, recipients RecipientDirectory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:      sender,
		recipients:  recipients,
		links:       NewLinks(""),
		workers:     defaultWorkers,
		sendTimeout: defaultSendTimeout,
		logger:      slog.New(slog.DiscardHandler),
		jobs:        make(chan job, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	for range d.workers {
		d.wg.Go(d.run)
	}
	return d
}

// Publish queues the emails owed for a committed transition.
func (d *Dispatcher) Publish(ctx context.Context, event lifecycle.TransitionEvent) {
	d.enqueue(ctx, job{event: &event})
}

// SendVerification queues the email verification link for to.
func (d *Dispatcher) SendVerification(ctx context.Context, to, name, token string) {
	d.enqueue(ctx, job{messages: []models.Message{verificationMessage(d.links, to, name, token)}})
}

// Close stops accepting jobs and waits for queued ones until ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, j job) {
	// Jobs outlive the request; keep its values (request id) but not its deadline.
	j.ctx = context.WithoutCancel(ctx)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.WarnContext(ctx, "notification dropped after shutdown",
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	select {
	case d.jobs <- j:
		if d.metrics != nil {
			d.metrics.SetQueueDepth(len(d.jobs))
		}
	default:
		if d.metrics != nil {
			d.metrics.IncrementDropped()
		}
		d.logger.ErrorContext(ctx, "notification queue full, dropping job",
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (d *Dispatcher) run() {
	for j := range d.jobs {
		if d.metrics != nil {
			d.metrics.SetQueueDepth(len(d.jobs))
		}
		messages := j.messages
		if j.event != nil {
			messages = messagesFor(d.links, *j.event)
		}
		for _, msg := range messages {
			d.deliver(j.ctx, msg)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg models.Message) {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	to, err := d.resolve(ctx, msg)
	if err != nil {
		d.fail(ctx, msg, "recipients", err)
		return
	}
	if len(to) == 0 {
		d.fail(ctx, msg, "no_recipients", nil)
		return
	}
	msg.To = to

	if err := d.sender.Send(ctx, msg); err != nil {
		reason := "transport"
		if errors.Is(err, models.ErrTransportUnconfigured) {
			reason = "unconfigured"
		}
		d.fail(ctx, msg, reason, err)
		return
	}
	if d.metrics != nil {
		d.metrics.ObserveSent(msg.Template)
	}
	d.logger.InfoContext(ctx, "notification sent",
		"template", msg.Template,
		"recipients", len(to),
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (d *Dispatcher) resolve(ctx context.Context, msg models.Message) ([]string, error) {
	var role domain.Role
	switch msg.Audience {
	case models.AudienceReviewers:
		role = domain.RoleReviewer
	case models.AudienceApprovers:
		role = domain.RoleApprover
	default:
		return textutil.DedupeAndTrim(msg.To), nil
	}
	if d.recipients == nil {
		return nil, nil
	}
	emails, err := d.recipients.EmailsByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	return textutil.DedupeAndTrim(emails), nil
}

func (d *Dispatcher) fail(ctx context.Context, msg models.Message, reason string, err error) {
	if d.metrics != nil {
		d.metrics.ObserveFailure(msg.Template, reason)
	}
	attrs := []any{
		"template", msg.Template,
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	}
	if len(msg.To) == 1 {
		attrs = append(attrs, "to", privacy.MaskEmail(msg.To[0]))
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	if reason == "unconfigured" || reason == "no_recipients" {
		d.logger.WarnContext(ctx, "notification skipped", attrs...)
		return
	}
	d.logger.ErrorContext(ctx, "notification failed", attrs...)
}
