package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	lifecycle "vcc/internal/lifecycle/models"
	"vcc/internal/notify/metrics"
	"vcc/internal/notify/models"
	profile "vcc/internal/profile/models"
	"vcc/pkg/domain"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []models.Message
	err  error
	got  chan models.Message
}

func newRecordingSender() *recordingSender {
	return &recordingSender{got: make(chan models.Message, 16)}
}

func (s *recordingSender) Send(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	err := s.err
	s.mu.Unlock()
	s.got <- msg
	return err
}

type directoryFunc func(ctx context.Context, role domain.Role) ([]string, error)

func (f directoryFunc) EmailsByRole(ctx context.Context, role domain.Role) ([]string, error) {
	return f(ctx, role)
}

func staffDirectory() directoryFunc {
	return func(_ context.Context, role domain.Role) ([]string, error) {
		switch role {
		case domain.RoleReviewer:
			return []string{"rev1@example.com", "rev2@example.com", "rev1@example.com"}, nil
		case domain.RoleApprover:
			return []string{"appr@example.com"}, nil
		}
		return nil, nil
	}
}

func event(from, to profile.Status) lifecycle.TransitionEvent {
	return lifecycle.TransitionEvent{
		ProfileID:      domain.NewProfileID(),
		ApplicantName:  "Ada",
		ApplicantRole:  "Developer",
		ApplicantEmail: "ada@example.com",
		PreviousStatus: from,
		NewStatus:      to,
		OccurredAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

type DispatcherSuite struct {
	suite.Suite
	sender     *recordingSender
	metrics    *metrics.Metrics
	dispatcher *Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.sender = newRecordingSender()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.dispatcher = New(s.sender, staffDirectory(),
		WithBaseURL("https://vcc.example.org/"),
		WithWorkers(1),
		WithMetrics(s.metrics),
	)
}

func (s *DispatcherSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Require().NoError(s.dispatcher.Close(ctx))
}

func (s *DispatcherSuite) receive() models.Message {
	select {
	case msg := <-s.sender.got:
		return msg
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for a notification")
		return models.Message{}
	}
}

func (s *DispatcherSuite) TestSubmissionNotifiesReviewersAndApplicant() {
	e := event(profile.StatusNone, profile.StatusPending)
	s.dispatcher.Publish(context.Background(), e)

	reviewers := s.receive()
	s.Equal("submitted_reviewers", reviewers.Template)
	s.Equal([]string{"rev1@example.com", "rev2@example.com"}, reviewers.To)
	s.Equal("New application: Ada (Developer)", reviewers.Subject)
	s.Contains(reviewers.Text, "Review queue: https://vcc.example.org/review")
	s.Contains(reviewers.Text, "https://vcc.example.org/directory/"+e.ProfileID.String())

	applicant := s.receive()
	s.Equal([]string{"ada@example.com"}, applicant.To)
	s.Equal("We've received your application", applicant.Subject)
	s.Contains(applicant.Text, "https://vcc.example.org/member")
}

func (s *DispatcherSuite) TestReadyNotifiesApprovers() {
	s.dispatcher.Publish(context.Background(), event(profile.StatusPending, profile.StatusReady))

	approvers := s.receive()
	s.Equal([]string{"appr@example.com"}, approvers.To)
	s.Equal("Ready for approval: Ada (Developer)", approvers.Subject)
	s.Equal("Your application advanced to approval", s.receive().Subject)
}

func (s *DispatcherSuite) TestRejectionWordingFollowsStage() {
	s.dispatcher.Publish(context.Background(), event(profile.StatusPending, profile.StatusRejected))
	s.Equal("rejected_review", s.receive().Template)

	s.dispatcher.Publish(context.Background(), event(profile.StatusReady, profile.StatusRejected))
	s.Equal("rejected_final", s.receive().Template)

	s.dispatcher.Publish(context.Background(), event(profile.StatusReady, profile.StatusApproved))
	s.Equal("You're approved!", s.receive().Subject)
}

func (s *DispatcherSuite) TestVerificationLink() {
	s.dispatcher.SendVerification(context.Background(), "ada@example.com", "Ada", "tok123")

	msg := s.receive()
	s.Equal([]string{"ada@example.com"}, msg.To)
	s.Equal("Verify your email address", msg.Subject)
	s.Contains(msg.Text, "https://vcc.example.org/verify-email/tok123")
	s.Contains(msg.Text, "Hi Ada,")
}

func (s *DispatcherSuite) TestTransportFailuresAreCounted() {
	s.sender.mu.Lock()
	s.sender.err = errors.New("smtp down")
	s.sender.mu.Unlock()

	s.dispatcher.Publish(context.Background(), event(profile.StatusReady, profile.StatusApproved))
	s.receive()

	s.Eventually(func() bool {
		return promtest.ToFloat64(s.metrics.Failed.WithLabelValues("approved", "transport")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestNoRecipientsIsSkipped(t *testing.T) {
	sender := newRecordingSender()
	m := metrics.New(prometheus.NewRegistry())
	empty := directoryFunc(func(context.Context, domain.Role) ([]string, error) { return nil, nil })
	d := New(sender, empty, WithMetrics(m))

	d.Publish(context.Background(), event(profile.StatusNone, profile.StatusPending))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 1.0, promtest.ToFloat64(m.Failed.WithLabelValues("submitted_reviewers", "no_recipients")))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "submitted_applicant", sender.sent[0].Template)
}

func TestUnconfiguredTransportIsSwallowed(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	d := New(unconfigured{}, staffDirectory(), WithMetrics(m))

	d.SendVerification(context.Background(), "ada@example.com", "Ada", "tok")
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 1.0, promtest.ToFloat64(m.Failed.WithLabelValues("verify_email", "unconfigured")))
}

type unconfigured struct{}

func (unconfigured) Send(context.Context, models.Message) error {
	return models.ErrTransportUnconfigured
}

type blockingSender struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSender) Send(context.Context, models.Message) error {
	b.started <- struct{}{}
	<-b.release
	return nil
}

func TestFullQueueDrops(t *testing.T) {
	sender := &blockingSender{started: make(chan struct{}, 8), release: make(chan struct{})}
	m := metrics.New(prometheus.NewRegistry())
	d := New(sender, staffDirectory(), WithWorkers(1), WithQueueSize(1), WithMetrics(m))

	d.SendVerification(context.Background(), "a@example.com", "A", "t1")
	<-sender.started

	d.SendVerification(context.Background(), "b@example.com", "B", "t2")
	d.SendVerification(context.Background(), "c@example.com", "C", "t3")
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Dropped))

	close(sender.release)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.Sent.WithLabelValues("verify_email")))

	d.SendVerification(context.Background(), "late@example.com", "L", "t4")
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Dropped), "jobs after Close are not counted as overflow")
}

func TestLinksNormalizeBase(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/member", NewLinks("").URL("/member"))
	assert.Equal(t, "https://x.org/review", NewLinks(" https://x.org// ").URL("review"))
}
