package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	lifecycle "vcc/internal/lifecycle/models"
	profile "vcc/internal/profile/models"
	"vcc/pkg/domain"
	"vcc/pkg/requestcontext"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.records = append(f.records, r)
	promise(r, f.err)
}

func transition() lifecycle.TransitionEvent {
	return lifecycle.TransitionEvent{
		ProfileID:      domain.NewProfileID(),
		ApplicantName:  "Ada",
		ApplicantRole:  "Developer",
		ApplicantEmail: "ada@example.com",
		PreviousStatus: profile.StatusPending,
		NewStatus:      profile.StatusReady,
		ActorID:        domain.NewProfileID().String(),
		OccurredAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishEncodesRecord(t *testing.T) {
	producer := &fakeProducer{}
	p := New(producer, "vcc.transitions")
	e := transition()

	p.Publish(requestcontext.WithRequestID(context.Background(), "req-1"), e)

	require.Len(t, producer.records, 1)
	r := producer.records[0]
	assert.Equal(t, "vcc.transitions", r.Topic)
	assert.Equal(t, e.ProfileID.String(), string(r.Key))
	assert.Contains(t, r.Headers, kgo.RecordHeader{Key: "request_id", Value: []byte("req-1")})

	var decoded lifecycle.TransitionEvent
	require.NoError(t, json.Unmarshal(r.Value, &decoded))
	assert.Equal(t, e, decoded)
}

func TestPublishLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	producer := &fakeProducer{err: errors.New("broker unavailable")}
	p := New(producer, "t", WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	p.Publish(context.Background(), transition())

	assert.Contains(t, buf.String(), "failed to stream transition event")
	assert.Contains(t, buf.String(), "broker unavailable")
}
