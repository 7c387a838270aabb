package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vcc/pkg/domain"
)

func TestAccessorsDefaultToZero(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, Principal(ctx))
	assert.Empty(t, SessionToken(ctx))
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, RequestID(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}

func TestAccessorsRoundTrip(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &domain.Principal{ID: domain.NewProfileID(), Email: "a@example.com"}

	ctx := WithPrincipal(context.Background(), p)
	ctx = WithSessionToken(ctx, "tok")
	ctx = WithClientMetadata(ctx, "203.0.113.7", "curl/8")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTime(ctx, fixed)

	assert.Same(t, p, Principal(ctx))
	assert.Equal(t, "tok", SessionToken(ctx))
	assert.Equal(t, "203.0.113.7", ClientIP(ctx))
	assert.Equal(t, "curl/8", UserAgent(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, fixed, Now(ctx))
}
