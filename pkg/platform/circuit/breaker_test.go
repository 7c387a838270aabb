package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// outcome is one recorded call: f for a primary failure, s for a success.
type outcome byte

func replay(b *Breaker, outcomes string) (last StateChange) {
	for _, o := range []byte(outcomes) {
		if outcome(o) == 'f' {
			_, last = b.RecordFailure()
		} else {
			_, last = b.RecordSuccess()
		}
	}
	return last
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name       string
		failures   int
		successes  int
		outcomes   string
		wantOpen   bool
		wantChange StateChange
	}{
		{"stays closed below threshold", 3, 2, "ff", false, StateChange{}},
		{"opens on threshold", 3, 2, "fff", true, StateChange{Opened: true}},
		{"success resets the failure run", 3, 2, "ffsff", false, StateChange{}},
		{"one success is not enough to close", 1, 2, "fs", true, StateChange{}},
		{"closes after success threshold", 1, 2, "fss", false, StateChange{Closed: true}},
		{"failure while open restarts recovery", 1, 3, "fssfss", true, StateChange{}},
		{"already open reports no change", 1, 2, "ff", true, StateChange{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("ratelimit", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.successes))
			change := replay(b, tt.outcomes)
			assert.Equal(t, tt.wantOpen, b.IsOpen())
			assert.Equal(t, tt.wantChange, change)
		})
	}
}

func TestBreakerRoutesCallsWhileOpen(t *testing.T) {
	b := New("ratelimit", WithFailureThreshold(1), WithSuccessThreshold(2))
	assert.Equal(t, "ratelimit", b.Name())
	assert.Equal(t, "closed", b.State().String())

	useFallback, _ := b.RecordFailure()
	assert.True(t, useFallback)
	assert.Equal(t, "open", b.State().String())

	// A healthy primary answer is still discarded until the breaker closes.
	usePrimary, _ := b.RecordSuccess()
	assert.False(t, usePrimary)
	usePrimary, _ = b.RecordSuccess()
	assert.True(t, usePrimary)
}

func TestBreakerReset(t *testing.T) {
	b := New("ratelimit", WithFailureThreshold(1))
	replay(b, "f")
	b.Reset()
	assert.Equal(t, StateClosed, b.State())

	b2 := New("ratelimit", WithFailureThreshold(2))
	replay(b2, "f")
	b2.Reset()
	replay(b2, "f")
	assert.False(t, b2.IsOpen())
}
