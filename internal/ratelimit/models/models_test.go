package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vcc/pkg/domain-errors"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "rl:login:ip:203.0.113.9", Key(ActionLogin, IP("203.0.113.9")))
	assert.Equal(t, "rl:login:ip:__1", Key(ActionLogin, IP("::1")))
	assert.Equal(t, "rl:submit:email:user_admin@example.com", Key(ActionSubmit, Email("user:admin@example.com")))
}

func TestDefaultPolicies(t *testing.T) {
	p := DefaultPolicies()
	assert.Equal(t, Policy{Limit: 5, Window: 15 * time.Minute}, p[ActionLogin])
	assert.Equal(t, Policy{Limit: 3, Window: time.Hour}, p[ActionRegister])
	assert.Equal(t, Policy{Limit: 3, Window: 24 * time.Hour}, p[ActionSubmit])
	assert.Equal(t, Policy{Limit: 3, Window: time.Hour}, p[ActionResendVerification])
	for action := range p {
		assert.True(t, action.IsValid())
	}
}

func TestNewSubject(t *testing.T) {
	s, err := NewSubject(ScopeEmail, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, Email("a@b.co"), s)

	_, err = NewSubject("device", "x")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	_, err = NewSubject(ScopeIP, "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}
