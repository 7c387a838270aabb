package models

import (
	"time"

	dErrors "vcc/pkg/domain-errors"
)

// Action names a rate-limited operation.
type Action string

const (
	ActionLogin              Action = "login"
	ActionRegister           Action = "register"
	ActionSubmit             Action = "submit"
	ActionResendVerification Action = "resend_verification"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionLogin, ActionRegister, ActionSubmit, ActionResendVerification:
		return true
	}
	return false
}

// Scope names what a window is counted against.
type Scope string

const (
	ScopeIP        Scope = "ip"
	ScopeEmail     Scope = "email"
	ScopePrincipal Scope = "principal"
)

// Policy is the sliding-window budget of an action: at most Limit admitted
// attempts in any trailing Window, counted separately per scope.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicies are the production budgets.
func DefaultPolicies() map[Action]Policy {
	return map[Action]Policy{
		ActionLogin:              {Limit: 5, Window: 15 * time.Minute},
		ActionRegister:           {Limit: 3, Window: time.Hour},
		ActionSubmit:             {Limit: 3, Window: 24 * time.Hour},
		ActionResendVerification: {Limit: 3, Window: time.Hour},
	}
}

// Subject is one identifier an action is counted against.
type Subject struct {
	Scope Scope
	ID    string
}

func IP(ip string) Subject { return Subject{Scope: ScopeIP, ID: ip} }
func Email(email string) Subject { return Subject{Scope: ScopeEmail, ID: email} }
func Principal(id string) Subject { return Subject{Scope: ScopePrincipal, ID: id} }
func (s Subject) IsZero() bool { return s.ID == "" }

// NewSubject validates scope and identifier.
func NewSubject(scope Scope, id string) (Subject, error) {
	switch scope {
	case ScopeIP, ScopeEmail, ScopePrincipal:
	default:
		return Subject{}, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown rate limit scope %q", scope)
	}
	if id == "" {
		return Subject{}, dErrors.New(dErrors.CodeInvariantViolation, "rate limit identifier cannot be empty")
	}
	return Subject{Scope: scope, ID: id}, nil
}

// RateLimitResult represents the outcome of a rate limit check.
// Fallback is set when the in-process store answered instead of the
// distributed one.
type RateLimitResult struct {
	Allowed    bool          `json:"allowed"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetAt    time.Time     `json:"reset_at"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	Fallback   bool          `json:"fallback,omitempty"`
}
