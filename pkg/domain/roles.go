package domain

import (
	"encoding/json"
	"strings"

	dErrors "vcc/pkg/domain-errors"
)

// Role is one of the fixed authorization roles.
type Role string

const (
	RoleMember   Role = "MEMBER"
	RoleReviewer Role = "REVIEWER"
	RoleApprover Role = "APPROVER"
	RoleAdmin    Role = "ADMIN"
)

// AllRoles lists roles in privilege order.
var AllRoles = []Role{RoleMember, RoleReviewer, RoleApprover, RoleAdmin}

func (r Role) bit() uint8 {
	switch r {
	case RoleMember:
		return 1 << 0
	case RoleReviewer:
		return 1 << 1
	case RoleApprover:
		return 1 << 2
	case RoleAdmin:
		return 1 << 3
	}
	return 0
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool { return r.bit() != 0 }

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown role %q", s)
	}
	return r, nil
}

// RoleSet is a finite set of roles. MEMBER is always a member of every set,
// including the zero value, so a principal can never end up role-less.
type RoleSet struct {
	bits uint8
}

// NewRoleSet builds a set from roles; unknown roles are ignored.
func NewRoleSet(roles ...Role) RoleSet {
	s := RoleSet{bits: RoleMember.bit()}
	for _, r := range roles {
		s.bits |= r.bit()
	}
	return s
}

// ParseRoleSet validates role names. Any unknown name fails the whole set.
func ParseRoleSet(names []string) (RoleSet, error) {
	s := NewRoleSet()
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return RoleSet{}, err
		}
		s.bits |= r.bit()
	}
	return s, nil
}

// Has reports membership.
func (s RoleSet) Has(r Role) bool {
	if r == RoleMember {
		return true
	}
	return r.IsValid() && s.bits&r.bit() != 0
}

// HasAny reports whether at least one of roles is present.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// With returns a copy including r.
func (s RoleSet) With(r Role) RoleSet {
	return NewRoleSet(append(s.Roles(), r)...)
}

// Without returns a copy excluding r. Removing MEMBER is a no-op.
func (s RoleSet) Without(r Role) RoleSet {
	if r == RoleMember {
		return s
	}
	out := NewRoleSet(s.Roles()...)
	out.bits &^= r.bit()
	return out
}

// Union merges two sets.
func (s RoleSet) Union(o RoleSet) RoleSet {
	out := NewRoleSet()
	out.bits |= s.bits | o.bits
	return out
}

// Roles lists the set in privilege order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Strings is Roles as plain strings, the persisted form.
func (s RoleSet) Strings() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func (s RoleSet) String() string {
	return strings.Join(s.Strings(), ",")
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *RoleSet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	parsed, err := ParseRoleSet(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
