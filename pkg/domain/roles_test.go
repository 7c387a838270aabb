package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vcc/pkg/domain-errors"
)

func TestRoleSet_MemberAlwaysPresent(t *testing.T) {
	var zero RoleSet
	assert.True(t, zero.Has(RoleMember))
	assert.Equal(t, []string{"MEMBER"}, zero.Strings())

	s := NewRoleSet(RoleAdmin).Without(RoleMember)
	assert.True(t, s.Has(RoleMember))
	assert.True(t, s.Has(RoleAdmin))
}

func TestRoleSet_Operations(t *testing.T) {
	s := NewRoleSet(RoleReviewer)
	assert.True(t, s.HasAny(RoleApprover, RoleReviewer))
	assert.False(t, s.HasAny(RoleApprover, RoleAdmin))

	s = s.With(RoleApprover)
	assert.Equal(t, []Role{RoleMember, RoleReviewer, RoleApprover}, s.Roles())

	s = s.Without(RoleReviewer)
	assert.Equal(t, "MEMBER,APPROVER", s.String())

	u := NewRoleSet(RoleReviewer).Union(NewRoleSet(RoleAdmin))
	assert.Equal(t, []string{"MEMBER", "REVIEWER", "ADMIN"}, u.Strings())
}

func TestParseRoleSet(t *testing.T) {
	t.Run("case insensitive and deduplicated", func(t *testing.T) {
		s, err := ParseRoleSet([]string{"reviewer", " Reviewer ", "ADMIN"})
		require.NoError(t, err)
		assert.Equal(t, []string{"MEMBER", "REVIEWER", "ADMIN"}, s.Strings())
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := ParseRoleSet([]string{"REVIEWER", "SUPERUSER"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("empty input yields member only", func(t *testing.T) {
		s, err := ParseRoleSet(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"MEMBER"}, s.Strings())
	})
}

func TestRoleSet_JSON(t *testing.T) {
	b, err := json.Marshal(NewRoleSet(RoleApprover))
	require.NoError(t, err)
	assert.JSONEq(t, `["MEMBER","APPROVER"]`, string(b))

	var s RoleSet
	require.NoError(t, json.Unmarshal([]byte(`["ADMIN"]`), &s))
	assert.True(t, s.Has(RoleAdmin))
	assert.True(t, s.Has(RoleMember))
}

func TestPrincipal_NilSafe(t *testing.T) {
	var p *Principal
	assert.False(t, p.HasAnyRole(RoleMember))
}
