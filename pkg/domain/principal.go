package domain

// Principal is the authenticated actor passed explicitly into every
// service call. A nil *Principal means an anonymous caller.
type Principal struct {
	ID          ProfileID
	Email       string
	DisplayName string
	Roles       RoleSet
	SessionID   SessionID
}

// HasAnyRole is nil-safe.
func (p *Principal) HasAnyRole(roles ...Role) bool {
	if p == nil {
		return false
	}
	return p.Roles.HasAny(roles...)
}
