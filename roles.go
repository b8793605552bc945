package adminauth

import (
	"strings"

	"github.com/spectrum358/adminauth/identity"
)

// Role-helper queries are pure reads of the current session. Each returns
// false on an empty session and never panics, so view code can call them
// without guarding.

// IsAdmin reports whether the session holds an admin identity.
func (s *SessionStore) IsAdmin() bool {
	return s.HasRole(identity.RoleAdmin)
}

// IsUser reports whether the session holds a plain user identity. Under
// the admin-only invariant this is always false for a live session; it
// exists for symmetry with the role model.
func (s *SessionStore) IsUser() bool {
	return s.HasRole(identity.RoleUser)
}

// HasRole reports whether the session identity carries the given role.
// Comparison is case-insensitive to match normalization.
func (s *SessionStore) HasRole(role identity.Role) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	return strings.EqualFold(string(s.current.Role), string(role))
}

// IsAccountActive reports whether the session identity is active.
func (s *SessionStore) IsAccountActive() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.Active
}
