package identity

import "strings"

// Role is the access level assigned to an account by the backend.
// The admin console only ever holds admin sessions; RoleUser exists because
// registration may create accounts that cannot sign in here.
type Role string

const (
	// RoleAdmin grants access to the admin console.
	RoleAdmin Role = "admin"
	// RoleUser is the default role for accounts created without an explicit one.
	RoleUser Role = "user"
)

// Identity is the normalized user record held by a session. Instances are
// produced by Normalize or Decode and treated as immutable; profile updates
// replace the whole record rather than patching fields.
type Identity struct {
	UID            string
	Email          string
	FirstName      string
	LastName       string
	ProfilePicture *string
	Role           Role
	Active         bool
}

// IsAdmin reports whether the identity may hold a session in this console.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// DisplayName is the trimmed concatenation of first and last name.
// It is re-derived on every call so a whole-record replacement can never
// leave a stale cached name behind.
func (id Identity) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(id.FirstName) + " " + strings.TrimSpace(id.LastName))
}

// AvatarURL returns the profile picture when one is set, otherwise the
// deterministic fallback avatar derived from the email.
func (id Identity) AvatarURL() string {
	if id.ProfilePicture != nil && *id.ProfilePicture != "" {
		return *id.ProfilePicture
	}
	return FallbackAvatarURL(id.Email)
}
