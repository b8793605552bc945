package identity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteUser is returned when a backend user payload is missing the
// fields every account must carry.
var ErrIncompleteUser = errors.New("user payload missing uid or email")

// RawUser is a user object as the backend returns it: every field beyond
// uid/email is optional and defaulted during normalization. Pointer fields
// distinguish "absent" from an explicit zero value.
type RawUser struct {
	UID            string  `json:"uid"`
	Email          string  `json:"email"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	ProfilePicture *string `json:"profilePicture"`
	Role           string  `json:"role"`
	Active         *bool   `json:"isActive"`
}

// Normalize converts a raw backend user payload into an Identity. All
// defaulting rules live here:
//
//   - first/last name are trimmed, absent means empty string
//   - an empty profile picture collapses to nil (fallback avatar)
//   - role defaults to RoleUser when absent
//   - active defaults to true unless the backend explicitly sent false
//
// Normalize does not enforce the admin gate; rejecting non-admin identities
// is session policy, not payload shape.
func Normalize(raw RawUser) (Identity, error) {
	uid := strings.TrimSpace(raw.UID)
	email := strings.TrimSpace(raw.Email)
	if uid == "" || email == "" {
		return Identity{}, fmt.Errorf("%w: uid=%q email=%q", ErrIncompleteUser, raw.UID, raw.Email)
	}

	role := Role(strings.TrimSpace(strings.ToLower(raw.Role)))
	if role == "" {
		role = RoleUser
	}

	var picture *string
	if raw.ProfilePicture != nil && strings.TrimSpace(*raw.ProfilePicture) != "" {
		p := *raw.ProfilePicture
		picture = &p
	}

	active := true
	if raw.Active != nil {
		active = *raw.Active
	}

	return Identity{
		UID:            uid,
		Email:          email,
		FirstName:      strings.TrimSpace(raw.FirstName),
		LastName:       strings.TrimSpace(raw.LastName),
		ProfilePicture: picture,
		Role:           role,
		Active:         active,
	}, nil
}
