package adminauth

import (
	"context"
	"encoding/json"

	"github.com/spectrum358/adminauth/identity"
)

// LoginResponse is the backend payload for login and register calls. The
// user field is optional; an authenticated response without one is treated
// as an invalid response, never as a session.
type LoginResponse struct {
	Token string           `json:"token,omitempty"`
	User  *identity.RawUser `json:"user,omitempty"`
}

// ProfileResponse is the backend payload for a profile fetch. A success
// with a nil user means the account no longer exists.
type ProfileResponse struct {
	User *identity.RawUser `json:"user,omitempty"`
}

// UpdateResponse is the backend payload for a profile update. Some backend
// versions echo the updated user, others only acknowledge with a message;
// the store handles both.
type UpdateResponse struct {
	Message string           `json:"message,omitempty"`
	User    *identity.RawUser `json:"user,omitempty"`
}

// RegisterRequest carries the fields for account creation. Role and
// profile picture are optional; the backend applies its own defaults and
// the resulting user is normalized like any other payload.
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	Role           string `json:"role,omitempty"`
}

// AdminRegisterRequest creates an account on behalf of someone else. The
// payload is passed through to the backend as-is.
type AdminRegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	Role           string `json:"role,omitempty"`
	Active         *bool  `json:"isActive,omitempty"`
}

// ProfileUpdate lists the mutable profile fields. Nil pointers are omitted
// from the request so the backend only touches what the caller set.
type ProfileUpdate struct {
	FirstName      *string `json:"firstName,omitempty"`
	LastName       *string `json:"lastName,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// AuthBackend is the remote authentication capability this module consumes.
// Every call is a network round-trip that may fail with an error carrying a
// human-readable message; implementations must never return a nil response
// together with a nil error.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	AdminRegisterUser(ctx context.Context, req AdminRegisterRequest) (json.RawMessage, error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context, uid string) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, uid string, updates ProfileUpdate) (*UpdateResponse, error)
}

// Snapshot is a point-in-time view of the session published to readers and
// subscribers. Identity is a copy; mutating it does not affect the store.
type Snapshot struct {
	Identity      *identity.Identity
	Authenticated bool
	Loading       bool
	Generation    uint64
}
