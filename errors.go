package adminauth

import "errors"

var (
	// ErrStoreNotReady is returned when an operation is invoked on a store
	// missing its backend or tiers.
	ErrStoreNotReady = errors.New("session store not ready")
	// ErrInvalidResponse is returned when the backend reports success but
	// the payload carries no usable user.
	ErrInvalidResponse = errors.New("invalid response from server")
	// ErrAccountDeactivated is returned when login succeeds for an account
	// the backend marked inactive.
	ErrAccountDeactivated = errors.New("account deactivated")
	// ErrPermissionDenied is returned when login succeeds for an account
	// whose role is not admin.
	ErrPermissionDenied = errors.New("permission denied, admin only")
	// ErrNoSession is returned by operations that require a logged-in user.
	ErrNoSession = errors.New("no user logged in")
	// ErrUpdateFailed is returned when a profile update neither echoes a
	// user nor acknowledges success.
	ErrUpdateFailed = errors.New("failed to update profile")
	// ErrSessionSuperseded is returned when an in-flight operation resolves
	// after the session it started from was replaced or cleared.
	ErrSessionSuperseded = errors.New("session superseded")
)
