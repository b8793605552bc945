// Package adminauth is the authentication and session-lifecycle core of
// the Spectrum 358 admin console. It owns the answer to "who is logged
// in": role-gated login, restore-and-reconcile hydration of persisted
// sessions, profile-update synchronization, and unconditional teardown.
//
// The store is built through [Builder] and holds exactly one identity at a
// time, always with role admin: non-admin records are rejected at login
// and purged wherever hydration or reconciliation finds them. State is
// persisted through two storage tiers (package tier) and validated against
// a remote [AuthBackend] (package backend provides the REST client).
//
// # Consistency model
//
// Within one operation the in-memory identity and the persisted record
// move together; observers never see one without the other. Asynchronous
// completions (the hydration reconciliation fetch, in-flight profile
// updates) are guarded by a session generation counter captured at their
// start, so a login or logout that lands in the meantime always wins over
// the stale result.
//
// # Error surface
//
// Operations return sentinel errors with human-readable messages
// ([ErrPermissionDenied], [ErrAccountDeactivated], ...) and never panic.
// Corrupt persisted records are recovered silently: purge both tiers and
// continue unauthenticated. Transient backend failures during
// reconciliation keep the optimistic session; the same failures during an
// explicit user action are returned to the caller, unretried.
package adminauth
