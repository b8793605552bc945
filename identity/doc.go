// Package identity defines the normalized user record held by admin
// sessions, the normalization rules applied to raw backend payloads, and
// the codec for the record persisted in the storage tiers.
package identity
