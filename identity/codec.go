package identity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StorageKey is the single fixed key under which both storage tiers keep
// the serialized session record.
const StorageKey = "spectrum_user"

// SchemaVersion is the persisted record schema. Bump on any field change;
// records with an unknown version decode as corrupt and get purged rather
// than silently misread.
const SchemaVersion = 1

// ErrCorruptRecord is returned when a persisted session record cannot be
// deserialized. Callers treat it as silent data loss: purge and continue
// unauthenticated, never surface it to the user.
var ErrCorruptRecord = errors.New("corrupt session record")

type persistedRecord struct {
	Ver            int     `json:"ver"`
	UID            string  `json:"uid"`
	Email          string  `json:"email"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	ProfilePicture *string `json:"profilePicture"`
	Role           string  `json:"role"`
	Active         bool    `json:"isActive"`
}

// Encode serializes an identity for storage.
func Encode(id Identity) ([]byte, error) {
	if id.UID == "" || id.Email == "" {
		return nil, fmt.Errorf("encode session record: %w", ErrIncompleteUser)
	}
	return json.Marshal(persistedRecord{
		Ver:            SchemaVersion,
		UID:            id.UID,
		Email:          id.Email,
		FirstName:      id.FirstName,
		LastName:       id.LastName,
		ProfilePicture: id.ProfilePicture,
		Role:           string(id.Role),
		Active:         id.Active,
	})
}

// Decode deserializes a stored session record. Any failure, including a
// schema version mismatch or a record missing uid/email, is reported as
// ErrCorruptRecord.
func Decode(data []byte) (Identity, error) {
	var rec persistedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if rec.Ver != SchemaVersion {
		return Identity{}, fmt.Errorf("%w: schema version %d", ErrCorruptRecord, rec.Ver)
	}
	if rec.UID == "" || rec.Email == "" {
		return Identity{}, fmt.Errorf("%w: missing uid or email", ErrCorruptRecord)
	}
	return Identity{
		UID:            rec.UID,
		Email:          rec.Email,
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		ProfilePicture: rec.ProfilePicture,
		Role:           Role(rec.Role),
		Active:         rec.Active,
	}, nil
}
