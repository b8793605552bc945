package adminauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/spectrum358/adminauth/identity"
)

// UpdateProfile pushes profile changes to the backend and installs the
// authoritative result as the new session identity. The backend may echo
// the updated user directly; when it only acknowledges success, the fresh
// record is fetched with a follow-up profile call. Either way the whole
// identity is replaced, never patched field by field.
//
// The commit is guarded by the session generation captured before the
// first backend call: a logout or re-login that lands while the update is
// in flight wins, and the update reports ErrSessionSuperseded instead of
// resurrecting a cleared session.
func (s *SessionStore) UpdateProfile(ctx context.Context, updates ProfileUpdate) (*identity.Identity, error) {
	if s == nil || s.backend == nil {
		return nil, ErrStoreNotReady
	}

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	uid := s.current.UID
	email := s.current.Email
	gen := s.gen
	s.mu.Unlock()

	resp, err := s.backend.UpdateProfile(ctx, uid, updates)
	if err != nil {
		s.metricInc(MetricProfileUpdateFailure)
		s.emitAudit(ctx, auditEventProfileUpdateFailed, false, uid, email, err, nil)
		return nil, err
	}

	var raw *identity.RawUser
	switch {
	case resp != nil && resp.User != nil:
		raw = resp.User
	case resp != nil && resp.Message != "":
		// Acknowledged without an echo; fetch the authoritative record.
		prof, err := s.backend.GetProfile(ctx, uid)
		if err != nil {
			s.metricInc(MetricProfileUpdateFailure)
			s.emitAudit(ctx, auditEventProfileUpdateFailed, false, uid, email, err, nil)
			return nil, err
		}
		if prof == nil || prof.User == nil {
			s.metricInc(MetricProfileUpdateFailure)
			s.emitAudit(ctx, auditEventProfileUpdateFailed, false, uid, email, ErrUpdateFailed, nil)
			return nil, ErrUpdateFailed
		}
		raw = prof.User
	default:
		s.metricInc(MetricProfileUpdateFailure)
		s.emitAudit(ctx, auditEventProfileUpdateFailed, false, uid, email, ErrUpdateFailed, nil)
		return nil, ErrUpdateFailed
	}

	id, err := identity.Normalize(*raw)
	if err != nil {
		s.metricInc(MetricProfileUpdateFailure)
		s.emitAudit(ctx, auditEventProfileUpdateFailed, false, uid, email, err, nil)
		return nil, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}

	if err := s.commitIdentityIf(ctx, gen, id); err != nil {
		if errors.Is(err, ErrSessionSuperseded) {
			s.metricInc(MetricProfileUpdateStale)
			s.emitAudit(ctx, auditEventProfileUpdateStale, false, uid, email, err, nil)
			return nil, ErrSessionSuperseded
		}
		s.metricInc(MetricProfileUpdateFailure)
		s.emitAudit(ctx, auditEventProfileUpdateFailed, false, uid, email, err, nil)
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	s.metricInc(MetricProfileUpdateSuccess)
	s.emitAudit(ctx, auditEventProfileUpdated, true, id.UID, id.Email, nil, nil)
	return cloneIdentity(&id), nil
}
