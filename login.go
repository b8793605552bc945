package adminauth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spectrum358/adminauth/identity"
)

// Login authenticates against the backend and, when the normalized account
// is an active admin, installs it as the session. Every rejection path
// (backend failure, missing user payload, deactivated account, non-admin
// role) leaves any pre-existing session untouched.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*identity.Identity, error) {
	if s == nil || s.backend == nil {
		return nil, ErrStoreNotReady
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.metricInc(MetricLoginFailure)
		s.emitAudit(ctx, auditEventLoginFailure, false, "", email, err, nil)
		return nil, err
	}
	if resp == nil || resp.User == nil {
		s.metricInc(MetricLoginFailure)
		s.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrInvalidResponse, nil)
		return nil, ErrInvalidResponse
	}

	id, err := identity.Normalize(*resp.User)
	if err != nil {
		s.metricInc(MetricLoginFailure)
		s.emitAudit(ctx, auditEventLoginFailure, false, "", email, err, nil)
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if !id.Active {
		s.metricInc(MetricLoginInactive)
		s.emitAudit(ctx, auditEventLoginInactive, false, id.UID, id.Email, ErrAccountDeactivated, nil)
		return nil, ErrAccountDeactivated
	}
	if !id.IsAdmin() {
		s.metricInc(MetricLoginRoleRejected)
		s.emitAudit(ctx, auditEventLoginRoleRejected, false, id.UID, id.Email, ErrPermissionDenied, func() map[string]string {
			return map[string]string{"role": string(id.Role)}
		})
		return nil, ErrPermissionDenied
	}

	if err := s.commitIdentity(ctx, id); err != nil {
		s.metricInc(MetricLoginFailure)
		s.emitAudit(ctx, auditEventLoginFailure, false, id.UID, id.Email, err, nil)
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	s.metricInc(MetricLoginSuccess)
	s.emitAudit(ctx, auditEventLoginSuccess, true, id.UID, id.Email, nil, nil)
	return cloneIdentity(&id), nil
}

// Register creates an account and installs it as the session. Unlike
// Login, any role is accepted and persisted: the admin gate is a sign-in
// policy, not an account-creation policy, so self-registration can create
// accounts that cannot sign in to this console.
func (s *SessionStore) Register(ctx context.Context, req RegisterRequest) (*identity.Identity, error) {
	if s == nil || s.backend == nil {
		return nil, ErrStoreNotReady
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.backend.Register(ctx, req)
	if err != nil {
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, "", req.Email, err, nil)
		return nil, err
	}
	if resp == nil || resp.User == nil {
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, "", req.Email, ErrInvalidResponse, nil)
		return nil, ErrInvalidResponse
	}

	id, err := identity.Normalize(*resp.User)
	if err != nil {
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, "", req.Email, err, nil)
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if err := s.commitIdentity(ctx, id); err != nil {
		s.metricInc(MetricRegisterFailure)
		s.emitAudit(ctx, auditEventRegisterFailure, false, id.UID, id.Email, err, nil)
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	s.metricInc(MetricRegisterSuccess)
	s.emitAudit(ctx, auditEventRegisterSuccess, true, id.UID, id.Email, nil, func() map[string]string {
		return map[string]string{"role": string(id.Role)}
	})
	return cloneIdentity(&id), nil
}

// AdminRegisterUser creates an account for someone else. The current
// session is never touched and the backend's payload and error text pass
// through verbatim.
func (s *SessionStore) AdminRegisterUser(ctx context.Context, req AdminRegisterRequest) (json.RawMessage, error) {
	if s == nil || s.backend == nil {
		return nil, ErrStoreNotReady
	}

	payload, err := s.backend.AdminRegisterUser(ctx, req)
	if err != nil {
		s.metricInc(MetricAdminRegisterFailure)
		s.emitAudit(ctx, auditEventAdminRegisterFailed, false, "", req.Email, err, nil)
		return nil, err
	}

	s.metricInc(MetricAdminRegister)
	s.emitAudit(ctx, auditEventAdminRegisterOK, true, "", req.Email, nil, func() map[string]string {
		return map[string]string{"role": req.Role}
	})
	return payload, nil
}
