package adminauth

import "context"

// Logout ends the session. The backend call is best-effort: whether it
// succeeds, fails, or the network is down, local teardown happens
// unconditionally: memory cleared, both tiers purged, generation bumped
// so in-flight async results cannot resurrect the session. The returned
// error only ever reports a tier purge failure.
func (s *SessionStore) Logout(ctx context.Context) error {
	if s == nil || s.tiers == nil {
		return ErrStoreNotReady
	}

	var uid, email string
	if cur := s.Current(); cur != nil {
		uid, email = cur.UID, cur.Email
	}

	var backendErr error
	if s.backend != nil {
		backendErr = s.backend.Logout(ctx)
	}

	purgeErr := s.clearSession(ctx)

	s.metricInc(MetricLogout)
	s.emitAudit(ctx, auditEventLogout, backendErr == nil, uid, email, backendErr, nil)

	return purgeErr
}
