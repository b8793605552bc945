package adminauth

import (
	"context"
	"errors"

	"github.com/spectrum358/adminauth/identity"
	"github.com/spectrum358/adminauth/tier"
)

// Hydrate restores a session from the storage tiers, called once at
// application start. A valid admin record is trusted immediately so the UI
// never flickers to the login screen, then reconciled against the backend
// in the background:
//
//   - fresh record with role admin: the local identity and the persisted
//     record are replaced with the normalized backend copy
//   - role no longer admin, or account gone: session revoked, tiers purged
//   - backend unreachable: the optimistic session is kept
//
// Corrupt or non-admin records are purged synchronously, without any
// backend call and without surfacing an error. Repeated calls are no-ops.
func (s *SessionStore) Hydrate(ctx context.Context) {
	if s == nil || s.tiers == nil {
		return
	}

	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return
	}
	s.hydrated = true
	s.loading = true
	s.mu.Unlock()

	data, err := s.tiers.Read(ctx)
	if err != nil {
		if errors.Is(err, tier.ErrNotFound) {
			s.metricInc(MetricHydrateEmpty)
			s.emitAudit(ctx, auditEventHydrateEmpty, true, "", "", nil, nil)
		} else {
			// An unreadable tier gets the same silent recovery as a
			// corrupt record.
			_ = s.tiers.PurgeAll(ctx)
			s.metricInc(MetricHydrateCorrupt)
			s.emitAudit(ctx, auditEventHydrateCorrupt, false, "", "", err, nil)
		}
		s.setLoading(false)
		return
	}

	restored, err := identity.Decode(data)
	if err != nil {
		_ = s.tiers.PurgeAll(ctx)
		s.metricInc(MetricHydrateCorrupt)
		s.emitAudit(ctx, auditEventHydrateCorrupt, false, "", "", err, nil)
		s.setLoading(false)
		return
	}

	if !restored.IsAdmin() {
		_ = s.tiers.PurgeAll(ctx)
		s.metricInc(MetricHydrateRejected)
		s.emitAudit(ctx, auditEventHydrateRejected, false, restored.UID, restored.Email, nil, func() map[string]string {
			return map[string]string{"role": string(restored.Role)}
		})
		s.setLoading(false)
		return
	}

	// Trust the persisted record now; reconciliation may still revoke it.
	s.mu.Lock()
	s.current = &restored
	s.gen++
	gen := s.gen
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	s.metricInc(MetricHydrateRestored)
	s.emitAudit(ctx, auditEventHydrateRestored, true, restored.UID, restored.Email, nil, nil)

	s.wg.Add(1)
	go s.reconcile(context.WithoutCancel(ctx), gen, restored.UID, restored.Email)
}

// reconcile fetches the authoritative profile for an optimistically
// restored session. All writes are guarded by the generation captured at
// hydration time, so a login or logout that landed while the fetch was in
// flight wins.
func (s *SessionStore) reconcile(ctx context.Context, gen uint64, uid, email string) {
	defer s.wg.Done()
	defer s.setLoading(false)

	resp, err := s.backend.GetProfile(ctx, uid)
	if err != nil {
		// Transient outage: a locally valid session is not revoked over a
		// flaky network. Logged for diagnostics only.
		s.metricInc(MetricReconcileOffline)
		s.emitAudit(ctx, auditEventReconcileOffline, false, uid, email, err, nil)
		return
	}

	if resp == nil || resp.User == nil {
		// The backend answered and the account is gone. Authoritative.
		if err := s.clearSessionIf(ctx, gen); errors.Is(err, ErrSessionSuperseded) {
			s.metricInc(MetricReconcileStale)
			s.emitAudit(ctx, auditEventReconcileStale, false, uid, email, nil, nil)
			return
		}
		s.metricInc(MetricReconcileRevoked)
		s.emitAudit(ctx, auditEventReconcileRevoked, false, uid, email, nil, func() map[string]string {
			return map[string]string{"reason": "account_missing"}
		})
		return
	}

	fresh, err := identity.Normalize(*resp.User)
	if err != nil {
		// A malformed payload is indistinguishable from a broken server;
		// keep the session like any other transient failure.
		s.metricInc(MetricReconcileOffline)
		s.emitAudit(ctx, auditEventReconcileOffline, false, uid, email, err, nil)
		return
	}

	if !fresh.IsAdmin() {
		if err := s.clearSessionIf(ctx, gen); errors.Is(err, ErrSessionSuperseded) {
			s.metricInc(MetricReconcileStale)
			s.emitAudit(ctx, auditEventReconcileStale, false, uid, email, nil, nil)
			return
		}
		s.metricInc(MetricReconcileRevoked)
		s.emitAudit(ctx, auditEventReconcileRevoked, false, fresh.UID, fresh.Email, nil, func() map[string]string {
			return map[string]string{"reason": "role_revoked", "role": string(fresh.Role)}
		})
		return
	}

	if err := s.commitIdentityIf(ctx, gen, fresh); err != nil {
		if errors.Is(err, ErrSessionSuperseded) {
			s.metricInc(MetricReconcileStale)
			s.emitAudit(ctx, auditEventReconcileStale, false, uid, email, nil, nil)
			return
		}
		// Persisting the refreshed record failed; the optimistic session
		// stays in place.
		s.metricInc(MetricReconcileOffline)
		s.emitAudit(ctx, auditEventReconcileOffline, false, uid, email, err, nil)
		return
	}

	s.metricInc(MetricReconcileRefreshed)
	s.emitAudit(ctx, auditEventReconcileRefreshed, true, fresh.UID, fresh.Email, nil, nil)
}
