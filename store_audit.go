package adminauth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventHydrateRestored     = "hydrate_restored"
	auditEventHydrateEmpty        = "hydrate_empty"
	auditEventHydrateCorrupt      = "hydrate_corrupt"
	auditEventHydrateRejected     = "hydrate_role_rejected"
	auditEventReconcileRefreshed  = "reconcile_refreshed"
	auditEventReconcileRevoked    = "reconcile_revoked"
	auditEventReconcileOffline    = "reconcile_offline"
	auditEventReconcileStale      = "reconcile_stale"
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventLoginRoleRejected   = "login_role_rejected"
	auditEventLoginInactive       = "login_inactive_rejected"
	auditEventRegisterSuccess     = "register_success"
	auditEventRegisterFailure     = "register_failure"
	auditEventAdminRegisterOK     = "admin_register_success"
	auditEventAdminRegisterFailed = "admin_register_failure"
	auditEventLogout              = "logout"
	auditEventProfileUpdated      = "profile_update_success"
	auditEventProfileUpdateFailed = "profile_update_failure"
	auditEventProfileUpdateStale  = "profile_update_stale"
)

// emitAudit queues one audit event. metadataFn is only invoked when the
// pipeline is enabled, so callers can build maps lazily.
func (s *SessionStore) emitAudit(ctx context.Context, eventType string, success bool, uid, email string, opErr error, metadataFn func() map[string]string) {
	if s == nil || s.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventID:   uuid.NewString(),
		EventType: eventType,
		UID:       uid,
		Email:     email,
		Success:   success,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	if metadataFn != nil {
		event.Metadata = metadataFn()
	}

	s.audit.Emit(ctx, event)
}
