package adminauth

import "sync/atomic"

// MetricID identifies one session-lifecycle counter.
type MetricID uint16

const (
	// MetricHydrateRestored counts hydrations that found a valid admin record.
	MetricHydrateRestored MetricID = iota
	// MetricHydrateEmpty counts hydrations with both tiers empty.
	MetricHydrateEmpty
	// MetricHydrateCorrupt counts persisted records purged as unreadable.
	MetricHydrateCorrupt
	// MetricHydrateRejected counts persisted records purged for a non-admin role.
	MetricHydrateRejected
	// MetricReconcileRefreshed counts reconciliations that replaced the
	// optimistic identity with a fresh backend record.
	MetricReconcileRefreshed
	// MetricReconcileRevoked counts reconciliations that tore the session
	// down (non-admin role or account gone).
	MetricReconcileRevoked
	// MetricReconcileOffline counts reconciliations kept optimistic after a
	// transport failure.
	MetricReconcileOffline
	// MetricReconcileStale counts reconciliation results discarded because
	// the session changed while the fetch was in flight.
	MetricReconcileStale
	// MetricLoginSuccess counts committed logins.
	MetricLoginSuccess
	// MetricLoginFailure counts backend/credential login failures.
	MetricLoginFailure
	// MetricLoginRoleRejected counts logins rejected by the admin gate.
	MetricLoginRoleRejected
	// MetricLoginInactive counts logins rejected for deactivated accounts.
	MetricLoginInactive
	// MetricRegisterSuccess counts committed registrations.
	MetricRegisterSuccess
	// MetricRegisterFailure counts failed registrations.
	MetricRegisterFailure
	// MetricAdminRegister counts admin-invoked account creations.
	MetricAdminRegister
	// MetricAdminRegisterFailure counts failed admin-invoked creations.
	MetricAdminRegisterFailure
	// MetricLogout counts logouts.
	MetricLogout
	// MetricProfileUpdateSuccess counts committed profile updates.
	MetricProfileUpdateSuccess
	// MetricProfileUpdateFailure counts failed profile updates.
	MetricProfileUpdateFailure
	// MetricProfileUpdateStale counts profile-update results discarded by
	// the generation guard.
	MetricProfileUpdateStale

	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the in-process session counters. All methods are safe for
// concurrent use and no-ops on a nil receiver.
type Metrics struct {
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func newMetrics() *Metrics {
	return &Metrics{}
}

// Inc adds one to a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
