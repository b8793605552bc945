package adminauth

import (
	"context"
	"sync"

	"github.com/spectrum358/adminauth/identity"
	"github.com/spectrum358/adminauth/tier"
)

// SessionStore is the single source of truth for "who is logged in". It
// owns the in-memory identity and both storage tiers exclusively; within
// one operation memory and tier move together, so observers never see a
// partial write.
//
// Methods are safe for concurrent use. Every committed session transition
// bumps an internal generation counter; async completions (hydration
// reconciliation, profile updates) capture the generation they started
// from and discard their result if the session has moved on since.
type SessionStore struct {
	config  Config
	backend AuthBackend
	tiers   *tier.Dual
	audit   *auditDispatcher
	metrics *Metrics

	mu       sync.Mutex
	current  *identity.Identity
	loading  bool
	gen      uint64
	hydrated bool

	subMu       sync.Mutex
	subscribers []chan Snapshot
	subsClosed  bool

	wg sync.WaitGroup
}

// Current returns a copy of the session identity, or nil when logged out.
func (s *SessionStore) Current() *identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIdentity(s.current)
}

// IsAuthenticated reports whether an admin identity currently holds the
// session.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.IsAdmin()
}

// IsLoading reports whether the initial hydration pass or an explicit
// login/register call is in flight.
func (s *SessionStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// CurrentSnapshot returns the session state as one consistent view.
func (s *SessionStore) CurrentSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SessionStore) snapshotLocked() Snapshot {
	return Snapshot{
		Identity:      cloneIdentity(s.current),
		Authenticated: s.current != nil && s.current.IsAdmin(),
		Loading:       s.loading,
		Generation:    s.gen,
	}
}

// Subscribe returns a channel receiving a Snapshot after every session
// transition. Slow subscribers miss intermediate snapshots rather than
// blocking the store; the channel is closed by Close.
func (s *SessionStore) Subscribe(buffer int) <-chan Snapshot {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subsClosed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *SessionStore) publish(snap Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subsClosed {
		return
	}
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Close waits for any in-flight reconciliation, drains the audit pipeline,
// and closes subscriber channels. The store must not be used afterwards.
func (s *SessionStore) Close() {
	if s == nil {
		return
	}
	s.wg.Wait()
	if s.audit != nil {
		s.audit.Close()
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if !s.subsClosed {
		for _, ch := range s.subscribers {
			close(ch)
		}
		s.subscribers = nil
		s.subsClosed = true
	}
}

// MetricsSnapshot returns the current counter values.
func (s *SessionStore) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return s.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (s *SessionStore) AuditDropped() uint64 {
	if s == nil || s.audit == nil {
		return 0
	}
	return s.audit.Dropped()
}

func (s *SessionStore) metricInc(id MetricID) {
	if s.metrics != nil {
		s.metrics.Inc(id)
	}
}

func (s *SessionStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// writeSession persists an identity to the tier selected by the
// remember-me setting.
func (s *SessionStore) writeSession(ctx context.Context, id identity.Identity) error {
	data, err := identity.Encode(id)
	if err != nil {
		return err
	}
	if s.config.Storage.RememberMe {
		return s.tiers.WriteDurable(ctx, data)
	}
	return s.tiers.WriteEphemeral(ctx, data)
}

// commitIdentity persists and installs a new session identity as one unit.
// On a persistence failure nothing is installed and the session is left as
// it was.
func (s *SessionStore) commitIdentity(ctx context.Context, id identity.Identity) error {
	s.mu.Lock()
	if err := s.writeSession(ctx, id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = &id
	s.gen++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return nil
}

// commitIdentityIf is commitIdentity guarded by the generation captured
// when the async operation began. A mismatch means the session was
// replaced or cleared in the meantime; the result is discarded.
func (s *SessionStore) commitIdentityIf(ctx context.Context, gen uint64, id identity.Identity) error {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return ErrSessionSuperseded
	}
	if err := s.writeSession(ctx, id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = &id
	s.gen++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return nil
}

// clearSession tears the session down: memory cleared, both tiers purged.
// The memory clear happens regardless of tier errors.
func (s *SessionStore) clearSession(ctx context.Context) error {
	s.mu.Lock()
	err := s.tiers.PurgeAll(ctx)
	s.current = nil
	s.gen++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return err
}

// clearSessionIf is clearSession guarded by a captured generation.
func (s *SessionStore) clearSessionIf(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return ErrSessionSuperseded
	}
	err := s.tiers.PurgeAll(ctx)
	s.current = nil
	s.gen++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return err
}

func cloneIdentity(id *identity.Identity) *identity.Identity {
	if id == nil {
		return nil
	}
	c := *id
	if id.ProfilePicture != nil {
		p := *id.ProfilePicture
		c.ProfilePicture = &p
	}
	return &c
}
