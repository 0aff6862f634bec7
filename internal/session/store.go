package session

import (
	"sync"
	"time"
)

// Store owns every session record. A single mutex guards the whole table;
// with per-client key cardinality this stays uncontended, and it makes the
// rollover/quota/queue mutations atomic with respect to both concurrent
// requests and the background sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
	policy   Policy

	now func() time.Time

	evictAfter    time.Duration
	evictInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithEviction enables the background removal of sessions whose last activity
// is older than after. Eviction is off when interval is zero.
func WithEviction(after, interval time.Duration) StoreOption {
	return func(s *Store) {
		s.evictAfter = after
		s.evictInterval = interval
	}
}

// NewStore builds a Store and, when eviction is configured, starts its
// cleanup loop. Call Close to stop the loop.
func NewStore(policy Policy, opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*State),
		policy:   policy,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.evictInterval > 0 && s.evictAfter > 0 {
		go s.evictLoop()
	}
	return s
}

// Close stops the eviction loop. Safe to call more than once.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Policy returns the thresholds the store was built with.
func (s *Store) Policy() Policy {
	return s.policy
}

// GetOrCreate returns a snapshot of the session for key, creating it on first
// contact and applying day rollover on every call.
func (s *Store) GetOrCreate(key string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.getOrCreateLocked(key))
}

// Lookup returns a snapshot of the session for key without creating one.
func (s *Store) Lookup(key string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[key]
	if !ok {
		return State{}, false
	}
	return snapshot(st), true
}

// ReserveAsk atomically normalizes the session, checks the daily quota, and
// on success records the ask: activity timestamp updated, counter
// incremented. The returned used/left reflect the state after the call, so a
// rejected ask reports left == 0.
func (s *Store) ReserveAsk(key string) (ok bool, used, left int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.getOrCreateLocked(key)
	if s.policy.IsQuotaExceeded(st) {
		return false, st.DailyCount, s.policy.Remaining(st)
	}
	now := s.now()
	st.DailyCount++
	st.LastActivityAt = now
	st.FirstMessage = false
	return true, st.DailyCount, s.policy.Remaining(st)
}

// Drain atomically empties the session's outbound queue and returns the
// drained messages in FIFO order. Draining a non-empty queue counts as client
// activity so the sweeper does not immediately re-queue. A missing session
// yields nil.
func (s *Store) Drain(key string) []QueuedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[key]
	if !ok || len(st.Queue) == 0 {
		return nil
	}
	msgs := st.Queue
	st.Queue = nil
	st.LastActivityAt = s.now()
	return msgs
}

// ForEach runs fn for every session under the store lock. fn may mutate the
// state in place; it must not call back into the store or block.
func (s *Store) ForEach(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.sessions {
		fn(st)
	}
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) getOrCreateLocked(key string) *State {
	st, ok := s.sessions[key]
	if !ok {
		now := s.now()
		st = &State{
			Key:            key,
			DayStamp:       DayStamp(now),
			CreatedAt:      now,
			LastActivityAt: now,
			Active:         true,
			FirstMessage:   true,
		}
		s.sessions[key] = st
		return st
	}
	s.policy.ApplyDailyRollover(st, s.now())
	return st
}

// evictLoop removes sessions whose last activity is older than evictAfter.
// The source of this service never evicted anything; an unbounded table keyed
// by client address is a slow leak, so stale entries are dropped here.
func (s *Store) evictLoop() {
	ticker := time.NewTicker(s.evictInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			cutoff := s.now().Add(-s.evictAfter)
			s.mu.Lock()
			for key, st := range s.sessions {
				if st.LastActivityAt.Before(cutoff) {
					delete(s.sessions, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func snapshot(st *State) State {
	out := *st
	if len(st.Queue) > 0 {
		out.Queue = append([]QueuedMessage(nil), st.Queue...)
	}
	return out
}
