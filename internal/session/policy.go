package session

import "time"

// Policy holds the thresholds that drive quota, expiry, and idle decisions.
// Its methods are pure except ApplyDailyRollover, which mutates the state it
// is given; callers must hold the store lock when passing a live *State.
type Policy struct {
	// DailyLimit is the number of billable asks allowed per calendar day.
	DailyLimit int
	// Idle is how long a client must be silent before a proactive message
	// becomes eligible for queuing.
	Idle time.Duration
	// SessionMax is the maximum age of a session before auto messages stop.
	SessionMax time.Duration
}

// ApplyDailyRollover resets the daily quota and the session-epoch fields when
// now falls on a different calendar day than the state's DayStamp. A new day
// restarts both the quota and the idle-session clock, so a client does not
// inherit a stale expired session across days. Idempotent within a day.
func (p Policy) ApplyDailyRollover(s *State, now time.Time) {
	today := DayStamp(now)
	if s.DayStamp == today {
		return
	}
	s.DailyCount = 0
	s.DayStamp = today
	s.FirstMessage = true
	s.CreatedAt = now
	s.LastAutoMessageAt = time.Time{}
	s.Active = true
}

// IsExpired reports whether the session has outlived SessionMax. The boundary
// itself does not count as expired.
func (p Policy) IsExpired(s *State, now time.Time) bool {
	return now.Sub(s.CreatedAt) > p.SessionMax
}

// ShouldQueueIdleMessage reports whether the sweeper should queue a proactive
// message: the session is still active, the client has been idle for at least
// the idle window, and the previous auto message is strictly older than one
// window. The >= / > asymmetry is deliberate and load-bearing for the
// once-per-window guarantee.
func (p Policy) ShouldQueueIdleMessage(s *State, now time.Time) bool {
	if !s.Active {
		return false
	}
	return now.Sub(s.LastActivityAt) >= p.Idle && now.Sub(s.LastAutoMessageAt) > p.Idle
}

// IsQuotaExceeded reports whether the session has used up today's quota.
// Consumers decide the response; the policy only reports.
func (p Policy) IsQuotaExceeded(s *State) bool {
	return s.DailyCount >= p.DailyLimit
}

// Remaining returns how many asks are left today, never negative.
func (p Policy) Remaining(s *State) int {
	if left := p.DailyLimit - s.DailyCount; left > 0 {
		return left
	}
	return 0
}
