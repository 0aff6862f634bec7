// Package session tracks per-client conversation state: daily quota, idle
// detection, and the queue of proactive messages waiting for the client to
// poll. The store is the single owner of all mutable state; everything else
// reads and writes through it.
package session

import "time"

// KindAuto marks a message queued by the idle sweeper rather than produced in
// response to a client request.
const KindAuto = "auto"

// DayStampLayout yields one distinct value per calendar day.
const DayStampLayout = "2006-01-02"

// QueuedMessage is one proactive message waiting in a session's outbound
// queue until the client polls for it.
type QueuedMessage struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Text     string    `json:"text"`
	QueuedAt time.Time `json:"queuedAt"`
}

// State is the bookkeeping record for one client key. All fields are guarded
// by the owning Store's lock; callers outside this package never hold a
// *State across store calls.
type State struct {
	Key               string
	DailyCount        int
	DayStamp          string
	CreatedAt         time.Time
	LastActivityAt    time.Time
	LastAutoMessageAt time.Time
	Active            bool
	FirstMessage      bool
	Queue             []QueuedMessage
}

// DayStamp formats t as a calendar-day marker.
func DayStamp(t time.Time) string {
	return t.Format(DayStampLayout)
}
