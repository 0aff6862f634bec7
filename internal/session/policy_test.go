package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testPolicy = Policy{
	DailyLimit: 20,
	Idle:       3 * time.Minute,
	SessionMax: time.Hour,
}

func newTestState(now time.Time) *State {
	return &State{
		Key:            "203.0.113.7",
		DayStamp:       DayStamp(now),
		CreatedAt:      now,
		LastActivityAt: now,
		Active:         true,
		FirstMessage:   true,
	}
}

func TestPolicy_RolloverResetsQuotaAndEpoch(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 0, 10, 0, 0, time.UTC)

	st := newTestState(day1)
	st.DailyCount = 17
	st.Active = false
	st.FirstMessage = false
	st.LastAutoMessageAt = day1

	testPolicy.ApplyDailyRollover(st, day2)

	assert.Equal(t, 0, st.DailyCount)
	assert.Equal(t, DayStamp(day2), st.DayStamp)
	assert.Equal(t, day2, st.CreatedAt)
	assert.True(t, st.Active, "a new day should restart an expired session")
	assert.True(t, st.FirstMessage)
	assert.True(t, st.LastAutoMessageAt.IsZero())
}

func TestPolicy_RolloverIsIdempotentWithinADay(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	st := newTestState(now)
	st.DailyCount = 5

	testPolicy.ApplyDailyRollover(st, now.Add(time.Hour))
	assert.Equal(t, 5, st.DailyCount, "same-day rollover must not touch the counter")
	assert.Equal(t, now, st.CreatedAt)

	testPolicy.ApplyDailyRollover(st, now.Add(2*time.Hour))
	assert.Equal(t, 5, st.DailyCount)
}

func TestPolicy_ExpiryBoundaryIsExclusive(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	st := newTestState(now)

	assert.False(t, testPolicy.IsExpired(st, now.Add(testPolicy.SessionMax)),
		"exactly at the maximum duration the session is not yet expired")
	assert.True(t, testPolicy.IsExpired(st, now.Add(testPolicy.SessionMax+time.Nanosecond)))
}

func TestPolicy_IdleBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	st := newTestState(now)

	assert.False(t, testPolicy.ShouldQueueIdleMessage(st, now.Add(testPolicy.Idle-time.Nanosecond)))
	assert.True(t, testPolicy.ShouldQueueIdleMessage(st, now.Add(testPolicy.Idle)),
		"the idle boundary itself counts as idle")
}

func TestPolicy_AutoMessageGapIsStrict(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	st := newTestState(now)
	st.LastAutoMessageAt = now

	at := now.Add(testPolicy.Idle)
	assert.False(t, testPolicy.ShouldQueueIdleMessage(st, at),
		"an auto message exactly one window old does not yet allow another")
	assert.True(t, testPolicy.ShouldQueueIdleMessage(st, at.Add(time.Nanosecond)))
}

func TestPolicy_InactiveSessionNeverQueues(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	st := newTestState(now)
	st.Active = false

	assert.False(t, testPolicy.ShouldQueueIdleMessage(st, now.Add(24*time.Hour)))
}

func TestPolicy_Quota(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	st := newTestState(now)

	st.DailyCount = testPolicy.DailyLimit - 1
	assert.False(t, testPolicy.IsQuotaExceeded(st))
	assert.Equal(t, 1, testPolicy.Remaining(st))

	st.DailyCount = testPolicy.DailyLimit
	assert.True(t, testPolicy.IsQuotaExceeded(st))
	assert.Equal(t, 0, testPolicy.Remaining(st))

	st.DailyCount = testPolicy.DailyLimit + 3
	assert.Equal(t, 0, testPolicy.Remaining(st), "remaining never goes negative")
}
