package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a mutable time source shared between test and store.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestStore_CreatesSessionLazily(t *testing.T) {
	clk := newFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s := NewStore(testPolicy, WithClock(clk.Now))
	defer s.Close()

	_, ok := s.Lookup("198.51.100.4")
	assert.False(t, ok, "lookup must not create")

	st := s.GetOrCreate("198.51.100.4")
	assert.Equal(t, "198.51.100.4", st.Key)
	assert.Equal(t, 0, st.DailyCount)
	assert.Equal(t, DayStamp(clk.Now()), st.DayStamp)
	assert.Equal(t, clk.Now(), st.CreatedAt)
	assert.True(t, st.Active)
	assert.True(t, st.FirstMessage)
	assert.Empty(t, st.Queue)
	assert.Equal(t, 1, s.Len())
}

func TestStore_RolloverOnDayChange(t *testing.T) {
	clk := newFakeClock(time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC))
	s := NewStore(testPolicy, WithClock(clk.Now))
	defer s.Close()

	key := "198.51.100.4"
	s.GetOrCreate(key)
	for i := 0; i < 4; i++ {
		s.ReserveAsk(key)
	}
	st := s.GetOrCreate(key)
	require.Equal(t, 4, st.DailyCount)

	clk.Advance(6 * time.Hour) // past midnight
	st = s.GetOrCreate(key)
	assert.Equal(t, 0, st.DailyCount)
	assert.Equal(t, DayStamp(clk.Now()), st.DayStamp)
	assert.Equal(t, clk.Now(), st.CreatedAt, "rollover restarts the session epoch")
}

func TestStore_ReserveAskEnforcesQuota(t *testing.T) {
	clk := newFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s := NewStore(Policy{DailyLimit: 3, Idle: time.Minute, SessionMax: time.Hour}, WithClock(clk.Now))
	defer s.Close()

	key := "198.51.100.4"
	for i := 1; i <= 3; i++ {
		ok, used, left := s.ReserveAsk(key)
		assert.True(t, ok)
		assert.Equal(t, i, used)
		assert.Equal(t, 3-i, left)
	}

	ok, used, left := s.ReserveAsk(key)
	assert.False(t, ok, "fourth ask must be rejected")
	assert.Equal(t, 3, used)
	assert.Equal(t, 0, left)
}

func TestStore_ReserveAskIsAtomicUnderConcurrency(t *testing.T) {
	clk := newFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	limit := 20
	s := NewStore(Policy{DailyLimit: limit, Idle: time.Minute, SessionMax: time.Hour}, WithClock(clk.Now))
	defer s.Close()

	key := "198.51.100.4"
	var wg sync.WaitGroup
	granted := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := s.ReserveAsk(key); ok {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)

	assert.Equal(t, limit, len(granted), "exactly the daily limit may be granted")
	st, _ := s.Lookup(key)
	assert.Equal(t, limit, st.DailyCount)
}

func TestStore_DifferentKeysAreIndependent(t *testing.T) {
	clk := newFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s := NewStore(Policy{DailyLimit: 1, Idle: time.Minute, SessionMax: time.Hour}, WithClock(clk.Now))
	defer s.Close()

	ok, _, _ := s.ReserveAsk("key1")
	require.True(t, ok)
	ok, _, _ = s.ReserveAsk("key1")
	assert.False(t, ok, "key1 exhausted")

	ok, _, _ = s.ReserveAsk("key2")
	assert.True(t, ok, "key2 has its own quota")
}

func TestStore_DrainReturnsFIFOAndEmpties(t *testing.T) {
	clk := newFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s := NewStore(testPolicy, WithClock(clk.Now))
	defer s.Close()

	key := "198.51.100.4"
	s.GetOrCreate(key)
	s.ForEach(func(st *State) {
		for i := 0; i < 3; i++ {
			st.Queue = append(st.Queue, QueuedMessage{
				ID:       fmt.Sprintf("m%d", i),
				Kind:     KindAuto,
				Text:     fmt.Sprintf("msg %d", i),
				QueuedAt: clk.Now(),
			})
		}
	})

	clk.Advance(time.Minute)
	msgs := s.Drain(key)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m0", msgs[0].ID)
	assert.Equal(t, "m1", msgs[1].ID)
	assert.Equal(t, "m2", msgs[2].ID)

	st, _ := s.Lookup(key)
	assert.Empty(t, st.Queue)
	assert.Equal(t, clk.Now(), st.LastActivityAt, "draining counts as activity")

	assert.Nil(t, s.Drain(key), "second drain yields nothing")
}

func TestStore_DrainUnknownKeyIsNil(t *testing.T) {
	s := NewStore(testPolicy)
	defer s.Close()
	assert.Nil(t, s.Drain("203.0.113.1"))
	assert.Equal(t, 0, s.Len(), "drain must not create sessions")
}

func TestStore_EvictsStaleSessions(t *testing.T) {
	clk := newFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s := NewStore(testPolicy,
		WithClock(clk.Now),
		WithEviction(48*time.Hour, 10*time.Millisecond),
	)
	defer s.Close()

	s.GetOrCreate("stale")
	clk.Advance(30 * time.Hour)
	s.GetOrCreate("fresh") // re-stamps LastActivityAt via creation
	clk.Advance(30 * time.Hour) // "stale" is now 60h idle, "fresh" 30h

	assert.Eventually(t, func() bool {
		_, staleOK := s.Lookup("stale")
		_, freshOK := s.Lookup("fresh")
		return !staleOK && freshOK
	}, 2*time.Second, 20*time.Millisecond, "stale session should be evicted, fresh kept")
}

func TestStore_SnapshotsDoNotAliasQueue(t *testing.T) {
	s := NewStore(testPolicy)
	defer s.Close()

	key := "198.51.100.4"
	s.GetOrCreate(key)
	s.ForEach(func(st *State) {
		st.Queue = append(st.Queue, QueuedMessage{ID: "a", Kind: KindAuto, Text: "hi"})
	})

	snap, _ := s.Lookup(key)
	snap.Queue[0].Text = "mutated"

	fresh, _ := s.Lookup(key)
	assert.Equal(t, "hi", fresh.Queue[0].Text, "snapshot mutation must not leak into the store")
}
