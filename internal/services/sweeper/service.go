// Package sweeper runs the recurring idle sweep: it scans every session,
// retires the ones past their maximum duration, and queues a proactive
// follow-up prompt for clients that have gone quiet. It is the only producer
// for the per-session outbound queues; the poll handler is the only consumer.
package sweeper

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/biasbot/biasbot/internal/promptbank"
	"github.com/biasbot/biasbot/internal/session"
)

// Service owns the sweep schedule. All state effects go through the session
// store; the service itself only holds wiring.
type Service struct {
	store  *session.Store
	bank   *promptbank.Bank
	policy session.Policy

	logger   *log.Logger
	cron     *cron.Cron
	interval time.Duration
	now      func() time.Time
	greeting string
	entryID  cron.EntryID
}

// New builds a sweeper over store and bank. The sweep policy comes from the
// store so both always agree on thresholds.
func New(store *session.Store, bank *promptbank.Bank, opts ...Option) *Service {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := o.Cron
	if c == nil {
		c = cron.New()
	}
	return &Service{
		store:    store,
		bank:     bank,
		policy:   store.Policy(),
		logger:   o.Logger,
		cron:     c,
		interval: o.Interval,
		now:      o.Clock,
		greeting: o.Greeting,
	}
}

// Start registers the sweep on its cadence and starts the scheduler.
func (s *Service) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	id, err := s.cron.AddFunc(spec, func() { s.Sweep(s.now()) })
	if err != nil {
		return fmt.Errorf("sweeper: schedule %q: %w", spec, err)
	}
	s.entryID = id
	s.cron.Start()
	s.logger.Printf("sweeper: started, interval %s", s.interval)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Printf("sweeper: stopped")
}

// Sweep runs one pass over every session at the given instant. It is
// idempotent per tick: the lastAutoMessageAt gate means running it twice in
// immediate succession queues at most one message per session. A failure on
// one entry is isolated so the rest of the table is still scanned.
func (s *Service) Sweep(now time.Time) {
	m := globalSweepMetrics()
	m.runs.Inc()
	start := time.Now()
	defer func() { m.durations.Observe(time.Since(start).Seconds()) }()

	var seen, queued, expired int
	s.store.ForEach(func(st *session.State) {
		seen++
		defer func() {
			if r := recover(); r != nil {
				m.panics.Inc()
				s.logger.Printf("sweeper: session %s: sweep entry panicked: %v", st.Key, r)
			}
		}()

		if !st.Active {
			return
		}
		if s.policy.IsExpired(st, now) {
			st.Active = false
			expired++
			m.expired.Inc()
			return
		}
		if !s.policy.ShouldQueueIdleMessage(st, now) {
			return
		}
		st.Queue = append(st.Queue, session.QueuedMessage{
			ID:       uuid.NewString(),
			Kind:     session.KindAuto,
			Text:     s.greeting + s.bank.RandomPrompt(),
			QueuedAt: now,
		})
		st.LastAutoMessageAt = now
		queued++
		m.queued.Inc()
	})

	m.sessions.Set(float64(seen))
	if queued > 0 || expired > 0 {
		s.logger.Printf("sweeper: scanned %d session(s), queued %d, expired %d", seen, queued, expired)
	}
}
