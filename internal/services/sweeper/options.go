package sweeper

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type options struct {
	Logger   *log.Logger
	Cron     *cron.Cron
	Interval time.Duration
	Clock    func() time.Time
	Greeting string
}

// Option applies configuration to the sweeper service.
type Option func(*options)

func defaultOptions() options {
	return options{
		Logger:   log.Default(),
		Interval: 30 * time.Second,
		Clock:    time.Now,
		Greeting: "Annyeong~ ",
	}
}

// WithLogger injects a custom logger implementation.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.Logger = l
	}
}

// WithCron supplies a preconfigured cron instance.
func WithCron(c *cron.Cron) Option {
	return func(o *options) {
		o.Cron = c
	}
}

// WithInterval sets the sweep cadence.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.Interval = d
	}
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.Clock = now
	}
}

// WithGreeting sets the prefix prepended to every queued prompt.
func WithGreeting(g string) Option {
	return func(o *options) {
		o.Greeting = g
	}
}
