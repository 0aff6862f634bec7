// Package api contains the HTTP surface: ask, poll, usage, and the router
// assembly. Handlers stay thin; all session bookkeeping happens in the
// session store and every upstream failure is mapped to the documented
// response shapes at this boundary.
package api

import (
	"log"
	"math/rand/v2"
	"time"

	"github.com/biasbot/biasbot/internal/completion"
	"github.com/biasbot/biasbot/internal/session"
)

// Handler carries the collaborators shared by all endpoints.
type Handler struct {
	store  *session.Store
	policy session.Policy
	client completion.Client
	logger *log.Logger

	reinjectionProbability float64
	historyTail            int
	askTimeout             time.Duration

	// randFloat is swapped out in tests to pin the reinjection decision.
	randFloat func() float64
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger injects a custom logger implementation.
func WithLogger(l *log.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithReinjectionProbability sets the random chance that the persona
// directive is re-attached to a non-dry ask.
func WithReinjectionProbability(p float64) HandlerOption {
	return func(h *Handler) {
		h.reinjectionProbability = p
	}
}

// WithHistoryTail sets how many trailing history turns are forwarded
// upstream.
func WithHistoryTail(n int) HandlerOption {
	return func(h *Handler) {
		h.historyTail = n
	}
}

// WithAskTimeout bounds the upstream completion call.
func WithAskTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.askTimeout = d
	}
}

// WithRandFloat replaces the randomness source, for tests.
func WithRandFloat(fn func() float64) HandlerOption {
	return func(h *Handler) {
		h.randFloat = fn
	}
}

// NewHandler wires the endpoints over the store and completion client.
func NewHandler(store *session.Store, client completion.Client, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:                  store,
		policy:                 store.Policy(),
		client:                 client,
		logger:                 log.Default(),
		reinjectionProbability: 0.2,
		historyTail:            3,
		askTimeout:             30 * time.Second,
		randFloat:              rand.Float64,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
