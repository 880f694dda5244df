package usecase

import (
	"fmt"
	"sync"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
	"github.com/arian-lol/msg-mirror/internal/metrics"
)

// Consumer is a live in-process channel that accepts method invocations
type Consumer interface {
	Invoke(method string, args map[string]interface{}) error
}

// ConsumerFunc adapts a function to Consumer
type ConsumerFunc func(method string, args map[string]interface{}) error

// Invoke calls f
func (f ConsumerFunc) Invoke(method string, args map[string]interface{}) error {
	return f(method, args)
}

// FallbackSender delivers an event over the network when no consumer is attached.
// Send must not block on I/O.
type FallbackSender interface {
	Send(from, body string, timestampMs int64)
}

// Router owns the active consumer and the pending buffer.
// A single lock covers the consumer check, buffering and draining, so a
// drain always completes before a newly routed event is delivered.
type Router struct {
	mu       sync.Mutex
	consumer Consumer
	pending  []domain.EventRecord

	sender FallbackSender
	log    repo.LogRepo
}

// NewRouter creates a router. sender may be nil.
func NewRouter(sender FallbackSender, log repo.LogRepo) *Router {
	return &Router{
		sender: sender,
		log:    log,
	}
}

// Route delivers event to the live consumer, or buffers it and hands it
// to the fallback sender. Events buffered here are also sent over HTTP, so
// they may reach the endpoint twice once a consumer attaches.
func (r *Router) Route(event domain.EventRecord) {
	r.mu.Lock()
	if r.consumer != nil {
		r.invoke(r.consumer, domain.MethodOnNotification, event.ToMap())
		r.mu.Unlock()
		metrics.EventsRouted.WithLabelValues(metrics.RouteLive).Inc()
		return
	}
	r.pending = append(r.pending, event)
	n := len(r.pending)
	r.mu.Unlock()

	metrics.EventsRouted.WithLabelValues(metrics.RouteBuffered).Inc()
	metrics.PendingEvents.Set(float64(n))
	logf(r.log, "no consumer, buffered event (pending=%d)", n)

	if r.sender != nil {
		r.sender.Send(event.Title, event.Text, event.When)
	}
}

// RegisterConsumer swaps the active consumer. A non-nil consumer receives
// the whole pending buffer in capture order before RegisterConsumer returns.
// A nil consumer detaches without draining.
func (r *Router) RegisterConsumer(c Consumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.consumer = c
	if c == nil {
		logf(r.log, "consumer detached (pending=%d)", len(r.pending))
		return
	}

	drained := r.pending
	r.pending = nil
	for _, event := range drained {
		r.invoke(c, domain.MethodOnNotification, event.ToMap())
	}
	metrics.PendingEvents.Set(0)
	logf(r.log, "consumer attached, flushed %d pending", len(drained))
}

// DeliverLive invokes method on the live consumer only. It never buffers
// and never falls back to HTTP. Returns false if no consumer is attached.
func (r *Router) DeliverLive(method string, args map[string]interface{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consumer == nil {
		return false
	}
	r.invoke(r.consumer, method, args)
	return true
}

// HasConsumer reports whether a live consumer is attached
func (r *Router) HasConsumer() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.consumer != nil
}

// PendingLen returns the number of buffered events
func (r *Router) PendingLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// invoke calls the consumer inside its own failure boundary. Caller holds mu.
func (r *Router) invoke(c Consumer, method string, args map[string]interface{}) {
	safely(r.log, fmt.Sprintf("invoke %s", method), func() error {
		return c.Invoke(method, args)
	})
}
