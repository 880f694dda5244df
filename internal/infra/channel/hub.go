// Package channel implements the live consumer as a hub of attached sinks.
package channel

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/arian-lol/msg-mirror/internal/biz/usecase"
)

// Sink is one attached receiver of live invocations
type Sink interface {
	ID() string
	Invoke(method string, args map[string]interface{}) error
	Close() error
}

// Registrar accepts or clears the active live consumer
type Registrar interface {
	RegisterConsumer(c usecase.Consumer)
}

// Hub fans live invocations out to every attached sink. It registers itself
// as the consumer when the first sink attaches and clears the registration
// when the last one detaches.
type Hub struct {
	registrar Registrar

	// regMu serializes attach/detach together with the registrar call.
	// mu only guards the sink map, so Invoke never waits on a registration.
	regMu sync.Mutex
	mu    sync.RWMutex
	sinks map[string]Sink

	// WebSocket sink tuning
	wsQueueSize    int
	wsWriteTimeout time.Duration
}

// NewHub creates a hub bound to registrar
func NewHub(registrar Registrar) *Hub {
	return &Hub{
		registrar:      registrar,
		sinks:          make(map[string]Sink),
		wsQueueSize:    defaultSendQueueSize,
		wsWriteTimeout: defaultWriteTimeout,
	}
}

// Attach adds a sink. A sink with the same ID replaces the previous one.
func (h *Hub) Attach(s Sink) {
	h.regMu.Lock()
	defer h.regMu.Unlock()

	h.mu.Lock()
	old := h.sinks[s.ID()]
	h.sinks[s.ID()] = s
	first := len(h.sinks) == 1 && old == nil
	h.mu.Unlock()

	if old != nil && old != s {
		old.Close()
	}
	fmt.Printf("[Channel] Sink attached: %s\n", s.ID())

	if first {
		h.registrar.RegisterConsumer(h)
	}
}

// Detach removes and closes the sink with id. The last sink is unregistered
// from the router before it leaves the map, so no routed event can reach an
// empty hub.
func (h *Hub) Detach(id string) {
	h.regMu.Lock()
	defer h.regMu.Unlock()

	h.mu.RLock()
	s, ok := h.sinks[id]
	last := ok && len(h.sinks) == 1
	h.mu.RUnlock()

	if !ok {
		return
	}
	if last {
		h.registrar.RegisterConsumer(nil)
	}

	h.mu.Lock()
	delete(h.sinks, id)
	h.mu.Unlock()

	s.Close()
	fmt.Printf("[Channel] Sink detached: %s\n", id)
}

// Invoke implements usecase.Consumer. Every sink is tried; errors are joined.
func (h *Hub) Invoke(method string, args map[string]interface{}) error {
	h.mu.RLock()
	ids := make([]string, 0, len(h.sinks))
	for id := range h.sinks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	sinks := make([]Sink, 0, len(ids))
	for _, id := range ids {
		sinks = append(sinks, h.sinks[id])
	}
	h.mu.RUnlock()

	var errs []error
	for _, s := range sinks {
		if err := s.Invoke(method, copyArgs(args)); err != nil {
			errs = append(errs, fmt.Errorf("sink %s: %w", s.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of attached sinks
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks)
}

// Close detaches every sink
func (h *Hub) Close() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.sinks))
	for id := range h.sinks {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Detach(id)
	}
}

// copyArgs gives each sink its own top-level map
func copyArgs(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}
