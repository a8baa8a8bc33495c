// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Stevedore Contributors

package event

import (
	"log/slog"
	"sync"
)

// Dispatcher delivers events to registered listeners in registration order.
// Delivery halts once a listener consumes the event.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register appends a listener to the dispatch order.
func (d *Dispatcher) Register(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Dispatch hands the event to each listener in order. A listener that
// consumes the event short-circuits delivery to the remaining listeners.
func (d *Dispatcher) Dispatch(e *Event) {
	d.mu.RLock()
	listeners := make([]Listener, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.RUnlock()

	for _, l := range listeners {
		if e.Consumed() {
			slog.Debug("event consumed, halting dispatch",
				"event_id", e.ID.String())
			return
		}
		l.Handle(e)
	}
}
