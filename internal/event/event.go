// Package event defines the mutable event value and listener contract.
package event

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/stevedore/stevedore/internal/ids"
)

// Event is a mutable value handed to listeners. A listener may rewrite
// Message in place and mark the event consumed. The dispatcher that
// constructs the event owns its lifecycle.
type Event struct {
	ID        ulid.ULID
	Timestamp time.Time
	Message   string

	consumed bool
}

// New creates an event carrying message.
func New(message string) *Event {
	return &Event{
		ID:        ids.NewULID(),
		Timestamp: time.Now(),
		Message:   message,
	}
}

// Consume marks the event as fully handled.
func (e *Event) Consume() {
	e.consumed = true
}

// Consumed reports whether a listener has consumed the event.
func (e *Event) Consumed() bool {
	return e.consumed
}

// Listener handles a single event, mutating it in place.
type Listener interface {
	Handle(e *Event)
}
