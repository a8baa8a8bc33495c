package loader

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// Handle represents the eventual completion of one submitted archive load.
//
// It carries no result payload: internal failures are logged and swallowed,
// so a resolved handle does not imply the archive loaded cleanly.
type Handle struct {
	id   ulid.ULID
	done chan struct{}
}

func newHandle(id ulid.ULID) *Handle {
	return &Handle{id: id, done: make(chan struct{})}
}

// ID returns the load task's ULID, used for log correlation.
func (h *Handle) ID() ulid.ULID {
	return h.id
}

// Done returns a channel that is closed when the load task has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task finishes or ctx is cancelled. Cancelling ctx
// does not cancel the task itself; there is no way to abort a submitted load.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for load task %s: %w", h.id, ctx.Err())
	}
}
