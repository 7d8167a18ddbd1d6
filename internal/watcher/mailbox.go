package watcher

import "sync"

// mailbox is a thread-safe FIFO queue of events for one subscription.
//
// The mailbox is unbounded unless a limit is set, in which case the oldest
// event is dropped to make room. Push never blocks, so a slow consumer can
// not stall the notifier.
//
// The mailbox uses a channel for signaling to enable context-aware waiting
// in consumers.
type mailbox struct {
	mu     sync.Mutex
	events []Event
	limit  int
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

func newMailbox(limit int) *mailbox {
	return &mailbox{
		events: make([]Event, 0, 16),
		limit:  limit,
		signal: make(chan struct{}, 1),
	}
}

// push appends an event. Returns (accepted, dropped): accepted is false when
// the mailbox is closed; dropped is true when the oldest event was evicted.
func (q *mailbox) push(e Event) (accepted, dropped bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false, false
	}

	if q.limit > 0 && len(q.events) >= q.limit {
		q.events[0] = Event{}
		q.events = q.events[1:]
		dropped = true
	}
	q.events = append(q.events, e)

	// Signal availability (non-blocking - buffer of 1 coalesces multiple signals)
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true, dropped
}

// tryPop removes and returns the front event without blocking.
func (q *mailbox) tryPop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]
	// Nil out the slot so the backing array does not retain value slices.
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// wait returns a channel that signals when events may be available.
func (q *mailbox) wait() <-chan struct{} {
	return q.signal
}

func (q *mailbox) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// isClosed reports whether the mailbox is closed and drained.
func (q *mailbox) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.events) == 0
}

// close wakes blocked consumers. Pending events stay readable.
func (q *mailbox) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
