package blob

import (
	"context"

	"github.com/charmbracelet/log"
)

// Queue applies writes to a Store in enqueue order, off the caller's
// path. Callers never wait on a write and never see its error: a
// failed write is logged and dropped, on the assumption that the next
// full-state write supersedes it.
type Queue struct {
	writes chan write
	done   chan struct{}
}

type write struct {
	key, value string
	flushed    chan struct{} // non-nil marks a flush barrier
}

// NewQueue starts a queue draining into store.
func NewQueue(store Store) *Queue {
	q := &Queue{
		writes: make(chan write, 64),
		done:   make(chan struct{}),
	}
	go q.run(store)
	return q
}

func (q *Queue) run(store Store) {
	defer close(q.done)
	for w := range q.writes {
		if w.flushed != nil {
			close(w.flushed)
			continue
		}
		if err := store.Set(context.Background(), w.key, w.value); err != nil {
			log.Warn("dropping failed blob write", "key", w.key, "err", err)
		}
	}
}

// Enqueue schedules a write. Ordering across Enqueue calls is
// preserved.
func (q *Queue) Enqueue(key, value string) {
	q.writes <- write{key: key, value: value}
}

// Flush blocks until every previously enqueued write has been applied
// (or dropped).
func (q *Queue) Flush() {
	barrier := make(chan struct{})
	q.writes <- write{flushed: barrier}
	<-barrier
}

// Close drains the queue and stops the worker. The queue must not be
// used afterwards.
func (q *Queue) Close() {
	close(q.writes)
	<-q.done
}
