package spots

import (
	"context"
	"sync"
)

// Queue hands work from background goroutines to the goroutine that owns a
// Controller. Expensive preparation (decoding, building items) runs
// anywhere; the function posted to the queue only applies the result.
type Queue struct {
	mu     sync.Mutex
	fns    []func()
	wake   chan struct{}
	closed bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Post schedules fn. It is safe to call from any goroutine and reports
// false once the queue is closed.
func (q *Queue) Post(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.fns = append(q.fns, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Drain runs every function posted so far, in order, on the calling
// goroutine. Functions posted while draining run in the next Drain.
func (q *Queue) Drain() int {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Wait returns a channel that receives when work may be pending.
func (q *Queue) Wait() <-chan struct{} {
	return q.wake
}

// Run drains the queue until ctx is done or the queue is closed.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
			q.Drain()
			q.mu.Lock()
			closed := q.closed && len(q.fns) == 0
			q.mu.Unlock()
			if closed {
				return nil
			}
		}
	}
}

// Close stops accepting work. Pending functions still run.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
