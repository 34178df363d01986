// Package squeue implements the "serial queue" half of spec.md §5's
// concurrency contract: a FIFO task queue whose enqueued tasks never
// execute concurrently with each other, backed by a single worker
// goroutine. This is the Go-idiomatic stand-in for the platform
// runloop/dispatch-queue primitive the spec treats as an external
// scheduler (spec.md §1, §9) -- grounded on transport/sendmsg.go's
// MsgStream.workCh pattern in the teacher.
package squeue

import (
	"sync"
)

// Queue is a FIFO, single-worker task queue that can be suspended and
// resumed without losing already-enqueued work. New queues start resumed;
// callers that need the spec's "receive queue starts suspended" behavior
// call Suspend immediately after New.
type Queue struct {
	name string

	mu        sync.Mutex
	cond      *sync.Cond
	suspended bool
	stopped   bool

	tasks chan func()
	done  chan struct{}
}

// New creates and starts a queue named name (used only for diagnostics).
func New(name string) *Queue {
	q := &Queue{
		name:  name,
		tasks: make(chan func(), 256),
		done:  make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *Queue) run() {
	for fn := range q.tasks {
		q.waitIfSuspended()
		fn()
	}
	close(q.done)
}

func (q *Queue) waitIfSuspended() {
	q.mu.Lock()
	for q.suspended && !q.stopped {
		q.cond.Wait()
	}
	q.mu.Unlock()
}

// Async enqueues fn to run on the queue's worker goroutine, in submission
// order relative to every other task enqueued on this queue.
func (q *Queue) Async(fn func()) {
	q.tasks <- fn
}

// Sync enqueues fn and blocks until it has run -- spec.md's send_barrier:
// "submit block to the send queue synchronously, guaranteeing all
// previously enqueued sends have drained."
func (q *Queue) Sync(fn func()) {
	doneCh := make(chan struct{})
	q.tasks <- func() {
		fn()
		close(doneCh)
	}
	<-doneCh
}

// Suspend halts task execution after the task currently running (if any)
// completes; already-enqueued and future tasks wait until Resume.
func (q *Queue) Suspend() {
	q.mu.Lock()
	q.suspended = true
	q.mu.Unlock()
}

// Resume lets a suspended queue drain again.
func (q *Queue) Resume() {
	q.mu.Lock()
	q.suspended = false
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Stop drains no further tasks after those already queued finish, and
// releases the worker goroutine. Stop is idempotent.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.cond.Broadcast()
	q.mu.Unlock()

	close(q.tasks)
	<-q.done
}

func (q *Queue) Name() string { return q.name }
