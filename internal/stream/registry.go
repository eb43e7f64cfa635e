// Package stream carries progress messages from a job execution to the
// client streaming that job's logs. A Registry maps job ids to their
// subscriber queue; the executor publishes into it and the streaming
// handler drains it.
package stream

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrIdle is returned by Queue.Next when the idle window elapses with no
// message. The caller is expected to send a keepalive and retry.
var ErrIdle = errors.New("stream: no message within idle window")

// Queue is an unbounded FIFO of messages for one job id. One producer
// (the executor) pushes; one consumer (the streaming handler) drains.
// push never blocks, whatever the consumer is doing.
type Queue struct {
	mu    sync.Mutex
	items []Message
	wake  chan struct{}
}

func newQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

func (q *Queue) push(m Message) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Next returns the next queued message in FIFO order. It waits up to
// idle for one to arrive, returning ErrIdle on timeout and the context
// error if ctx is done first.
func (q *Queue) Next(ctx context.Context, idle time.Duration) (Message, error) {
	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			m := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return m, nil
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-timer.C:
			return Message{}, ErrIdle
		case <-ctx.Done():
			return Message{}, ctx.Err()
		}
	}
}

// Registry is the process-wide mapping from job id to subscriber queue.
// It is constructed once at startup and shared by the executor and the
// streaming handler; all operations are safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	queues map[string]*Queue
}

func NewRegistry() *Registry {
	return &Registry{queues: make(map[string]*Queue)}
}

// Register installs a fresh queue for the job id and returns it. A
// second registration for the same id replaces the first, orphaning its
// queue; messages published afterwards reach only the new queue.
func (r *Registry) Register(jobID string) *Queue {
	q := newQueue()
	r.mu.Lock()
	r.queues[jobID] = q
	r.mu.Unlock()
	return q
}

// Get returns the queue registered for the job id, if any.
func (r *Registry) Get(jobID string) (*Queue, bool) {
	r.mu.Lock()
	q, ok := r.queues[jobID]
	r.mu.Unlock()
	return q, ok
}

// Unregister removes the mapping for the job id, but only if it still
// points at q. An orphaned stream closing late therefore cannot tear
// down a newer registration for the same id.
func (r *Registry) Unregister(jobID string, q *Queue) {
	r.mu.Lock()
	if current, ok := r.queues[jobID]; ok && current == q {
		delete(r.queues, jobID)
	}
	r.mu.Unlock()
}

// Publish enqueues the message for the job id. If no queue is
// registered the message is dropped silently; publishing never blocks
// and never fails.
func (r *Registry) Publish(jobID string, m Message) {
	r.mu.Lock()
	q, ok := r.queues[jobID]
	r.mu.Unlock()
	if ok {
		q.push(m)
	}
}

// Count returns the number of live registrations, for health reporting.
func (r *Registry) Count() int {
	r.mu.Lock()
	n := len(r.queues)
	r.mu.Unlock()
	return n
}
