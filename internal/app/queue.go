package app

import "sync"

// mirrorJob is the store work produced by one dispatch.
type mirrorJob struct {
	action  string
	changes []change
}

// jobQueue is a thread-safe FIFO of mirror jobs.
//
// The queue is unbounded so Dispatch never blocks on the disk. Dispatch
// enqueues from the caller's goroutine while the mirror loop dequeues.
//
// A buffered signal channel lets the loop wait with a context instead of
// blocking on a condition variable.
type jobQueue struct {
	mu     sync.Mutex
	jobs   []mirrorJob
	closed bool
	signal chan struct{} // buffered, size 1
}

func newJobQueue() *jobQueue {
	return &jobQueue{
		jobs:   make([]mirrorJob, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a job to the back of the queue.
// Returns false if the queue is closed.
func (q *jobQueue) Enqueue(j mirrorJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.jobs = append(q.jobs, j)

	// Non-blocking; a full buffer already means "something is waiting".
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front job without blocking.
func (q *jobQueue) TryDequeue() (mirrorJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return mirrorJob{}, false
	}

	j := q.jobs[0]
	// Release the records the job points at.
	q.jobs[0] = mirrorJob{}

	if len(q.jobs) == 1 {
		q.jobs = q.jobs[:0]
	} else {
		q.jobs = q.jobs[1:]
	}

	return j, true
}

// Wait returns a channel that signals when jobs may be available.
// It is closed once the queue is closed.
func (q *jobQueue) Wait() <-chan struct{} {
	return q.signal
}

func (q *jobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Close stops further enqueues and wakes the loop so it can drain.
func (q *jobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
