// Package tasks runs best-effort side actions (notification email,
// cleanup) off the request path. Jobs are dispatched after the primary
// database write commits; a job that keeps failing is logged and dropped,
// never bubbled back to the request.
package tasks

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type job struct {
	name string
	fn   func() error
}

// Runner is a small fire-and-forget queue backed by worker goroutines.
type Runner struct {
	jobs    chan job
	wg      sync.WaitGroup
	retries int
	backoff time.Duration

	mu     sync.Mutex
	closed bool
}

// NewRunner starts workers draining a buffered queue. Each job gets up to
// retries additional attempts with a fixed backoff between them.
func NewRunner(workers, buffer int) *Runner {
	if workers < 1 {
		workers = 1
	}
	r := &Runner{
		jobs:    make(chan job, buffer),
		retries: 2,
		backoff: 2 * time.Second,
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
	return r
}

func (r *Runner) work() {
	defer r.wg.Done()
	for j := range r.jobs {
		var err error
		for attempt := 0; attempt <= r.retries; attempt++ {
			if attempt > 0 {
				time.Sleep(r.backoff)
			}
			if err = j.fn(); err == nil {
				break
			}
		}
		if err != nil {
			log.WithError(err).Warnf("Background task %q failed after %d attempts", j.name, r.retries+1)
		}
	}
}

// Submit queues a job. When the queue is full or the runner is closed the
// job runs synchronously instead of blocking the request, keeping the
// fire-and-forget contract.
func (r *Runner) Submit(name string, fn func() error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		runInline(name, fn)
		return
	}
	select {
	case r.jobs <- job{name: name, fn: fn}:
		r.mu.Unlock()
	default:
		r.mu.Unlock()
		runInline(name, fn)
	}
}

func runInline(name string, fn func() error) {
	if err := fn(); err != nil {
		log.WithError(err).Warnf("Background task %q failed", name)
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.jobs)
	r.wg.Wait()
}
