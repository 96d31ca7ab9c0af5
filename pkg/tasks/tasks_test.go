package tasks

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func newTestRunner(workers, buffer int) *Runner {
	r := NewRunner(workers, buffer)
	r.backoff = time.Millisecond
	return r
}

func TestRunnerExecutesJobs(t *testing.T) {
	r := newTestRunner(2, 8)

	var done int32
	for i := 0; i < 5; i++ {
		r.Submit("job", func() error {
			atomic.AddInt32(&done, 1)
			return nil
		})
	}
	r.Close()

	if got := atomic.LoadInt32(&done); got != 5 {
		t.Fatalf("executed %d jobs, want 5", got)
	}
}

func TestRunnerRetries(t *testing.T) {
	r := newTestRunner(1, 1)

	var attempts int32
	r.Submit("flaky", func() error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	})
	r.Close()

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
}

func TestRunnerGivesUpAfterRetries(t *testing.T) {
	r := newTestRunner(1, 1)

	var attempts int32
	r.Submit("doomed", func() error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("permanent")
	})
	r.Close()

	// Initial attempt plus the configured retries, then dropped.
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
}

func TestSubmitAfterCloseRunsInline(t *testing.T) {
	r := newTestRunner(1, 1)
	r.Close()

	var ran bool
	r.Submit("late", func() error {
		ran = true
		return nil
	})
	if !ran {
		t.Fatal("job submitted after Close must run inline")
	}
}
