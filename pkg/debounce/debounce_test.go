package debounce

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestTriggerCoalescesBurst(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 8)

	d := New(50*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
		done <- struct{}{}
	})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
	}

	waitFor(t, done, "the coalesced run")
	time.Sleep(200 * time.Millisecond)

	if got := runs.Load(); got != 1 {
		t.Errorf("expected 1 run for the burst, got %d", got)
	}
}

func TestTriggerRunsAgainAfterQuietWindow(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 8)

	d := New(30*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
		done <- struct{}{}
	})
	defer d.Stop()

	d.Trigger()
	waitFor(t, done, "the first run")

	d.Trigger()
	waitFor(t, done, "the second run")

	if got := runs.Load(); got != 2 {
		t.Errorf("expected 2 runs, got %d", got)
	}
}

func TestFlushRunsImmediately(t *testing.T) {
	var runs atomic.Int32

	d := New(time.Hour, func(ctx context.Context) {
		runs.Add(1)
	})
	defer d.Stop()

	d.Trigger()
	d.Flush()

	// Flush runs the function on the calling goroutine, so the run is
	// complete once it returns.
	if got := runs.Load(); got != 1 {
		t.Errorf("expected 1 run after flush, got %d", got)
	}
}

func TestFlushWithoutPendingTrigger(t *testing.T) {
	var runs atomic.Int32

	d := New(10*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})
	defer d.Stop()

	d.Flush()
	time.Sleep(50 * time.Millisecond)

	if got := runs.Load(); got != 0 {
		t.Errorf("expected no runs, got %d", got)
	}
}

// A trigger during a run cancels that run's context, its result is stale.
func TestTriggerCancelsRunningFunc(t *testing.T) {
	started := make(chan struct{}, 4)
	var cancellations atomic.Int32

	d := New(20*time.Millisecond, func(ctx context.Context) {
		started <- struct{}{}
		<-ctx.Done()
		cancellations.Add(1)
	})

	d.Trigger()
	waitFor(t, started, "the first run")

	d.Trigger()
	waitFor(t, started, "the superseding run")

	d.Stop()

	if got := cancellations.Load(); got != 2 {
		t.Errorf("expected both runs to see cancellation, got %d", got)
	}
}

func TestStopDropsPendingRun(t *testing.T) {
	var runs atomic.Int32

	d := New(100*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	d.Trigger()
	d.Stop()
	time.Sleep(300 * time.Millisecond)

	if got := runs.Load(); got != 0 {
		t.Errorf("expected the pending run to be dropped, got %d", got)
	}
}

func TestStopIsIdempotentAndFinal(t *testing.T) {
	var runs atomic.Int32
	d := New(10*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	d.Stop()
	d.Stop()

	d.Trigger()
	d.Flush()
	time.Sleep(50 * time.Millisecond)

	if got := runs.Load(); got != 0 {
		t.Errorf("expected no runs after stop, got %d", got)
	}
}
