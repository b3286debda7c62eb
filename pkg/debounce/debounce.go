// Package debounce coalesces bursts of triggers into a single run of a
// function after a quiet window, the way an editor delays recomputing a
// comparison until the user stops typing.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Func is the action a Debouncer coalesces. Its context is cancelled when
// a newer trigger supersedes the run or the debouncer stops, so the
// action should pass it down to any cancellable work.
type Func func(ctx context.Context)

// Debouncer runs its function once per burst of triggers. The zero value
// is not usable, call New.
type Debouncer struct {
	window time.Duration
	fn     Func

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	gen     uint64
	pending bool
	stopped bool
	wg      sync.WaitGroup
}

// New creates a debouncer that runs fn after window has elapsed without a
// new trigger.
func New(window time.Duration, fn Func) *Debouncer {
	return &Debouncer{
		window: window,
		fn:     fn,
	}
}

// Trigger starts or restarts the quiet window. A trigger during a pending
// window pushes the run further out. A trigger while the function is
// running cancels that run's context, because its result is already
// stale.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.fire)
	} else {
		d.timer.Reset(d.window)
	}
}

// Flush runs the pending action immediately instead of waiting out the
// window. It does nothing when no trigger is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	// fire re-checks pending under the lock, so losing a race against
	// the timer goroutine just makes this a no-op.
	d.fire()
}

// Stop cancels pending and running work and waits for an in-flight run to
// return. The debouncer cannot be reused afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// fire runs in the timer's goroutine once the window elapses.
func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false

	ctx, cancel := context.WithCancel(context.Background())
	d.gen++
	gen := d.gen
	d.cancel = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	defer func() {
		cancel()
		d.mu.Lock()
		// A newer run may have installed its own cancel already.
		if d.gen == gen {
			d.cancel = nil
		}
		d.mu.Unlock()
	}()

	d.fn(ctx)
}
