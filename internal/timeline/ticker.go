// FilePath: internal/timeline/ticker.go
package timeline

import (
	"context"
	"sync"
	"time"
)

// Elapsed is the pure tick: seconds from startTime to now, clamped to 0 so
// clock skew can never produce a negative reading.
func Elapsed(startTime, now time.Time) int64 {
	seconds := now.Sub(startTime).Milliseconds() / 1000
	if seconds < 0 {
		return 0
	}
	return seconds
}

// TickHandler receives the elapsed seconds and its "m:ss" rendering once
// per second while a ticker runs.
type TickHandler func(elapsedSeconds int64, display string)

// Ticker produces a live elapsed-time value for exactly one ongoing event,
// locally computed from its fixed start timestamp and wall-clock time, with
// no I/O. Stop is immediate and final: no handler call is delivered after
// Stop returns. The one-engine-per-ongoing-event rule is the lifecycle
// invariant's job, not the ticker's.
type Ticker struct {
	startTime time.Time
	onTick    TickHandler
	now       func() time.Time
	interval  time.Duration

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// NewTicker creates a ticker for the event started at startTime. The
// handler fires once immediately on Run and then once per second.
func NewTicker(startTime time.Time, onTick TickHandler) *Ticker {
	return &Ticker{
		startTime: startTime,
		onTick:    onTick,
		now:       time.Now,
		interval:  time.Second,
		done:      make(chan struct{}),
	}
}

// Run ticks until the context is canceled or Stop is called. It blocks the
// calling goroutine; callers wanting a background engine run it in one.
func (t *Ticker) Run(ctx context.Context) {
	t.fire()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.done:
			return
		case <-ticker.C:
			t.fire()
		}
	}
}

// fire delivers one tick unless the ticker has been stopped. The handler
// runs under the mutex so Stop cannot return while a delivery is in flight.
func (t *Ticker) fire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	elapsed := Elapsed(t.startTime, t.now())
	t.onTick(elapsed, FormatElapsed(elapsed))
}

// Stop halts ticking. Safe to call more than once and from any goroutine;
// once it returns, the handler will not be invoked again.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.done)
}
