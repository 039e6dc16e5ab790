package syncer

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a requested sync fires.
const DefaultDebounce = 2 * time.Second

// DefaultFlushTimeout bounds the sync Close runs for a still-pending request.
const DefaultFlushTimeout = 10 * time.Second

// Debouncer coalesces bursts of sync requests into one call of fn, fired
// after a quiet period. A request while the timer is armed is absorbed, and
// a timer firing while fn is still running is dropped.
type Debouncer struct {
	delay        time.Duration
	flushTimeout time.Duration
	fn           func(ctx context.Context)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	timer    *time.Timer
	inFlight bool
	closed   bool
	wg       sync.WaitGroup
}

// NewDebouncer creates a Debouncer. A non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func(ctx context.Context)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{delay: delay, flushTimeout: DefaultFlushTimeout, fn: fn, ctx: ctx, cancel: cancel}
}

// RequestSync arms the timer unless it is already armed.
func (d *Debouncer) RequestSync() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.timer != nil {
		return
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	if d.closed || d.inFlight {
		d.mu.Unlock()
		return
	}
	d.inFlight = true
	d.wg.Add(1)
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.inFlight = false
		d.mu.Unlock()
		d.wg.Done()
	}()
	d.fn(d.ctx)
}

// Close cancels an in-flight call and waits for it. A request whose timer
// has not fired yet is flushed: fn runs once more, synchronously, bounded by
// the flush timeout. Requests after Close are ignored.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	pending := d.timer != nil
	if pending {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()

	if pending {
		ctx, cancel := context.WithTimeout(context.Background(), d.flushTimeout)
		defer cancel()
		d.fn(ctx)
	}
}
