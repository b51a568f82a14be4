// Package loop provides the single event-processing context. Hotkey events,
// clipboard poll ticks and delayed restorations all run as tasks on it, one at
// a time, in the order they were posted.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop serializes tasks onto one goroutine.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// New creates a loop with room for size pending tasks.
func New(size int) *Loop {
	if size <= 0 {
		size = 64
	}
	return &Loop{
		tasks: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// After runs fn on the loop once d has elapsed, unless the returned timer
// is stopped first.
func (l *Loop) After(d time.Duration, fn func()) *Timer {
	t := &Timer{}
	t.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

// Run processes tasks until ctx is cancelled. Pending tasks are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) stop() {
	l.once.Do(func() { close(l.done) })
}

// Timer is a cancellable continuation scheduled with After.
type Timer struct {
	t       *time.Timer
	stopped atomic.Bool
}

// Stop prevents the continuation from running. It reports whether the call
// stopped it, false if it already ran or was already stopped.
func (t *Timer) Stop() bool {
	if t == nil {
		return false
	}
	t.t.Stop()
	return t.stopped.CompareAndSwap(false, true)
}
