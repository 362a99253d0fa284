// Package debounce coalesces bursts of triggers into a single deferred call.
package debounce

import (
	"sync"
	"time"
)

// Executor runs fn on the caller's logical thread. Passing nil to New runs the
// callback directly on the timer goroutine.
type Executor func(fn func())

// Debouncer schedules callback to run delay after the last Trigger.
//
// Every schedule carries a token. Trigger replaces the token and Cancel clears
// it, so a callback that already fired its timer but has not yet been run by
// the executor is dropped when a newer trigger or a cancel got there first.
type Debouncer struct {
	delay    time.Duration
	callback func()
	exec     Executor

	mu       sync.Mutex
	timer    *time.Timer
	token    uint64
	next     uint64
	deadline time.Time
}

// New creates a Debouncer. exec may be nil.
func New(delay time.Duration, exec Executor, callback func()) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
		exec:     exec,
	}
}

// Trigger (re)starts the delay. Safe for concurrent use.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.next++
	token := d.next
	d.token = token
	d.deadline = time.Now().Add(d.delay)
	d.timer = time.AfterFunc(d.delay, func() { d.fire(token) })
}

// Cancel drops any pending schedule. Cancelling twice or after the callback
// ran is a no-op.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.token = 0
	d.deadline = time.Time{}
}

// Pending reports whether a callback is scheduled and not yet run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token != 0
}

// Deadline returns when the pending callback is due, or the zero time.
func (d *Debouncer) Deadline() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deadline
}

// Delay returns the configured delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

func (d *Debouncer) fire(token uint64) {
	if !d.current(token) {
		return
	}
	if d.exec == nil {
		d.run(token)
		return
	}
	d.exec(func() { d.run(token) })
}

func (d *Debouncer) current(token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token == token
}

// run consumes the token so one burst yields exactly one callback.
func (d *Debouncer) run(token uint64) {
	d.mu.Lock()
	if d.token != token {
		d.mu.Unlock()
		return
	}
	d.token = 0
	d.timer = nil
	d.deadline = time.Time{}
	d.mu.Unlock()

	if d.callback != nil {
		d.callback()
	}
}
