package panel

import (
	"context"
	"sync"
)

// DefaultLoopSize bounds the number of queued tasks before Post falls back
// to a goroutine.
const DefaultLoopSize = 256

// Loop is the single logical thread that runs every controller transition.
// Controllers must only be touched from inside a task.
type Loop struct {
	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoop creates a loop with a queue of size tasks.
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = DefaultLoopSize
	}
	return &Loop{
		tasks: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It never blocks: when the queue is full the send moves to
// a goroutine. Tasks posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.tasks <- fn:
	default:
		go func() {
			select {
			case l.tasks <- fn:
			case <-l.done:
			}
		}()
	}
}

// Tasks exposes the queue for callers that multiplex it with other event
// sources. Whoever drains it becomes the loop thread.
func (l *Loop) Tasks() <-chan func() {
	return l.tasks
}

// Run drains tasks until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Call runs fn on the loop and waits for it. It must not be called from a
// task: the loop would wait on itself.
func (l *Loop) Call(fn func()) bool {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// Close stops Run and drops queued tasks.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}
