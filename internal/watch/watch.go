// Package watch reports changes to the immediate children of one directory.
package watch

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rpanes/internal/debounce"
	fsutil "github.com/kk-code-lab/rpanes/internal/fs"
)

// DefaultDelay is the minimum gap between two change notifications. It is
// long enough to fold the event storm of a large copy into one refresh.
const DefaultDelay = time.Second

const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Watcher watches a single directory, non-recursively.
type Watcher struct {
	delay  time.Duration
	exec   debounce.Executor
	logger *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	debounce *debounce.Debouncer
	path     string
	done     chan struct{}
	running  bool
	gen      uint64
	wg       sync.WaitGroup
}

// New creates an idle watcher. Callbacks are handed to exec; a nil exec runs
// them on the watcher goroutine.
func New(delay time.Duration, exec debounce.Executor, logger *zap.Logger) *Watcher {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		delay:  delay,
		exec:   exec,
		logger: logger,
	}
}

// Start begins watching path. onChange runs at most once per coalescing
// window. onLost runs once if path disappears; the watcher has already
// stopped itself when it does. A running watch is stopped first.
func (w *Watcher) Start(path string, onChange func(), onLost func(error)) error {
	w.Stop()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fsutil.NewError("watch", path, fsutil.KindUnknown, err)
	}
	if err := fsw.Add(path); err != nil {
		_ = fsw.Close()
		return fsutil.NewError("watch", path, fsutil.Classify(err), err)
	}

	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.fsw = fsw
	w.path = filepath.Clean(path)
	w.debounce = debounce.New(w.delay, w.exec, onChange)
	w.done = make(chan struct{})
	w.running = true
	deb, done, cleanPath := w.debounce, w.done, w.path
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(gen, fsw, deb, done, cleanPath, onLost)

	w.logger.Debug("watch started", zap.String("path", cleanPath))
	return nil
}

// Stop ends the current watch and waits for the event goroutine to exit.
// No callback fires after Stop returns. Safe to call repeatedly.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.gen++
	if w.running {
		w.shutdownLocked()
		w.logger.Debug("watch stopped", zap.String("path", w.path))
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// Active reports whether a watch is running.
func (w *Watcher) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Path returns the watched directory, or the last one watched.
func (w *Watcher) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

func (w *Watcher) shutdownLocked() {
	w.running = false
	close(w.done)
	_ = w.fsw.Close()
	w.debounce.Cancel()
}

func (w *Watcher) loop(gen uint64, fsw *fsnotify.Watcher, deb *debounce.Debouncer, done <-chan struct{}, path string, onLost func(error)) {
	defer w.wg.Done()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Op&relevantOps == 0 {
				continue
			}
			if (ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) && rootGone(path) {
				w.lose(gen, path, onLost)
				return
			}
			deb.Trigger()
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.String("path", path), zap.Error(err))
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				deb.Trigger()
			}
		}
	}
}

func (w *Watcher) lose(gen uint64, path string, onLost func(error)) {
	w.mu.Lock()
	if w.gen != gen || !w.running {
		w.mu.Unlock()
		return
	}
	w.shutdownLocked()
	w.mu.Unlock()

	w.logger.Warn("watched directory disappeared", zap.String("path", path))
	if onLost == nil {
		return
	}

	lostErr := fsutil.NewError("watch", path, fsutil.KindWatchLost, nil)
	report := func() {
		w.mu.Lock()
		current := w.gen == gen
		w.mu.Unlock()
		if current {
			onLost(lostErr)
		}
	}
	if w.exec == nil {
		report()
		return
	}
	w.exec(report)
}

func rootGone(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, os.ErrNotExist)
}
