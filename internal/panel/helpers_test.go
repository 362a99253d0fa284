package panel

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kk-code-lab/rpanes/internal/clipboard"
	"github.com/kk-code-lab/rpanes/internal/debounce"
	"github.com/kk-code-lab/rpanes/internal/listing"
	"github.com/kk-code-lab/rpanes/internal/tags"
)

type testEnv struct {
	loop   *Loop
	reg    *Registry
	clip   *clipboard.Coordinator
	tags   *tags.Store
	lister *recordingLister
}

func newTestEnv(t *testing.T, configure ...func(*Deps)) *testEnv {
	t.Helper()
	loop := NewLoop(64)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()

	store := tags.NewStore("")
	lister := &recordingLister{inner: listing.NewEngine(store, nil)}
	deps := Deps{
		Loop:        loop,
		Lister:      lister,
		Clipboard:   clipboard.New(),
		Tags:        store,
		SearchDelay: 80 * time.Millisecond,
		WatchDelay:  100 * time.Millisecond,
	}
	for _, fn := range configure {
		fn(&deps)
	}
	reg := NewRegistry(deps)

	t.Cleanup(func() {
		loop.Call(reg.DisposeAll)
		cancel()
		loop.Close()
	})
	return &testEnv{loop: loop, reg: reg, clip: deps.Clipboard, tags: store, lister: lister}
}

func (e *testEnv) open(t *testing.T, id, root string) *Controller {
	t.Helper()
	c, err := e.reg.Open(id)
	if err != nil {
		t.Fatalf("Open(%s): %v", id, err)
	}
	if root == "" {
		return c
	}
	var setErr error
	e.loop.Call(func() { setErr = c.SetRootPath(root) })
	if setErr != nil {
		t.Fatalf("SetRootPath(%s): %v", root, setErr)
	}
	waitFor(t, "panel "+id+" settled", func() bool {
		s := c.Snapshot()
		return s.State == StateReady || s.State == StateWatching
	})
	return c
}

// recordingLister counts listings and can hold them until released.
type recordingLister struct {
	inner Lister

	mu      sync.Mutex
	queries []listing.Query
	gate    chan struct{}
}

func (l *recordingLister) ListContext(ctx context.Context, q listing.Query) ([]listing.Record, error) {
	l.mu.Lock()
	l.queries = append(l.queries, q)
	gate := l.gate
	l.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return l.inner.ListContext(ctx, q)
}

func (l *recordingLister) hold() chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gate = make(chan struct{})
	return l.gate
}

func (l *recordingLister) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queries)
}

func (l *recordingLister) last() listing.Query {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queries) == 0 {
		return listing.Query{}
	}
	return l.queries[len(l.queries)-1]
}

// fakeWatcher lets tests fire change and loss notifications by hand.
type fakeWatcher struct {
	exec debounce.Executor

	mu       sync.Mutex
	path     string
	active   bool
	onChange func()
	onLost   func(error)
	starts   int
}

func fakeWatcherFactory(out **fakeWatcher) WatcherFactory {
	return func(_ time.Duration, exec debounce.Executor, _ *zap.Logger) Watcher {
		w := &fakeWatcher{exec: exec}
		*out = w
		return w
	}
}

func (w *fakeWatcher) Start(path string, onChange func(), onLost func(error)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.path, w.onChange, w.onLost, w.active = path, onChange, onLost, true
	w.starts++
	return nil
}

func (w *fakeWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = false
}

func (w *fakeWatcher) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *fakeWatcher) change() {
	w.mu.Lock()
	fn, active := w.onChange, w.active
	w.mu.Unlock()
	if active {
		w.exec(fn)
	}
}

func (w *fakeWatcher) lose(err error) {
	w.mu.Lock()
	fn, active := w.onLost, w.active
	w.active = false
	w.mu.Unlock()
	if active {
		w.exec(func() { fn(err) })
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func recordNames(s Snapshot) []string {
	out := make([]string, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Name
	}
	return out
}

func hasRecord(s Snapshot, name string) bool {
	for _, r := range s.Records {
		if r.Name == name {
			return true
		}
	}
	return false
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
