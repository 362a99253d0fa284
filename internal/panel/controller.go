// Package panel drives independent directory panels: each controller keeps
// its listing in sync with the filesystem, debounces search input and routes
// clipboard and bulk operations through the shared services.
package panel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kk-code-lab/rpanes/internal/clipboard"
	"github.com/kk-code-lab/rpanes/internal/debounce"
	"github.com/kk-code-lab/rpanes/internal/fileops"
	fsutil "github.com/kk-code-lab/rpanes/internal/fs"
	"github.com/kk-code-lab/rpanes/internal/listing"
	"github.com/kk-code-lab/rpanes/internal/logging"
	"github.com/kk-code-lab/rpanes/internal/metrics"
	"github.com/kk-code-lab/rpanes/internal/tags"
	"github.com/kk-code-lab/rpanes/internal/watch"
)

const (
	DefaultSearchDelay = 300 * time.Millisecond
	DefaultWatchDelay  = watch.DefaultDelay
)

var (
	ErrNoRoot       = errors.New("panel has no directory")
	ErrUnknownPanel = errors.New("unknown panel")
	ErrDisposed     = errors.New("panel disposed")
)

// Watcher reports changes to one directory. *watch.Watcher satisfies it.
type Watcher interface {
	Start(path string, onChange func(), onLost func(error)) error
	Stop()
	Active() bool
}

// WatcherFactory builds the watcher a controller uses.
type WatcherFactory func(delay time.Duration, exec debounce.Executor, logger *zap.Logger) Watcher

// Deps are the collaborators shared by every controller of a Registry.
type Deps struct {
	Loop      *Loop
	Lister    Lister
	Ops       *fileops.Service
	Clipboard *clipboard.Coordinator
	Tags      *tags.Store
	Logger    *zap.Logger
	Metrics   *metrics.Metrics

	SearchDelay time.Duration
	WatchDelay  time.Duration

	// LoadConfig and SaveConfig persist the panel id -> root map.
	LoadConfig func() map[string]string
	SaveConfig func(map[string]string)

	NewWatcher WatcherFactory
}

func (d *Deps) fill() {
	if d.Loop == nil {
		d.Loop = NewLoop(0)
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clipboard == nil {
		d.Clipboard = clipboard.New()
	}
	if d.Tags == nil {
		d.Tags = tags.NewStore("")
	}
	if d.Ops == nil {
		d.Ops = fileops.New(fileops.WithLogger(d.Logger), fileops.WithMetrics(d.Metrics))
	}
	if d.Lister == nil {
		d.Lister = listing.NewEngine(d.Tags, d.Logger)
	}
	if d.SearchDelay <= 0 {
		d.SearchDelay = DefaultSearchDelay
	}
	if d.WatchDelay <= 0 {
		d.WatchDelay = DefaultWatchDelay
	}
	if d.NewWatcher == nil {
		d.NewWatcher = func(delay time.Duration, exec debounce.Executor, logger *zap.Logger) Watcher {
			return watch.New(delay, exec, logger)
		}
	}
}

// Controller owns one panel. Every method except Snapshot, RootPath and ID
// must run on the Loop.
type Controller struct {
	id       string
	deps     Deps
	registry *Registry
	logger   *zap.Logger

	root          string
	filter        listing.Category
	term          string
	contentSearch bool
	state         State
	live          bool
	lastErr       error
	records       []listing.Record
	summary       listing.Summary

	search  *debounce.Debouncer
	watcher Watcher
	loader  *loader

	rootGen  uint64
	token    uint64
	inFlight bool
	followUp bool
	started  time.Time

	listeners []func(Snapshot)

	mu      sync.RWMutex
	snap    Snapshot
	version uint64
}

func newController(id string, deps Deps, registry *Registry) *Controller {
	c := &Controller{
		id:       id,
		deps:     deps,
		registry: registry,
		logger:   deps.Logger.With(logging.Panel(id)),
		filter:   listing.CategoryAll,
		state:    StateEmpty,
		loader:   newLoader(deps.Lister),
	}
	c.search = debounce.New(deps.SearchDelay, deps.Loop.Post, c.refresh)
	c.watcher = deps.NewWatcher(deps.WatchDelay, deps.Loop.Post, c.logger)
	c.publish()
	return c
}

// ID returns the panel id.
func (c *Controller) ID() string {
	return c.id
}

// Snapshot returns the latest published view. Safe from any goroutine.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// RootPath returns the panel directory. Safe from any goroutine.
func (c *Controller) RootPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Root
}

// OnUpdate registers fn to run on the loop after every published change.
func (c *Controller) OnUpdate(fn func(Snapshot)) {
	if fn != nil {
		c.listeners = append(c.listeners, fn)
	}
}

// Restore reopens the directory saved for this panel, if any.
func (c *Controller) Restore() error {
	if c.deps.LoadConfig == nil {
		return nil
	}
	root := c.deps.LoadConfig()[c.id]
	if root == "" {
		return nil
	}
	return c.SetRootPath(root)
}

// SetRootPath points the panel at dir. The previous watcher, timers and
// loads are cancelled before anything new starts.
func (c *Controller) SetRootPath(dir string) error {
	if c.state == StateStopped {
		return ErrDisposed
	}
	root, err := fsutil.NormalizePath(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(root)
	if err != nil {
		return fsutil.NewError("open", root, fsutil.Classify(err), err)
	}
	if !info.IsDir() {
		return fsutil.NewError("open", root, fsutil.KindNotADirectory, nil)
	}

	c.search.Cancel()
	c.watcher.Stop()
	c.cancelLoads()
	c.rootGen++

	c.root = root
	c.records = nil
	c.summary = listing.Summary{}
	c.lastErr = nil
	c.live = false
	c.saveRoot()
	c.startWatch()
	c.startLoad()
	return nil
}

// GoUp opens the parent directory.
func (c *Controller) GoUp() error {
	if c.root == "" {
		return ErrNoRoot
	}
	parent := filepath.Dir(c.root)
	if parent == c.root {
		return nil
	}
	return c.SetRootPath(parent)
}

// Enter opens the child directory name.
func (c *Controller) Enter(name string) error {
	if c.root == "" {
		return ErrNoRoot
	}
	return c.SetRootPath(filepath.Join(c.root, name))
}

// SetSearchTerm updates the term; the listing follows after the search delay.
func (c *Controller) SetSearchTerm(term string) {
	if c.state == StateStopped || term == c.term {
		return
	}
	c.term = term
	c.publish()
	c.search.Trigger()
}

// SetFilter updates the extension filter after the search delay.
func (c *Controller) SetFilter(filter listing.Category) {
	if c.state == StateStopped || filter == c.filter {
		return
	}
	c.filter = filter
	c.publish()
	c.search.Trigger()
}

// SetContentSearch toggles content search after the search delay.
func (c *Controller) SetContentSearch(on bool) {
	if c.state == StateStopped || on == c.contentSearch {
		return
	}
	c.contentSearch = on
	c.publish()
	c.search.Trigger()
}

// RefreshNow rebuilds the listing without waiting for the search delay.
func (c *Controller) RefreshNow() {
	if c.state == StateStopped {
		return
	}
	c.search.Cancel()
	c.refresh()
}

// Dispose stops the panel for good. It blocks until the watcher goroutine
// has exited.
func (c *Controller) Dispose() {
	if c.state == StateStopped {
		return
	}
	c.search.Cancel()
	c.watcher.Stop()
	c.cancelLoads()
	c.rootGen++
	c.live = false
	c.state = StateStopped
	c.publish()
	c.logger.Debug("panel disposed")
}

func (c *Controller) refresh() {
	if c.state == StateStopped || c.root == "" {
		return
	}
	if c.inFlight {
		c.followUp = true
		return
	}
	c.startLoad()
}

func (c *Controller) startLoad() {
	c.token++
	token := c.token
	c.inFlight = true
	c.followUp = false
	c.started = time.Now()
	c.state = StateLoading
	c.publish()

	loop := c.deps.Loop
	c.loader.Start(loadRequest{
		Token: token,
		Query: listing.Query{
			Root:          c.root,
			Filter:        c.filter,
			Term:          c.term,
			ContentSearch: c.contentSearch,
		},
		Callback: func(res loadResult) {
			loop.Post(func() { c.finishLoad(res) })
		},
	})
}

func (c *Controller) finishLoad(res loadResult) {
	if c.state == StateStopped || res.Token != c.token {
		return
	}
	c.inFlight = false
	c.deps.Metrics.RecordRefresh(time.Since(c.started), res.Err)

	if res.Err != nil {
		c.records = nil
		c.lastErr = res.Err
		c.logger.Warn("listing failed", logging.Path(res.Query.Root),
			logging.Kind(string(fsutil.Classify(res.Err))), zap.Error(res.Err))
	} else {
		c.records = res.Records
		if c.live || fsutil.Classify(c.lastErr) != fsutil.KindWatchLost {
			c.lastErr = nil
		}
	}
	c.summary = listing.Summarize(c.records)
	c.state = c.settledState()

	if c.followUp {
		c.startLoad()
		return
	}
	c.publish()
}

func (c *Controller) settledState() State {
	if c.live {
		return StateWatching
	}
	return StateReady
}

func (c *Controller) cancelLoads() {
	c.loader.CancelAll()
	c.token++
	c.inFlight = false
	c.followUp = false
}

func (c *Controller) startWatch() {
	gen := c.rootGen
	onChange := func() {
		if gen != c.rootGen {
			return
		}
		c.refresh()
	}
	onLost := func(err error) {
		if gen != c.rootGen || c.state == StateStopped {
			return
		}
		c.watchLost(err)
	}
	if err := c.watcher.Start(c.root, onChange, onLost); err != nil {
		c.live = false
		c.logger.Warn("watch failed", logging.Path(c.root), zap.Error(err))
		return
	}
	c.live = true
}

// watchLost keeps the last listing on screen and degrades to non-live.
func (c *Controller) watchLost(err error) {
	c.deps.Metrics.RecordWatchLost()
	c.logger.Warn("watch lost", logging.Path(c.root), zap.Error(err))
	c.search.Cancel()
	c.cancelLoads()
	c.live = false
	c.lastErr = err
	c.state = StateReady
	c.publish()
}

func (c *Controller) saveRoot() {
	if c.deps.SaveConfig == nil {
		return
	}
	cfg := map[string]string{}
	if c.deps.LoadConfig != nil {
		for k, v := range c.deps.LoadConfig() {
			cfg[k] = v
		}
	}
	cfg[c.id] = c.root
	c.deps.SaveConfig(cfg)
}

func (c *Controller) publish() {
	c.mu.Lock()
	c.version++
	c.snap = Snapshot{
		ID:            c.id,
		Root:          c.root,
		Filter:        c.filter,
		Term:          c.term,
		ContentSearch: c.contentSearch,
		State:         c.state,
		Live:          c.live,
		Err:           c.lastErr,
		Records:       c.records,
		Summary:       c.summary,
		Version:       c.version,
	}
	snap := c.snap
	c.mu.Unlock()

	for _, fn := range c.listeners {
		fn(snap)
	}
}

func (c *Controller) requireRoot() error {
	if c.state == StateStopped {
		return ErrDisposed
	}
	if c.root == "" {
		return ErrNoRoot
	}
	return nil
}

func (c *Controller) target(targetID string) (*Controller, error) {
	if c.registry == nil {
		return nil, fmt.Errorf("panel %q: %w", targetID, ErrUnknownPanel)
	}
	t := c.registry.Get(targetID)
	if t == nil {
		return nil, fmt.Errorf("panel %q: %w", targetID, ErrUnknownPanel)
	}
	if err := t.requireRoot(); err != nil {
		return nil, fmt.Errorf("panel %q: %w", targetID, err)
	}
	return t, nil
}
