// Package clipboard holds the single pending copy/cut intent shared by all panels.
package clipboard

import "sync"

// Op is the pending operation.
type Op string

const (
	OpCopy Op = "copy"
	OpCut  Op = "cut"
)

// Entry is the pending clipboard content.
type Entry struct {
	Path  string
	Op    Op
	Owner string
}

// Coordinator stores at most one Entry. A new Set replaces the previous one.
type Coordinator struct {
	mu      sync.Mutex
	entry   Entry
	has     bool
	version uint64
}

// New returns an empty coordinator.
func New() *Coordinator {
	return &Coordinator{}
}

// Set replaces the pending entry.
func (c *Coordinator) Set(path string, op Op, owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = Entry{Path: path, Op: op, Owner: owner}
	c.has = true
	c.version++
}

// Get returns the pending entry.
func (c *Coordinator) Get() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry, c.has
}

// Clear drops the pending entry.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// ClearIf drops the pending entry only if it still equals e, so a paste
// finishing late cannot wipe a newer copy/cut made meanwhile.
func (c *Coordinator) ClearIf(e Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.has || c.entry != e {
		return false
	}
	c.clearLocked()
	return true
}

// HasData reports whether an entry is pending.
func (c *Coordinator) HasData() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.has
}

// Version increments on every Set and Clear; views use it to notice changes.
func (c *Coordinator) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *Coordinator) clearLocked() {
	if !c.has {
		return
	}
	c.entry = Entry{}
	c.has = false
	c.version++
}
