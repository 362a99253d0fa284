package panel

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Registry owns every controller by id. Lookups are safe from any goroutine;
// controller methods reached through it still belong on the Loop.
type Registry struct {
	deps Deps

	mu     sync.RWMutex
	panels map[string]*Controller
	order  []string
}

// NewRegistry creates a registry whose controllers share deps.
func NewRegistry(deps Deps) *Registry {
	deps.fill()
	return &Registry{
		deps:   deps,
		panels: make(map[string]*Controller),
	}
}

// Loop returns the loop every controller runs on.
func (r *Registry) Loop() *Loop {
	return r.deps.Loop
}

// Deps returns the filled-in collaborators.
func (r *Registry) Deps() Deps {
	return r.deps
}

// Open creates a controller with the given id.
func (r *Registry) Open(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.panels[id]; exists {
		return nil, fmt.Errorf("panel %q already open", id)
	}
	c := newController(id, r.deps, r)
	r.panels[id] = c
	r.order = append(r.order, id)
	return c, nil
}

// Get returns the controller for id, or nil.
func (r *Registry) Get(id string) *Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.panels[id]
}

// Remove disposes and forgets the controller for id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	c := r.panels[id]
	delete(r.panels, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if c != nil {
		c.Dispose()
	}
}

// IDs returns panel ids in opening order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Panels returns controllers in opening order.
func (r *Registry) Panels() []*Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Controller, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.panels[id])
	}
	return out
}

// Others returns every controller except id.
func (r *Registry) Others(id string) []*Controller {
	var out []*Controller
	for _, c := range r.Panels() {
		if c.id != id {
			out = append(out, c)
		}
	}
	return out
}

// Next returns the id after id in opening order, wrapping around.
func (r *Registry) Next(id string) string {
	ids := r.IDs()
	for i, existing := range ids {
		if existing == id {
			return ids[(i+1)%len(ids)]
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// SetSearchTermAll applies term to every panel.
func (r *Registry) SetSearchTermAll(term string) {
	for _, c := range r.Panels() {
		c.SetSearchTerm(term)
	}
}

// RefreshAll refreshes every panel immediately.
func (r *Registry) RefreshAll() {
	for _, c := range r.Panels() {
		c.RefreshNow()
	}
}

// RefreshShowing refreshes every panel whose directory is dir.
func (r *Registry) RefreshShowing(dir string) {
	dir = filepath.Clean(dir)
	for _, c := range r.Panels() {
		if c.root != "" && c.root == dir {
			c.RefreshNow()
		}
	}
}

// DisposeAll stops every panel.
func (r *Registry) DisposeAll() {
	for _, c := range r.Panels() {
		c.Dispose()
	}
}
