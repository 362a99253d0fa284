package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	fsutil "github.com/kk-code-lab/rpanes/internal/fs"
)

// ErrWorkspaceNotFound is returned for unknown workspace names.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// Saved is a named set of panel directories.
type Saved struct {
	NumPanels int               `json:"num_panels"`
	Paths     map[string]string `json:"paths"`
}

type workspaceFile struct {
	NumPanels  int               `json:"num_panels,omitempty"`
	Panels     map[string]string `json:"panels"`
	Workspaces map[string]Saved  `json:"workspaces"`
}

// Workspace persists the current panel directories and named workspaces in a
// single JSON file. Safe for concurrent use.
type Workspace struct {
	path   string
	logger *zap.Logger

	mu   sync.Mutex
	data workspaceFile
}

// OpenWorkspace loads the workspace at path. A missing file is an empty
// workspace. An unreadable one is reset and the error is returned alongside
// a usable Workspace.
func OpenWorkspace(path string, logger *zap.Logger) (*Workspace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Workspace{path: path, logger: logger, data: emptyWorkspace()}
	if path == "" {
		return w, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return w, nil
	}
	if err != nil {
		return w, fmt.Errorf("read workspace: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return w, nil
	}

	var loaded workspaceFile
	if err := json.Unmarshal(data, &loaded); err != nil {
		return w, fmt.Errorf("parse workspace %s: %w", path, err)
	}
	if loaded.Panels == nil {
		loaded.Panels = map[string]string{}
	}
	if loaded.Workspaces == nil {
		loaded.Workspaces = map[string]Saved{}
	}
	w.data = loaded
	return w, nil
}

func emptyWorkspace() workspaceFile {
	return workspaceFile{
		Panels:     map[string]string{},
		Workspaces: map[string]Saved{},
	}
}

// LoadConfig returns a copy of the panel id -> directory map.
func (w *Workspace) LoadConfig() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyPaths(w.data.Panels)
}

// SaveConfig replaces the panel map and writes the file. Write failures are
// logged only.
func (w *Workspace) SaveConfig(panels map[string]string) {
	w.mu.Lock()
	w.data.Panels = copyPaths(panels)
	err := w.saveLocked()
	w.mu.Unlock()
	if err != nil {
		w.logger.Warn("save workspace", zap.String("path", w.path), zap.Error(err))
	}
}

// NumPanels returns the last saved panel count, or 0.
func (w *Workspace) NumPanels() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data.NumPanels
}

// SetNumPanels records the panel count.
func (w *Workspace) SetNumPanels(n int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data.NumPanels = n
	return w.saveLocked()
}

// SaveNamed stores the given panel directories under name, replacing any
// previous workspace with that name.
func (w *Workspace) SaveNamed(name string, numPanels int, paths map[string]string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("workspace name cannot be empty")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data.Workspaces[name] = Saved{NumPanels: numPanels, Paths: copyPaths(paths)}
	return w.saveLocked()
}

// LoadNamed returns the workspace stored under name.
func (w *Workspace) LoadNamed(name string) (Saved, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	saved, ok := w.data.Workspaces[strings.TrimSpace(name)]
	if !ok {
		return Saved{}, fmt.Errorf("%q: %w", name, ErrWorkspaceNotFound)
	}
	saved.Paths = copyPaths(saved.Paths)
	return saved, nil
}

// DeleteNamed removes the workspace stored under name.
func (w *Workspace) DeleteNamed(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	name = strings.TrimSpace(name)
	if _, ok := w.data.Workspaces[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrWorkspaceNotFound)
	}
	delete(w.data.Workspaces, name)
	return w.saveLocked()
}

// Names lists saved workspaces alphabetically.
func (w *Workspace) Names() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.data.Workspaces))
	for name := range w.data.Workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (w *Workspace) saveLocked() error {
	if w.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(w.data, "", "    ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(w.path, data)
}

func copyPaths(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
