// Package tags persists user color/note tags keyed by absolute file path.
package tags

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	fsutil "github.com/kk-code-lab/rpanes/internal/fs"
)

// Color is one of the supported tag colors.
type Color string

const (
	ColorNone   Color = ""
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
)

// Colors lists the supported colors in display order.
var Colors = []Color{ColorRed, ColorGreen, ColorYellow}

// ErrInvalidColor is returned for colors outside Colors.
var ErrInvalidColor = errors.New("invalid tag color")

// Valid reports whether c is a supported, non-empty color.
func (c Color) Valid() bool {
	switch c {
	case ColorRed, ColorGreen, ColorYellow:
		return true
	}
	return false
}

// ParseColor parses a color name case-insensitively.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return ColorNone, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

// Entry is the tag data for one path. The zero Entry means "untagged".
type Entry struct {
	Color Color  `json:"color,omitempty"`
	Note  string `json:"note,omitempty"`
}

// IsZero reports whether the entry carries no fields.
func (e Entry) IsZero() bool {
	return e.Color == ColorNone && e.Note == ""
}

// Tagged pairs a path with its entry.
type Tagged struct {
	Path  string
	Entry Entry
}

// Observer is notified after every in-memory change with the number of entries.
type Observer func(count int)

// Store is the shared tag map. All methods are safe for concurrent use.
type Store struct {
	path     string
	logger   *zap.Logger
	observer Observer

	mu      sync.RWMutex
	entries map[string]Entry

	saveMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load/save failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers a size observer.
func WithObserver(fn Observer) Option {
	return func(s *Store) { s.observer = fn }
}

// NewStore creates an empty store persisted at path. An empty path keeps the
// store in memory only.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		logger:  zap.NewNop(),
		entries: make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the persistence file.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory map with the persisted one. A missing file is
// an empty store. On read or parse failure the store is reset to empty and a
// TagStoreCorrupt error is returned for the caller to log.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.replace(map[string]Entry{})
		return nil
	}
	if err != nil {
		s.replace(map[string]Entry{})
		return fsutil.NewError("load tags", s.path, fsutil.KindTagStoreCorrupt, err)
	}

	raw := map[string]Entry{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			s.replace(map[string]Entry{})
			return fsutil.NewError("load tags", s.path, fsutil.KindTagStoreCorrupt, err)
		}
	}

	loaded := make(map[string]Entry, len(raw))
	for path, entry := range raw {
		if entry.Color != ColorNone && !entry.Color.Valid() {
			s.logger.Warn("dropping invalid tag color", zap.String("path", path), zap.String("color", string(entry.Color)))
			entry.Color = ColorNone
		}
		if entry.IsZero() {
			continue
		}
		key, err := normalizeKey(path)
		if err != nil {
			continue
		}
		loaded[key] = entry
	}
	s.replace(loaded)
	return nil
}

// Save writes the map to disk. Failures are logged and returned; mutating
// methods ignore the returned error.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	data, err := json.MarshalIndent(s.entries, "", "    ")
	s.mu.RUnlock()
	if err != nil {
		s.logger.Error("encode tags", zap.Error(err))
		return err
	}

	if err := fsutil.WriteFileAtomic(s.path, data); err != nil {
		s.logger.Error("save tags", zap.String("path", s.path), zap.Error(err))
		return err
	}
	return nil
}

// Get returns the entry for path, or the zero Entry.
func (s *Store) Get(path string) Entry {
	key, err := normalizeKey(path)
	if err != nil {
		return Entry{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[key]
}

// SetTag merges color and note into the entry for path. An empty color leaves
// the color untouched; a nil note leaves the note untouched and an empty note
// clears it.
func (s *Store) SetTag(path string, color Color, note *string) error {
	if color != ColorNone && !color.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	return s.update(path, func(e Entry) Entry {
		if color != ColorNone {
			e.Color = color
		}
		if note != nil {
			e.Note = *note
		}
		return e
	})
}

// SetColor sets only the color.
func (s *Store) SetColor(path string, color Color) error {
	if !color.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	return s.SetTag(path, color, nil)
}

// SetNote sets only the note.
func (s *Store) SetNote(path, note string) error {
	return s.SetTag(path, ColorNone, &note)
}

// RemoveColor deletes the color; the entry goes away if no note remains.
func (s *Store) RemoveColor(path string) error {
	return s.update(path, func(e Entry) Entry {
		e.Color = ColorNone
		return e
	})
}

// RemoveNote deletes the note; the entry goes away if no color remains.
func (s *Store) RemoveNote(path string) error {
	return s.update(path, func(e Entry) Entry {
		e.Note = ""
		return e
	})
}

// RemoveTag deletes the whole entry.
func (s *Store) RemoveTag(path string) error {
	return s.update(path, func(Entry) Entry { return Entry{} })
}

// Count returns the number of tagged paths.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// All returns a copy of the map.
func (s *Store) All() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Tagged lists entries sorted by file name. A non-empty color restricts the
// result to that color; a non-empty term must appear in the file name or
// the note, ignoring case.
func (s *Store) Tagged(color Color, term string) []Tagged {
	fold := cases.Fold()
	term = fold.String(strings.TrimSpace(term))

	s.mu.RLock()
	out := make([]Tagged, 0, len(s.entries))
	for path, entry := range s.entries {
		if color != ColorNone && entry.Color != color {
			continue
		}
		if term != "" &&
			!strings.Contains(fold.String(filepath.Base(path)), term) &&
			!strings.Contains(fold.String(entry.Note), term) {
			continue
		}
		out = append(out, Tagged{Path: path, Entry: entry})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := fold.String(filepath.Base(out[i].Path)), fold.String(filepath.Base(out[j].Path))
		if a != b {
			return a < b
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func (s *Store) update(path string, fn func(Entry) Entry) error {
	key, err := normalizeKey(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	before, existed := s.entries[key]
	after := fn(before)
	changed := after != before
	switch {
	case after.IsZero():
		delete(s.entries, key)
		changed = existed
	default:
		s.entries[key] = after
	}
	count := len(s.entries)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	if s.observer != nil {
		s.observer(count)
	}
	// Persistence is best-effort; the edit stays in memory either way.
	_ = s.Save()
	return nil
}

func (s *Store) replace(entries map[string]Entry) {
	s.mu.Lock()
	s.entries = entries
	count := len(entries)
	s.mu.Unlock()
	if s.observer != nil {
		s.observer(count)
	}
}

func normalizeKey(path string) (string, error) {
	return fsutil.NormalizePath(path)
}
