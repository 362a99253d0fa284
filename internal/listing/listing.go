// Package listing turns a directory, a filter, a search term and the tag store
// into the ordered records a panel displays.
package listing

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	fsutil "github.com/kk-code-lab/rpanes/internal/fs"
	"github.com/kk-code-lab/rpanes/internal/logging"
	"github.com/kk-code-lab/rpanes/internal/tags"
)

// ContentLimit is how much of a file content search reads.
const ContentLimit = 10 * 1024

// Record is one row of a listing.
type Record struct {
	Name      string
	Path      string
	IsDir     bool
	IsSymlink bool
	Size      int64
	Modified  time.Time
	TagColor  tags.Color
	Note      string
}

// Ext returns the lowercased extension of the record name.
func (r Record) Ext() string {
	return fsutil.Entry{Name: r.Name}.Ext()
}

// TagLookup resolves the tag of a path. *tags.Store satisfies it.
type TagLookup interface {
	Get(path string) tags.Entry
}

// Query selects what a listing shows.
type Query struct {
	Root          string
	Filter        Category
	Term          string
	ContentSearch bool
}

// Engine builds listings. It is stateless apart from its collaborators and
// safe for concurrent use.
type Engine struct {
	tags   TagLookup
	logger *zap.Logger

	readEntries func(string) ([]fsutil.Entry, error)
	readText    func(string, int64) (string, error)
}

// NewEngine creates an Engine. tags may be nil.
func NewEngine(tags TagLookup, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		tags:        tags,
		logger:      logger,
		readEntries: fsutil.ReadEntries,
		readText:    fsutil.ReadTextHead,
	}
}

// List returns the records of root that pass filter and term.
func (e *Engine) List(root string, filter Category, term string, contentSearch bool) ([]Record, error) {
	return e.ListContext(context.Background(), Query{
		Root:          root,
		Filter:        filter,
		Term:          term,
		ContentSearch: contentSearch,
	})
}

// ListContext is List with cancellation; a cancelled listing returns ctx.Err().
func (e *Engine) ListContext(ctx context.Context, q Query) ([]Record, error) {
	entries, err := e.readEntries(q.Root)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(q.Term)

	dirs := make([]sortable, 0, len(entries))
	files := make([]sortable, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := fold.String(entry.Name)

		if entry.IsDir {
			if entry.IsDotName() {
				continue
			}
			if needle != "" && !strings.Contains(key, needle) {
				continue
			}
			dirs = append(dirs, sortable{key: key, rec: recordOf(entry)})
			continue
		}

		ext := entry.Ext()
		if !q.Filter.Matches(ext) {
			continue
		}
		if needle != "" && !strings.Contains(key, needle) {
			if !q.ContentSearch || !Searchable(ext) || !e.contentContains(fold, entry.FullPath, needle) {
				continue
			}
		}

		rec := recordOf(entry)
		if e.tags != nil {
			tag := e.tags.Get(entry.FullPath)
			rec.TagColor = tag.Color
			rec.Note = tag.Note
		}
		files = append(files, sortable{key: key, rec: rec})
	}

	sortGroup(dirs)
	sortGroup(files)

	records := make([]Record, 0, len(dirs)+len(files))
	for _, s := range dirs {
		records = append(records, s.rec)
	}
	for _, s := range files {
		records = append(records, s.rec)
	}
	return records, nil
}

func (e *Engine) contentContains(fold cases.Caser, path, needle string) bool {
	text, err := e.readText(path, ContentLimit)
	if err != nil {
		e.logger.Debug("content search skipped", logging.Path(path), zap.Error(err))
		return false
	}
	return strings.Contains(fold.String(text), needle)
}

type sortable struct {
	key string
	rec Record
}

func sortGroup(items []sortable) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].key != items[j].key {
			return items[i].key < items[j].key
		}
		return items[i].rec.Name < items[j].rec.Name
	})
}

func recordOf(entry fsutil.Entry) Record {
	return Record{
		Name:      entry.Name,
		Path:      entry.FullPath,
		IsDir:     entry.IsDir,
		IsSymlink: entry.IsSymlink,
		Size:      entry.Size,
		Modified:  entry.Modified,
	}
}
