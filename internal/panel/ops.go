package panel

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kk-code-lab/rpanes/internal/clipboard"
	"github.com/kk-code-lab/rpanes/internal/fileops"
	fsutil "github.com/kk-code-lab/rpanes/internal/fs"
	"github.com/kk-code-lab/rpanes/internal/logging"
	"github.com/kk-code-lab/rpanes/internal/tags"
)

// CopySelection puts path on the shared clipboard for copying.
func (c *Controller) CopySelection(path string) {
	c.setClipboard(path, clipboard.OpCopy)
}

// CutSelection puts path on the shared clipboard for moving.
func (c *Controller) CutSelection(path string) {
	c.setClipboard(path, clipboard.OpCut)
}

func (c *Controller) setClipboard(path string, op clipboard.Op) {
	c.deps.Clipboard.Set(path, op, c.id)
	c.deps.Metrics.SetClipboardPending(true)
	c.logger.Debug("clipboard set", logging.Path(path), zap.String("op", string(op)))
}

// PasteIntoSelf copies or moves the clipboard entry into this panel's
// directory and returns the new path. The clipboard is cleared only after a
// cut was moved successfully. A source that no longer exists makes the paste
// a no-op and returns an empty path.
func (c *Controller) PasteIntoSelf() (string, error) {
	if err := c.requireRoot(); err != nil {
		return "", err
	}
	entry, ok := c.deps.Clipboard.Get()
	if !ok {
		return "", nil
	}
	if _, err := os.Lstat(entry.Path); errors.Is(err, os.ErrNotExist) {
		stale := fsutil.NewError("paste", entry.Path, fsutil.KindClipboardStale, nil)
		c.logger.Debug("clipboard source vanished", logging.Path(entry.Path), zap.Error(stale))
		return "", nil
	}

	var (
		dest string
		err  error
	)
	switch entry.Op {
	case clipboard.OpCut:
		dest, err = c.deps.Ops.Move(entry.Path, c.root)
		if err == nil && c.deps.Clipboard.ClearIf(entry) {
			c.deps.Metrics.SetClipboardPending(false)
		}
	default:
		dest, err = c.deps.Ops.Copy(entry.Path, c.root)
	}
	if err != nil {
		c.logger.Warn("paste failed", logging.Path(entry.Path), zap.Error(err))
		if dest != "" {
			c.RefreshNow()
		}
		return dest, err
	}

	c.RefreshNow()
	if entry.Op == clipboard.OpCut {
		c.refreshShowing(filepath.Dir(entry.Path))
	}
	return dest, nil
}

// MoveSelectionTo moves path into the directory of panel targetID.
func (c *Controller) MoveSelectionTo(path, targetID string) (string, error) {
	t, err := c.target(targetID)
	if err != nil {
		return "", err
	}
	dest, err := c.deps.Ops.Move(path, t.RootPath())
	c.RefreshNow()
	if t != c {
		t.RefreshNow()
	}
	return dest, err
}

// BulkMoveTo moves paths into the directory of panel targetID. Items moved
// before a failure stay moved; both panels refresh either way.
func (c *Controller) BulkMoveTo(paths []string, targetID string) (fileops.BulkResult, error) {
	t, err := c.target(targetID)
	if err != nil {
		return fileops.BulkResult{}, err
	}
	res := c.deps.Ops.BulkMove(paths, t.RootPath())
	c.RefreshNow()
	if t != c {
		t.RefreshNow()
	}
	return res, nil
}

// BulkCopyTo copies paths into the directory of panel targetID.
func (c *Controller) BulkCopyTo(paths []string, targetID string) (fileops.BulkResult, error) {
	t, err := c.target(targetID)
	if err != nil {
		return fileops.BulkResult{}, err
	}
	res := c.deps.Ops.BulkCopy(paths, t.RootPath())
	t.RefreshNow()
	return res, nil
}

// BulkDelete deletes paths and refreshes the panel.
func (c *Controller) BulkDelete(paths []string) fileops.BulkResult {
	res := c.deps.Ops.BulkDelete(paths)
	c.RefreshNow()
	return res
}

// DeleteSelection deletes one path.
func (c *Controller) DeleteSelection(path string) error {
	err := c.deps.Ops.Delete(path)
	c.RefreshNow()
	return err
}

// RenameSelection renames path within its directory.
func (c *Controller) RenameSelection(path, newName string) (string, error) {
	dest, err := c.deps.Ops.Rename(path, newName)
	if err != nil {
		return "", err
	}
	c.refreshShowing(filepath.Dir(path))
	return dest, nil
}

// SetTag sets the color of path.
func (c *Controller) SetTag(path string, color tags.Color) error {
	return c.editTag(path, func(s *tags.Store) error { return s.SetColor(path, color) })
}

// SetNote sets the note of path. An empty note removes it.
func (c *Controller) SetNote(path, note string) error {
	return c.editTag(path, func(s *tags.Store) error { return s.SetNote(path, note) })
}

// RemoveColor drops the color of path, keeping its note.
func (c *Controller) RemoveColor(path string) error {
	return c.editTag(path, func(s *tags.Store) error { return s.RemoveColor(path) })
}

// ClearTags drops every tag of path.
func (c *Controller) ClearTags(path string) error {
	return c.editTag(path, func(s *tags.Store) error { return s.RemoveTag(path) })
}

func (c *Controller) editTag(path string, fn func(*tags.Store) error) error {
	if err := fn(c.deps.Tags); err != nil {
		return err
	}
	c.refreshShowing(filepath.Dir(path))
	return nil
}

func (c *Controller) refreshShowing(dir string) {
	if c.registry != nil {
		c.registry.RefreshShowing(dir)
		return
	}
	if c.root == filepath.Clean(dir) {
		c.RefreshNow()
	}
}
