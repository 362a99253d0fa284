package fs

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Entry represents a single file or directory on disk.
type Entry struct {
	Name      string
	FullPath  string
	IsDir     bool
	IsSymlink bool
	Size      int64
	Modified  time.Time
	Mode      os.FileMode
}

// IsDotName reports whether the entry name starts with a dot.
func (e Entry) IsDotName() bool {
	return strings.HasPrefix(e.Name, ".")
}

// Ext returns the lowercased extension of the entry name, including the dot.
func (e Entry) Ext() string {
	return strings.ToLower(filepath.Ext(e.Name))
}

// ReadEntries lists the immediate children of dir. Children that disappear or
// cannot be stat'ed between the directory read and the stat are skipped.
func ReadEntries(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, newOpError("list", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, e := range dirEntries {
		info, err := e.Info()
		if err != nil {
			continue
		}

		rawName := e.Name()
		fullPath := filepath.Join(dir, rawName)
		isDir := e.IsDir()
		isSymlink := info.Mode()&os.ModeSymlink != 0

		// For symlinks, check if target is a directory
		if isSymlink {
			if targetInfo, err := os.Stat(fullPath); err == nil {
				isDir = targetInfo.IsDir()
			}
		}

		entries = append(entries, Entry{
			Name:      norm.NFC.String(rawName),
			FullPath:  fullPath,
			IsDir:     isDir,
			IsSymlink: isSymlink,
			Size:      info.Size(),
			Modified:  info.ModTime(),
			Mode:      info.Mode(),
		})
	}
	return entries, nil
}

// NormalizePath returns the cleaned absolute form of path.
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", newOpError("normalize", path, ErrPathNotFound)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", newOpError("normalize", path, err)
	}
	return filepath.Clean(abs), nil
}
