// Package fileops implements copy, move, delete and rename with bulk variants
// that attempt every item and report per-item outcomes.
package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	fsutil "github.com/kk-code-lab/rpanes/internal/fs"
	"github.com/kk-code-lab/rpanes/internal/logging"
	"github.com/kk-code-lab/rpanes/internal/metrics"
)

// Failure is one item a bulk call could not process.
type Failure struct {
	Path string
	Kind fsutil.Kind
	Err  error
}

// BulkResult aggregates a bulk call. Succeeded holds destination paths for
// copy and move and source paths for delete.
type BulkResult struct {
	OpID      string
	Succeeded []string
	Failed    []Failure
}

// OK reports whether every item succeeded.
func (r BulkResult) OK() bool {
	return len(r.Failed) == 0
}

// Service performs filesystem operations. It holds no state besides its
// collaborators and is safe for concurrent use.
type Service struct {
	logger  *zap.Logger
	metrics *metrics.Metrics

	// rename and removeAll are swapped in tests to simulate failures.
	rename    func(oldpath, newpath string) error
	removeAll func(path string) error
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service.
func New(opts ...Option) *Service {
	s := &Service{
		logger: zap.NewNop(),
		rename:    os.Rename,
		removeAll: os.RemoveAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Copy copies src into destDir and returns the new path. Directories are
// copied recursively. An existing destination is never overwritten.
func (s *Service) Copy(src, destDir string) (string, error) {
	dest, err := s.copy(src, destDir)
	s.record("copy", err)
	return dest, err
}

func (s *Service) copy(src, destDir string) (string, error) {
	info, dest, err := prepare("copy", src, destDir)
	if err != nil {
		return "", err
	}
	if info.IsDir() && isWithin(dest, src) {
		return "", fsutil.NewError("copy", src, fsutil.KindInvalidName, errors.New("cannot copy a directory into itself"))
	}
	if err := copyTree(src, dest, info); err != nil {
		_ = os.RemoveAll(dest)
		return "", fsutil.NewError("copy", src, fsutil.Classify(err), err)
	}
	return dest, nil
}

// Move moves src into destDir and returns the new path. A rename that fails
// with EXDEV falls back to copy then delete. If the source cannot be removed
// after that copy, the returned path is the complete destination and the
// error is KindCrossDevice; the data then exists in both places.
func (s *Service) Move(src, destDir string) (string, error) {
	dest, err := s.move(src, destDir)
	s.record("move", err)
	return dest, err
}

func (s *Service) move(src, destDir string) (string, error) {
	info, dest, err := prepare("move", src, destDir)
	if err != nil {
		return "", err
	}
	if filepath.Clean(src) == dest {
		return dest, nil
	}
	if info.IsDir() && isWithin(dest, src) {
		return "", fsutil.NewError("move", src, fsutil.KindInvalidName, errors.New("cannot move a directory into itself"))
	}

	err = s.rename(src, dest)
	if err == nil {
		return dest, nil
	}
	if !fsutil.IsCrossDevice(err) {
		return "", fsutil.NewError("move", src, fsutil.Classify(err), err)
	}

	s.logger.Debug("rename crossed devices, copying", logging.Path(src), zap.String("dest", dest))
	if err := copyTree(src, dest, info); err != nil {
		_ = os.RemoveAll(dest)
		return "", fsutil.NewError("move", src, fsutil.KindCrossDevice, err)
	}
	if err := s.removeAll(src); err != nil {
		s.logger.Warn("source left behind after cross-device copy", logging.Path(src), zap.String("dest", dest), zap.Error(err))
		return dest, fsutil.NewError("move", src, fsutil.KindCrossDevice, fmt.Errorf("copied to %s but removing source failed: %w", dest, err))
	}
	return dest, nil
}

// Delete removes path, recursively for directories.
func (s *Service) Delete(path string) error {
	err := s.remove(path)
	s.record("delete", err)
	return err
}

func (s *Service) remove(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return fsutil.NewError("delete", path, fsutil.Classify(err), err)
	}
	if err := os.RemoveAll(path); err != nil {
		return fsutil.NewError("delete", path, fsutil.Classify(err), err)
	}
	return nil
}

// Rename gives path a new base name within the same directory.
func (s *Service) Rename(path, newName string) (string, error) {
	dest, err := s.renameTo(path, newName)
	s.record("rename", err)
	return dest, err
}

func (s *Service) renameTo(path, newName string) (string, error) {
	if err := ValidateName(newName); err != nil {
		return "", fsutil.NewError("rename", path, fsutil.KindInvalidName, err)
	}
	if _, err := os.Lstat(path); err != nil {
		return "", fsutil.NewError("rename", path, fsutil.Classify(err), err)
	}
	dest := filepath.Join(filepath.Dir(path), newName)
	if dest == filepath.Clean(path) {
		return dest, nil
	}
	if exists(dest) {
		return "", fsutil.NewError("rename", dest, fsutil.KindAlreadyExists, nil)
	}
	if err := s.rename(path, dest); err != nil {
		return "", fsutil.NewError("rename", path, fsutil.Classify(err), err)
	}
	return dest, nil
}

// BulkCopy copies every path into destDir.
func (s *Service) BulkCopy(paths []string, destDir string) BulkResult {
	return s.bulk("copy", paths, func(p string) (string, error) {
		return s.copy(p, destDir)
	})
}

// BulkMove moves every path into destDir. Items moved before a failure stay
// moved.
func (s *Service) BulkMove(paths []string, destDir string) BulkResult {
	return s.bulk("move", paths, func(p string) (string, error) {
		return s.move(p, destDir)
	})
}

// BulkDelete deletes every path.
func (s *Service) BulkDelete(paths []string) BulkResult {
	return s.bulk("delete", paths, func(p string) (string, error) {
		return p, s.remove(p)
	})
}

func (s *Service) bulk(op string, paths []string, fn func(string) (string, error)) BulkResult {
	res := BulkResult{OpID: uuid.NewString()}
	log := s.logger.With(zap.String("op", op), zap.String("op_id", res.OpID))
	start := time.Now()

	for _, p := range paths {
		out, err := fn(p)
		if err != nil {
			kind := fsutil.Classify(err)
			res.Failed = append(res.Failed, Failure{Path: p, Kind: kind, Err: err})
			log.Warn("bulk item failed", logging.Path(p), logging.Kind(string(kind)), zap.Error(err))
			continue
		}
		res.Succeeded = append(res.Succeeded, out)
	}

	s.metrics.RecordBulk(op, len(res.Succeeded), len(res.Failed))
	log.Info("bulk operation finished",
		zap.Int("succeeded", len(res.Succeeded)),
		zap.Int("failed", len(res.Failed)),
		zap.Duration("duration", time.Since(start)),
	)
	return res
}

func (s *Service) record(op string, err error) {
	result := "ok"
	if err != nil {
		result = string(fsutil.Classify(err))
		s.logger.Debug("file operation failed", zap.String("op", op), zap.Error(err))
	}
	s.metrics.RecordFileOp(op, result)
}

// ValidateName rejects names that are empty, relative markers, or contain a
// path separator or NUL.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	if name == "." || name == ".." {
		return errors.New("name cannot be . or ..")
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return errors.New("name cannot contain a path separator")
	}
	if strings.ContainsRune(name, 0) {
		return errors.New("name cannot contain NUL")
	}
	return nil
}

// prepare checks the shared preconditions of copy and move.
func prepare(op, src, destDir string) (os.FileInfo, string, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return nil, "", fsutil.NewError(op, src, fsutil.Classify(err), err)
	}
	dirInfo, err := os.Stat(destDir)
	if err != nil {
		return nil, "", fsutil.NewError(op, destDir, fsutil.Classify(err), err)
	}
	if !dirInfo.IsDir() {
		return nil, "", fsutil.NewError(op, destDir, fsutil.KindNotADirectory, nil)
	}
	dest := filepath.Join(filepath.Clean(destDir), filepath.Base(src))
	if op == "move" && dest == filepath.Clean(src) {
		return info, dest, nil
	}
	if exists(dest) {
		return nil, "", fsutil.NewError(op, dest, fsutil.KindAlreadyExists, nil)
	}
	return info, dest, nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// isWithin reports whether path is root or lies below it.
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
