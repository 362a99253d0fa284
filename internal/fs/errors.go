package fs

import (
	"errors"
	iofs "io/fs"
	"syscall"
)

// Kind classifies a filesystem failure so callers can message users without
// inspecting platform errors.
type Kind string

const (
	KindUnknown          Kind = "Unknown"
	KindPathNotFound     Kind = "PathNotFound"
	KindPermissionDenied Kind = "PermissionDenied"
	KindAlreadyExists    Kind = "AlreadyExists"
	KindCrossDevice      Kind = "CrossDeviceMoveFailure"
	KindWatchLost        Kind = "WatchLost"
	KindTagStoreCorrupt  Kind = "TagStoreCorrupt"
	KindClipboardStale   Kind = "ClipboardStale"
	KindInvalidName      Kind = "InvalidName"
	KindNotADirectory    Kind = "NotADirectory"
)

// Sentinel errors, one per kind. OpError values match them with errors.Is.
var (
	ErrPathNotFound     = errors.New("path not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAlreadyExists    = errors.New("already exists")
	ErrCrossDevice      = errors.New("cross-device move failed")
	ErrWatchLost        = errors.New("watch lost")
	ErrTagStoreCorrupt  = errors.New("tag store corrupt")
	ErrClipboardStale   = errors.New("clipboard source vanished")
	ErrInvalidName      = errors.New("invalid name")
	ErrNotADirectory    = errors.New("not a directory")
)

var kindSentinels = map[Kind]error{
	KindPathNotFound:     ErrPathNotFound,
	KindPermissionDenied: ErrPermissionDenied,
	KindAlreadyExists:    ErrAlreadyExists,
	KindCrossDevice:      ErrCrossDevice,
	KindWatchLost:        ErrWatchLost,
	KindTagStoreCorrupt:  ErrTagStoreCorrupt,
	KindClipboardStale:   ErrClipboardStale,
	KindInvalidName:      ErrInvalidName,
	KindNotADirectory:    ErrNotADirectory,
}

// OpError records a failed operation on a path.
type OpError struct {
	Op   string
	Path string
	Kind Kind
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Op + " " + e.Path + ": " + string(e.Kind)
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *OpError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// NewError builds an OpError with an explicit kind.
func NewError(op, path string, kind Kind, err error) *OpError {
	if err == nil {
		err = kindSentinels[kind]
	}
	return &OpError{Op: op, Path: path, Kind: kind, Err: err}
}

func newOpError(op, path string, err error) *OpError {
	return &OpError{Op: op, Path: path, Kind: Classify(err), Err: err}
}

// Classify maps err to a Kind. A nil error yields the empty kind.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		return KindPathNotFound
	case errors.Is(err, iofs.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, iofs.ErrExist):
		return KindAlreadyExists
	case errors.Is(err, syscall.EXDEV):
		return KindCrossDevice
	case errors.Is(err, syscall.ENOTDIR):
		return KindNotADirectory
	}
	return KindUnknown
}

// IsCrossDevice reports whether err came from renaming across filesystems.
func IsCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
