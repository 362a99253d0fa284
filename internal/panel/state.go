package panel

import (
	"github.com/kk-code-lab/rpanes/internal/listing"
)

// State is the lifecycle phase of a panel.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateWatching
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateWatching:
		return "watching"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Snapshot is an immutable view of a panel. Records must not be modified.
type Snapshot struct {
	ID            string
	Root          string
	Filter        listing.Category
	Term          string
	ContentSearch bool
	State         State
	Live          bool
	Err           error
	Records       []listing.Record
	Summary       listing.Summary
	// Version increases with every published change.
	Version uint64
}
