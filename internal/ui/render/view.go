package render

import (
	"github.com/kk-code-lab/rpanes/internal/panel"
	"github.com/kk-code-lab/rpanes/internal/tags"
)

// PanelView is one panel as the front-end presents it.
type PanelView struct {
	Snapshot panel.Snapshot
	Selected int
	Offset   int
	Marked   map[string]bool
	Focused  bool
}

// Prompt is an active line editor at the bottom of the screen.
type Prompt struct {
	Label string
	Text  string
}

// View is everything the renderer draws in one frame.
type View struct {
	Panels []PanelView
	// Status is the last message shown when no prompt is active.
	Status string
	Prompt *Prompt
	// Confirm is a yes/no question; it takes precedence over Status.
	Confirm   string
	Clipboard string
	Help      bool
	// Tagged, when non-nil, replaces the panels with the tagged files list.
	Tagged []tags.Tagged
}
