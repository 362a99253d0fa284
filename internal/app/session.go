package app

import (
	"github.com/kk-code-lab/rpanes/internal/listing"
	"github.com/kk-code-lab/rpanes/internal/panel"
	"github.com/kk-code-lab/rpanes/internal/ui/input"
	renderui "github.com/kk-code-lab/rpanes/internal/ui/render"
)

// panelUI is the per-panel cursor state the controllers know nothing about.
type panelUI struct {
	selected int
	offset   int
	marked   map[string]bool
}

type promptKind int

const (
	promptSearch promptKind = iota
	promptGlobalSearch
	promptRename
	promptNote
	promptSaveWorkspace
	promptLoadWorkspace
)

type promptState struct {
	kind  promptKind
	label string
	text  []rune
	// path is the record the prompt edits, for rename and note.
	path string
	// restore holds the search terms to put back on cancel, by panel id.
	restore map[string]string
}

type confirmState struct {
	question string
	paths    []string
}

func (app *Application) mode() input.Mode {
	switch {
	case app.confirm != nil:
		return input.ModeConfirm
	case app.prompt != nil:
		return input.ModePrompt
	case app.help:
		return input.ModeHelp
	case app.tagged:
		return input.ModeOverlay
	}
	return input.ModeNormal
}

func (app *Application) focused() *panel.Controller {
	panels := app.registry.Panels()
	if len(panels) == 0 {
		return nil
	}
	if app.focus >= len(panels) {
		app.focus = len(panels) - 1
	}
	if app.focus < 0 {
		app.focus = 0
	}
	return panels[app.focus]
}

func (app *Application) uiFor(c *panel.Controller) *panelUI {
	u, ok := app.ui[c.ID()]
	if !ok {
		u = &panelUI{marked: map[string]bool{}}
		app.ui[c.ID()] = u
	}
	return u
}

// selectedRecord returns the record under the cursor, clamping the cursor to
// the current listing first.
func (app *Application) selectedRecord(c *panel.Controller) (listing.Record, bool) {
	snap := c.Snapshot()
	u := app.uiFor(c)
	clampSelection(u, len(snap.Records))
	if len(snap.Records) == 0 {
		return listing.Record{}, false
	}
	return snap.Records[u.selected], true
}

// targets returns the marked paths in listing order, or the selected path when
// nothing visible is marked.
func (app *Application) targets(c *panel.Controller) []string {
	snap := c.Snapshot()
	u := app.uiFor(c)
	var out []string
	for _, rec := range snap.Records {
		if u.marked[rec.Path] {
			out = append(out, rec.Path)
		}
	}
	if len(out) > 0 {
		return out
	}
	if rec, ok := app.selectedRecord(c); ok {
		return []string{rec.Path}
	}
	return nil
}

func (app *Application) moveSelection(c *panel.Controller, delta int) {
	u := app.uiFor(c)
	u.selected += delta
	clampSelection(u, len(c.Snapshot().Records))
}

func (app *Application) resetCursor(c *panel.Controller) {
	u := app.uiFor(c)
	u.selected, u.offset = 0, 0
	u.marked = map[string]bool{}
}

func clampSelection(u *panelUI, n int) {
	if u.selected >= n {
		u.selected = n - 1
	}
	if u.selected < 0 {
		u.selected = 0
	}
}

func (app *Application) pageSize() int {
	_, h := app.screen.Size()
	if n := renderui.ListHeight(h); n > 1 {
		return n - 1
	}
	return 1
}

// view assembles the frame from the latest snapshots.
func (app *Application) view() renderui.View {
	_, h := app.screen.Size()
	visible := renderui.ListHeight(h)

	v := renderui.View{Status: app.status, Help: app.help}
	for i, c := range app.registry.Panels() {
		snap := c.Snapshot()
		u := app.uiFor(c)
		clampSelection(u, len(snap.Records))
		u.offset = renderui.ScrollOffset(u.selected, u.offset, visible, len(snap.Records))
		v.Panels = append(v.Panels, renderui.PanelView{
			Snapshot: snap,
			Selected: u.selected,
			Offset:   u.offset,
			Marked:   u.marked,
			Focused:  i == app.focus,
		})
	}
	if app.prompt != nil {
		v.Prompt = &renderui.Prompt{Label: app.prompt.label, Text: string(app.prompt.text)}
	}
	if app.confirm != nil {
		v.Confirm = app.confirm.question
	}
	if app.tagged {
		v.Tagged = app.tags.Tagged("", "")
	}
	if entry, ok := app.registry.Deps().Clipboard.Get(); ok {
		v.Clipboard = string(entry.Op) + " " + baseName(entry.Path)
	}
	return v
}
