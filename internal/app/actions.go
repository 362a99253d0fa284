package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kk-code-lab/rpanes/internal/config"
	"github.com/kk-code-lab/rpanes/internal/fileops"
	fsutil "github.com/kk-code-lab/rpanes/internal/fs"
	"github.com/kk-code-lab/rpanes/internal/panel"
	"github.com/kk-code-lab/rpanes/internal/tags"
	"github.com/kk-code-lab/rpanes/internal/ui/input"
)

// handleAction applies a decoded key press. It runs on the loop goroutine.
func (app *Application) handleAction(act input.Action) {
	app.dirty = true

	switch act.Kind {
	case input.ActionNone:
		app.dirty = false
		return
	case input.ActionQuit:
		app.shouldQuit = true
		return
	case input.ActionToggleHelp:
		app.help = !app.help && !app.tagged
		app.tagged = false
		return
	case input.ActionSuspend:
		app.suspendToShell()
		return
	case input.ActionPromptInsert, input.ActionPromptBackspace, input.ActionPromptSubmit, input.ActionPromptCancel:
		app.handlePrompt(act)
		return
	case input.ActionConfirm, input.ActionCancel:
		app.handleConfirm(act.Kind == input.ActionConfirm)
		return
	}

	c := app.focused()
	if c == nil {
		return
	}
	app.status = ""

	switch act.Kind {
	case input.ActionFocusNext:
		app.focus = (app.focus + 1) % len(app.registry.IDs())
	case input.ActionFocusPrev:
		n := len(app.registry.IDs())
		app.focus = (app.focus + n - 1) % n
	case input.ActionUp:
		app.moveSelection(c, -1)
	case input.ActionDown:
		app.moveSelection(c, 1)
	case input.ActionPageUp:
		app.moveSelection(c, -app.pageSize())
	case input.ActionPageDown:
		app.moveSelection(c, app.pageSize())
	case input.ActionHome:
		app.moveSelection(c, -len(c.Snapshot().Records))
	case input.ActionEnd:
		app.moveSelection(c, len(c.Snapshot().Records))
	case input.ActionOpen:
		rec, ok := app.selectedRecord(c)
		if !ok || !rec.IsDir {
			return
		}
		app.report(c.Enter(rec.Name))
		app.resetCursor(c)
	case input.ActionParent:
		app.report(c.GoUp())
		app.resetCursor(c)
	case input.ActionRefresh:
		c.RefreshNow()

	case input.ActionSearch:
		app.startPrompt(promptSearch, "Search", c.Snapshot().Term, "")
		app.prompt.restore = map[string]string{c.ID(): c.Snapshot().Term}
	case input.ActionGlobalSearch:
		app.startPrompt(promptGlobalSearch, "Search all", c.Snapshot().Term, "")
		app.prompt.restore = map[string]string{}
		for _, p := range app.registry.Panels() {
			app.prompt.restore[p.ID()] = p.Snapshot().Term
		}
	case input.ActionCycleFilter:
		next := c.Snapshot().Filter.Next()
		c.SetFilter(next)
		app.status = "filter: " + string(next)
	case input.ActionToggleContent:
		on := !c.Snapshot().ContentSearch
		c.SetContentSearch(on)
		app.status = fmt.Sprintf("content search: %t", on)

	case input.ActionToggleMark:
		if rec, ok := app.selectedRecord(c); ok {
			u := app.uiFor(c)
			if u.marked[rec.Path] {
				delete(u.marked, rec.Path)
			} else {
				u.marked[rec.Path] = true
			}
			app.moveSelection(c, 1)
		}

	case input.ActionCopy, input.ActionCut:
		rec, ok := app.selectedRecord(c)
		if !ok {
			return
		}
		if act.Kind == input.ActionCut {
			c.CutSelection(rec.Path)
			app.status = "cut: " + rec.Name
		} else {
			c.CopySelection(rec.Path)
			app.status = "copied: " + rec.Name
		}
	case input.ActionPaste:
		app.paste(c)
	case input.ActionMoveToNext:
		app.transfer(c, true)
	case input.ActionCopyToNext:
		app.transfer(c, false)
	case input.ActionDelete:
		paths := app.targets(c)
		if len(paths) == 0 {
			return
		}
		question := "Delete " + baseName(paths[0]) + "?"
		if len(paths) > 1 {
			question = fmt.Sprintf("Delete %d items?", len(paths))
		}
		app.confirm = &confirmState{question: question, paths: paths}
	case input.ActionRename:
		if rec, ok := app.selectedRecord(c); ok {
			app.startPrompt(promptRename, "Rename", rec.Name, rec.Path)
		}

	case input.ActionTagRed:
		app.tagTargets(c, func(p string) error { return c.SetTag(p, tags.ColorRed) })
	case input.ActionTagGreen:
		app.tagTargets(c, func(p string) error { return c.SetTag(p, tags.ColorGreen) })
	case input.ActionTagYellow:
		app.tagTargets(c, func(p string) error { return c.SetTag(p, tags.ColorYellow) })
	case input.ActionRemoveColor:
		app.tagTargets(c, c.RemoveColor)
	case input.ActionClearTags:
		app.tagTargets(c, c.ClearTags)
	case input.ActionNote:
		if rec, ok := app.selectedRecord(c); ok {
			app.startPrompt(promptNote, "Note", rec.Note, rec.Path)
		}
	case input.ActionShowTagged:
		app.tagged = true
		app.help = false

	case input.ActionYankPath:
		rec, ok := app.selectedRecord(c)
		if !ok {
			return
		}
		if err := app.yank(rec.Path); err != nil {
			app.logger.Warn("yank path", zap.Error(err))
			app.status = "clipboard unavailable: " + err.Error()
			return
		}
		app.status = "yanked: " + rec.Path

	case input.ActionSaveWorkspace:
		app.startPrompt(promptSaveWorkspace, "Save workspace", "", "")
	case input.ActionLoadWorkspace:
		label := "Load workspace"
		if names := app.workspace.Names(); len(names) > 0 {
			label += " (" + strings.Join(names, ", ") + ")"
		}
		app.startPrompt(promptLoadWorkspace, label, "", "")
	}
}

func (app *Application) startPrompt(kind promptKind, label, initial, path string) {
	app.prompt = &promptState{kind: kind, label: label, text: []rune(initial), path: path}
}

func (app *Application) handlePrompt(act input.Action) {
	p := app.prompt
	if p == nil {
		return
	}
	switch act.Kind {
	case input.ActionPromptInsert:
		p.text = append(p.text, act.Rune)
		app.liveSearch(p)
	case input.ActionPromptBackspace:
		if len(p.text) > 0 {
			p.text = p.text[:len(p.text)-1]
			app.liveSearch(p)
		}
	case input.ActionPromptCancel:
		app.prompt = nil
		for id, term := range p.restore {
			if c := app.registry.Get(id); c != nil {
				c.SetSearchTerm(term)
			}
		}
	case input.ActionPromptSubmit:
		app.prompt = nil
		app.submitPrompt(p)
	}
}

// liveSearch applies search prompts on every keystroke; the controllers
// debounce the refresh.
func (app *Application) liveSearch(p *promptState) {
	term := string(p.text)
	switch p.kind {
	case promptSearch:
		if c := app.focused(); c != nil {
			c.SetSearchTerm(term)
		}
	case promptGlobalSearch:
		app.registry.SetSearchTermAll(term)
	}
}

func (app *Application) submitPrompt(p *promptState) {
	text := string(p.text)
	c := app.focused()
	if c == nil {
		return
	}
	switch p.kind {
	case promptSearch, promptGlobalSearch:
		app.liveSearch(p)
	case promptRename:
		dest, err := c.RenameSelection(p.path, text)
		if app.report(err) {
			app.status = "renamed to " + baseName(dest)
		}
	case promptNote:
		if app.report(c.SetNote(p.path, strings.TrimSpace(text))) {
			app.status = "note saved"
		}
	case promptSaveWorkspace:
		paths := map[string]string{}
		for _, other := range app.registry.Panels() {
			if root := other.RootPath(); root != "" {
				paths[other.ID()] = root
			}
		}
		if app.report(app.workspace.SaveNamed(text, len(app.registry.IDs()), paths)) {
			app.status = "workspace saved: " + strings.TrimSpace(text)
		}
	case promptLoadWorkspace:
		app.loadWorkspace(strings.TrimSpace(text))
	}
}

func (app *Application) handleConfirm(yes bool) {
	confirm := app.confirm
	app.confirm = nil
	if confirm == nil || !yes {
		app.status = "cancelled"
		return
	}
	c := app.focused()
	if c == nil {
		return
	}
	app.resetMarks(c)
	if len(confirm.paths) == 1 {
		if app.report(c.DeleteSelection(confirm.paths[0])) {
			app.status = "deleted " + baseName(confirm.paths[0])
		}
		return
	}
	app.status = formatBulk("deleted", c.BulkDelete(confirm.paths))
}

func (app *Application) paste(c *panel.Controller) {
	if !app.registry.Deps().Clipboard.HasData() {
		app.status = "clipboard empty"
		return
	}
	dest, err := c.PasteIntoSelf()
	if !app.report(err) || dest == "" {
		return
	}
	app.status = "pasted " + baseName(dest)
}

// transfer sends the marked items, or the selected one, to the next panel.
func (app *Application) transfer(c *panel.Controller, move bool) {
	targetID := app.registry.Next(c.ID())
	if targetID == c.ID() {
		app.status = "no other panel"
		return
	}
	paths := app.targets(c)
	if len(paths) == 0 {
		return
	}
	app.resetMarks(c)

	if move && len(paths) == 1 {
		dest, err := c.MoveSelectionTo(paths[0], targetID)
		if app.report(err) {
			app.status = "moved to " + filepath.Dir(dest)
		}
		return
	}

	var (
		res fileops.BulkResult
		err error
	)
	verb := "copied"
	if move {
		verb = "moved"
		res, err = c.BulkMoveTo(paths, targetID)
	} else {
		res, err = c.BulkCopyTo(paths, targetID)
	}
	if app.report(err) {
		app.status = formatBulk(verb, res)
	}
}

func (app *Application) tagTargets(c *panel.Controller, fn func(string) error) {
	for _, p := range app.targets(c) {
		if !app.report(fn(p)) {
			return
		}
	}
}

func (app *Application) loadWorkspace(name string) {
	saved, err := app.workspace.LoadNamed(name)
	if !app.report(err) {
		return
	}
	for i := len(app.registry.IDs()); i < saved.NumPanels && i < config.MaxPanels; i++ {
		if _, err := app.openPanel(panelID(i)); err != nil {
			app.report(err)
			return
		}
	}
	for _, c := range app.registry.Panels() {
		root, ok := saved.Paths[c.ID()]
		if !ok {
			continue
		}
		app.resetCursor(c)
		if err := c.SetRootPath(root); err != nil {
			app.logger.Warn("load workspace panel", zap.String("panel", c.ID()), zap.Error(err))
		}
	}
	app.status = "workspace loaded: " + name
}

func (app *Application) resetMarks(c *panel.Controller) {
	app.uiFor(c).marked = map[string]bool{}
}

// report shows err on the status line and reports whether it was nil.
func (app *Application) report(err error) bool {
	if err == nil {
		return true
	}
	app.logger.Debug("action failed", zap.Error(err))
	var opErr *fsutil.OpError
	switch {
	case errors.As(err, &opErr):
		app.status = fmt.Sprintf("%s: %s", baseName(opErr.Path), opErr.Kind)
	default:
		app.status = err.Error()
	}
	return false
}

func formatBulk(verb string, res fileops.BulkResult) string {
	msg := fmt.Sprintf("%s %d", verb, len(res.Succeeded))
	if len(res.Failed) == 0 {
		return msg
	}
	first := res.Failed[0]
	return fmt.Sprintf("%s, failed %d (%s: %s)", msg, len(res.Failed), baseName(first.Path), first.Kind)
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
