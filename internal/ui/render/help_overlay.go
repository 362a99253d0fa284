package render

import (
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rpanes/internal/textutil"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

var helpSections = []helpOverlaySection{
	{
		title: "Panels",
		entries: []helpOverlayEntry{
			{keys: "Tab / S-Tab", desc: "Focus next / previous panel"},
			{keys: "↑/↓ PgUp/PgDn", desc: "Move selection"},
			{keys: "↵ or →", desc: "Enter directory"},
			{keys: "⌫ or ←", desc: "Parent directory"},
			{keys: "r", desc: "Refresh panel"},
		},
	},
	{
		title: "Filter & Search",
		entries: []helpOverlayEntry{
			{keys: "/", desc: "Search in focused panel"},
			{keys: "g", desc: "Search in every panel"},
			{keys: "f", desc: "Cycle file type filter"},
			{keys: "c", desc: "Toggle content search"},
		},
	},
	{
		title: "Files",
		entries: []helpOverlayEntry{
			{keys: "space", desc: "Mark / unmark"},
			{keys: "y / x / p", desc: "Copy / cut / paste here"},
			{keys: "m", desc: "Move selection or marked to next panel"},
			{keys: "C", desc: "Copy marked to next panel"},
			{keys: "d", desc: "Delete selection or marked"},
			{keys: "R", desc: "Rename"},
			{keys: "Y", desc: "Yank path to system clipboard"},
		},
	},
	{
		title: "Tags",
		entries: []helpOverlayEntry{
			{keys: "1 / 2 / 3", desc: "Tag red / green / yellow"},
			{keys: "0", desc: "Remove color"},
			{keys: "n", desc: "Edit note"},
			{keys: "t", desc: "Clear tags"},
			{keys: "T", desc: "List tagged files"},
		},
	},
	{
		title: "Workspace",
		entries: []helpOverlayEntry{
			{keys: "w / W", desc: "Save / load named workspace"},
			{keys: "q", desc: "Quit"},
			{keys: "?", desc: "Close this help"},
		},
	},
}

func buildHelpOverlayLines() []string {
	lines := make([]string, 0, 40)
	for i, section := range helpSections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, entry := range section.entries {
			lines = append(lines, fmt.Sprintf("  %s %s", textutil.Fit(entry.keys, 14), entry.desc))
		}
	}
	return lines
}

func (r *Renderer) drawOverlayFrame(title, footer string, w, h int) tcell.Style {
	base := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h-1; y++ {
		r.fill(0, y, w, base)
	}
	header := base.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg).Bold(true)
	r.fill(0, 0, w, header)
	start := 0
	if tw := textutil.Width(title); w > tw {
		start = (w - tw) / 2
	}
	r.drawText(start, 0, w-start, title, header)
	if h > 2 {
		r.fill(0, h-2, w, header)
		r.drawText(0, h-2, w, textutil.Truncate(footer, w), header)
	}
	return base
}

func (r *Renderer) drawHelpOverlay(w, h int) {
	base := r.drawOverlayFrame(" Help ", "? toggle · Esc/q close", w, h)
	row := 2
	for _, line := range buildHelpOverlayLines() {
		if row >= h-2 {
			break
		}
		r.drawText(2, row, w-4, textutil.Truncate(line, w-4), base)
		row++
	}
}

func (r *Renderer) drawTaggedOverlay(v View, w, h int) {
	base := r.drawOverlayFrame(fmt.Sprintf(" Tagged files (%d) ", len(v.Tagged)), "T/Esc close", w, h)
	if len(v.Tagged) == 0 {
		r.drawText(2, 2, w-4, "no tagged files", base.Foreground(r.theme.MutedFg))
		return
	}
	row := 2
	for _, item := range v.Tagged {
		if row >= h-2 {
			break
		}
		x := r.drawText(2, row, 2, "● ", base.Foreground(r.theme.TagColor(item.Entry.Color)))
		line := filepath.Base(item.Path)
		if item.Entry.Note != "" {
			line += " · " + item.Entry.Note
		}
		line += "  " + filepath.Dir(item.Path)
		r.drawText(x, row, w-x-2, textutil.Truncate(line, w-x-2), base)
		row++
	}
}
