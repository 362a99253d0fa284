package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rpanes/internal/listing"
	"github.com/kk-code-lab/rpanes/internal/panel"
	"github.com/kk-code-lab/rpanes/internal/textutil"
)

// Renderer handles all UI rendering
type Renderer struct {
	screen tcell.Screen
	theme  ColorTheme

	mu         sync.Mutex
	lastLayout Layout
	hasLayout  bool
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  GetColorTheme(),
	}
}

// LastLayout returns the geometry used by the previous Render call.
func (r *Renderer) LastLayout() (Layout, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastLayout, r.hasLayout
}

// Render draws the entire UI for v.
func (r *Renderer) Render(v View) {
	r.screen.Clear()
	w, h := r.screen.Size()

	switch {
	case v.Help:
		r.drawHelpOverlay(w, h)
	case v.Tagged != nil:
		r.drawTaggedOverlay(v, w, h)
	default:
		layout := ComputeLayout(w, h, len(v.Panels))
		r.mu.Lock()
		r.lastLayout, r.hasLayout = layout, true
		r.mu.Unlock()

		for i, pv := range v.Panels {
			col := layout.Columns[i]
			r.drawPanel(pv, col, layout, h)
			if i < len(v.Panels)-1 {
				r.drawSeparator(col.X+col.Width, h)
			}
		}
		if len(v.Panels) == 0 {
			r.drawText(1, 1, w-2, "no panels open", tcell.StyleDefault.Foreground(r.theme.MutedFg))
		}
	}
	r.drawStatusLine(v, w, h)
	r.screen.Show()
}

func (r *Renderer) drawSeparator(x, h int) {
	style := tcell.StyleDefault.Foreground(r.theme.SeparatorFg)
	for y := 0; y < h-1; y++ {
		r.screen.SetContent(x, y, '│', nil, style)
	}
}

func (r *Renderer) drawPanel(pv PanelView, col Column, layout Layout, h int) {
	r.drawPanelHeader(pv, col)

	snap := pv.Snapshot
	base := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	top := layout.ListTop

	switch {
	case snap.Root == "":
		r.drawText(col.X+1, top, col.Width-1, "no folder", base.Foreground(r.theme.MutedFg))
	case snap.Err != nil && len(snap.Records) == 0:
		r.drawText(col.X+1, top, col.Width-1, snap.Err.Error(), base.Foreground(r.theme.ErrorFg))
	case len(snap.Records) == 0 && snap.State == panel.StateLoading:
		r.drawText(col.X+1, top, col.Width-1, "loading…", base.Foreground(r.theme.MutedFg))
	case len(snap.Records) == 0:
		r.drawText(col.X+1, top, col.Width-1, "empty", base.Foreground(r.theme.MutedFg))
	default:
		end := pv.Offset + layout.ListHeight
		if end > len(snap.Records) {
			end = len(snap.Records)
		}
		for i := pv.Offset; i < end; i++ {
			r.drawRecord(snap.Records[i], col, top+i-pv.Offset, pv, i == pv.Selected)
		}
	}

	if h >= chromeRows {
		r.drawPanelFooter(pv, col, h-2)
	}
}

func (r *Renderer) drawPanelHeader(pv PanelView, col Column) {
	snap := pv.Snapshot
	style := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg)
	if pv.Focused {
		style = tcell.StyleDefault.Background(r.theme.FocusHeaderBg).Foreground(r.theme.FocusHeaderFg).Bold(true)
	}
	r.fill(col.X, 0, col.Width, style)

	x := col.X
	dot := "○"
	dotStyle := style.Foreground(r.theme.MutedFg)
	if snap.Live {
		dot = "●"
		dotStyle = style.Foreground(r.theme.LiveFg)
	}
	x = r.drawText(x, 0, col.Width, dot, dotStyle)
	x = r.drawText(x, 0, col.X+col.Width-x, " ", style)

	var flags []string
	if snap.Filter != listing.CategoryAll && snap.Filter != "" {
		flags = append(flags, string(snap.Filter))
	}
	if snap.Term != "" {
		flags = append(flags, "/"+snap.Term)
	}
	if snap.ContentSearch {
		flags = append(flags, "[c]")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " " + strings.Join(flags, " ")
	}

	room := col.X + col.Width - x - textutil.Width(suffix)
	root := snap.Root
	if root == "" {
		root = snap.ID
	}
	if room > 0 {
		x = r.drawText(x, 0, room, textutil.TruncateLeft(root, room), style)
	}
	r.drawText(x, 0, col.X+col.Width-x, suffix, style)
}

func (r *Renderer) drawRecord(rec listing.Record, col Column, y int, pv PanelView, selected bool) {
	base := tcell.StyleDefault.Background(r.theme.Background)
	rowStyle := base.Foreground(r.theme.FileFg)
	switch {
	case rec.IsSymlink:
		rowStyle = base.Foreground(r.theme.SymlinkFg)
	case rec.IsDir:
		rowStyle = base.Foreground(r.theme.DirectoryFg)
	}
	if selected {
		bg := r.theme.InactiveSelectBg
		if pv.Focused {
			bg = r.theme.SelectionBg
		}
		rowStyle = rowStyle.Background(bg).Foreground(r.theme.SelectionFg)
	}
	r.fill(col.X, y, col.Width, rowStyle)

	x := col.X
	marker := " "
	if pv.Marked[rec.Path] {
		marker = "*"
	}
	x = r.drawText(x, y, col.Width, marker, rowStyle.Foreground(r.theme.MarkFg).Bold(true))

	tagMark := " "
	tagStyle := rowStyle
	if rec.TagColor != "" {
		tagMark = "●"
		tagStyle = rowStyle.Foreground(r.theme.TagColor(rec.TagColor))
	}
	x = r.drawText(x, y, col.X+col.Width-x, tagMark, tagStyle)

	name := rec.Name
	if rec.IsDir {
		name += "/"
	}
	if rec.Note != "" {
		name += " ✎"
	}

	right := ""
	if !rec.IsDir {
		right = textutil.HumanSize(rec.Size)
	}
	room := col.X + col.Width - x
	if right != "" && room > textutil.Width(right)+4 {
		r.drawRightAligned(col.X, y, col.Width, right, rowStyle)
		room -= textutil.Width(right) + 1
	}
	r.drawText(x, y, room, textutil.Truncate(name, room), rowStyle)
}

func (r *Renderer) drawPanelFooter(pv PanelView, col Column, y int) {
	style := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.MutedFg)
	r.fill(col.X, y, col.Width, style)
	r.drawText(col.X, y, col.Width, formatSummary(pv.Snapshot.Summary), style)
}

func formatSummary(s listing.Summary) string {
	parts := []string{
		fmt.Sprintf("%d dirs", s.Dirs),
		fmt.Sprintf("%d files", s.Files),
		textutil.HumanSize(s.TotalBytes),
	}
	line := strings.Join(parts, " · ")
	const maxExt = 3
	var exts []string
	for i, ec := range s.Extensions {
		if i == maxExt {
			break
		}
		name := ec.Ext
		if name == "" {
			name = "-"
		}
		exts = append(exts, fmt.Sprintf("%s:%d", name, ec.Count))
	}
	if len(exts) > 0 {
		line += " · " + strings.Join(exts, " ")
	}
	return line
}

func (r *Renderer) drawStatusLine(v View, w, h int) {
	if h <= 0 {
		return
	}
	y := h - 1
	style := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg)
	r.fill(0, y, w, style)

	rightEdge := w
	if v.Clipboard != "" {
		rightEdge = r.drawRightAligned(0, y, w, " "+v.Clipboard+" ", style.Foreground(r.theme.MarkFg))
	}

	switch {
	case v.Prompt != nil:
		x := r.drawText(0, y, rightEdge, v.Prompt.Label+": ", style.Bold(true))
		room := rightEdge - x - 1
		x = r.drawText(x, y, room, textutil.TruncateLeft(v.Prompt.Text, room), style)
		r.screen.SetContent(x, y, '▏', nil, style)
	case v.Confirm != "":
		r.drawText(0, y, rightEdge, v.Confirm+" [y/N]", style.Foreground(r.theme.ErrorFg).Bold(true))
	default:
		status := v.Status
		if status == "" {
			status = "? help · q quit"
		}
		r.drawText(0, y, rightEdge, textutil.Truncate(status, rightEdge), style)
	}
}
