package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rpanes/internal/textutil"
	"github.com/mattn/go-runewidth"
)

// drawText writes text from startX, never past startX+maxWidth, and returns
// the column after the last cell written.
func (r *Renderer) drawText(startX, y, maxWidth int, text string, style tcell.Style) int {
	x := startX
	limit := startX + maxWidth
	runes := []rune(textutil.Sanitize(text))
	for i := 0; i < len(runes); {
		mainc := runes[i]
		i++
		var combc []rune
		for i < len(runes) && runewidth.RuneWidth(runes[i]) == 0 {
			combc = append(combc, runes[i])
			i++
		}
		w := runewidth.RuneWidth(mainc)
		if w <= 0 {
			w = 1
		}
		if x+w > limit {
			break
		}
		r.screen.SetContent(x, y, mainc, combc, style)
		for k := 1; k < w; k++ {
			r.screen.SetContent(x+k, y, ' ', nil, style)
		}
		x += w
	}
	return x
}

func (r *Renderer) fill(startX, y, width int, style tcell.Style) {
	for x := startX; x < startX+width; x++ {
		r.screen.SetContent(x, y, ' ', nil, style)
	}
}

// drawRightAligned writes text so that it ends at startX+width.
func (r *Renderer) drawRightAligned(startX, y, width int, text string, style tcell.Style) int {
	tw := textutil.Width(text)
	if tw > width {
		text = textutil.Truncate(text, width)
		tw = textutil.Width(text)
	}
	x := startX + width - tw
	r.drawText(x, y, tw, text, style)
	return x
}
