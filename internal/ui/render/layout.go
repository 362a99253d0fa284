package render

// Column is the horizontal span of one panel.
type Column struct {
	X     int
	Width int
}

// Layout is the geometry of the last frame.
type Layout struct {
	Columns    []Column
	ListTop    int
	ListHeight int
}

// rows reserved outside the list: panel header, panel footer, status line.
const chromeRows = 3

// ComputeLayout splits width into n equal columns separated by one cell.
// The rightmost column absorbs the remainder.
func ComputeLayout(width, height, n int) Layout {
	layout := Layout{ListTop: 1, ListHeight: ListHeight(height)}
	if n <= 0 || width <= 0 {
		return layout
	}
	usable := width - (n - 1)
	if usable < n {
		usable = n
	}
	colWidth := usable / n
	x := 0
	for i := 0; i < n; i++ {
		w := colWidth
		if i == n-1 {
			w = width - x
			if w < 1 {
				w = 1
			}
		}
		layout.Columns = append(layout.Columns, Column{X: x, Width: w})
		x += w + 1
	}
	return layout
}

// ListHeight is the number of record rows available on a screen of height h.
func ListHeight(h int) int {
	if h <= chromeRows {
		return 0
	}
	return h - chromeRows
}

// ScrollOffset returns the first visible row that keeps selected on screen.
func ScrollOffset(selected, offset, visible, total int) int {
	if visible <= 0 || total <= 0 {
		return 0
	}
	if selected < offset {
		offset = selected
	}
	if selected >= offset+visible {
		offset = selected - visible + 1
	}
	if last := total - visible; offset > last {
		offset = last
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
