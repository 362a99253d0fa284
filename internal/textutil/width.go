package textutil

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// Width reports how many terminal cells text occupies.
func Width(text string) int {
	return runewidth.StringWidth(text)
}

// Truncate shortens text to at most width cells, ending in an ellipsis when
// anything was cut.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= runewidth.StringWidth(ellipsis) {
		return ellipsis
	}
	return runewidth.Truncate(text, width, ellipsis)
}

// Fit truncates text to width and pads it with spaces to exactly width cells.
func Fit(text string, width int) string {
	return runewidth.FillRight(Truncate(text, width), width)
}

// TruncateLeft keeps the end of text, which is the informative part of a
// path.
func TruncateLeft(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= runewidth.StringWidth(ellipsis) {
		return ellipsis
	}
	runes := []rune(text)
	keep := width - runewidth.StringWidth(ellipsis)
	used := 0
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if used+w > keep {
			break
		}
		used += w
		start--
	}
	return ellipsis + string(runes[start:])
}

// HumanSize formats a byte count with binary units.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
