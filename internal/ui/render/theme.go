package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rpanes/internal/tags"
)

// ColorTheme defines application colors.
type ColorTheme struct {
	Background       tcell.Color
	Foreground       tcell.Color
	HeaderBg         tcell.Color
	HeaderFg         tcell.Color
	FocusHeaderBg    tcell.Color
	FocusHeaderFg    tcell.Color
	SelectionBg      tcell.Color
	SelectionFg      tcell.Color
	InactiveSelectBg tcell.Color
	DirectoryFg      tcell.Color
	SymlinkFg        tcell.Color
	FileFg           tcell.Color
	MarkFg           tcell.Color
	MutedFg          tcell.Color
	ErrorFg          tcell.Color
	LiveFg           tcell.Color
	SeparatorFg      tcell.Color
	FooterBg         tcell.Color
	FooterFg         tcell.Color
	TagRed           tcell.Color
	TagGreen         tcell.Color
	TagYellow        tcell.Color
}

// GetColorTheme returns the default color scheme.
func GetColorTheme() ColorTheme {
	return ColorTheme{
		Background:       tcell.ColorDefault,
		Foreground:       tcell.ColorDefault,
		HeaderBg:         tcell.Color236,
		HeaderFg:         tcell.Color250,
		FocusHeaderBg:    tcell.Color33,
		FocusHeaderFg:    tcell.ColorWhite,
		SelectionBg:      tcell.Color33,
		SelectionFg:      tcell.ColorWhite,
		InactiveSelectBg: tcell.Color238,
		DirectoryFg:      tcell.Color33,
		SymlinkFg:        tcell.Color51,
		FileFg:           tcell.ColorDefault,
		MarkFg:           tcell.Color214,
		MutedFg:          tcell.ColorLightSlateGray,
		ErrorFg:          tcell.Color203,
		LiveFg:           tcell.Color42,
		SeparatorFg:      tcell.Color240,
		FooterBg:         tcell.ColorDefault,
		FooterFg:         tcell.ColorDefault,
		TagRed:           tcell.Color196,
		TagGreen:         tcell.Color46,
		TagYellow:        tcell.Color226,
	}
}

// TagColor maps a tag color to its terminal color. Untagged yields
// tcell.ColorDefault.
func (t ColorTheme) TagColor(c tags.Color) tcell.Color {
	switch c {
	case tags.ColorRed:
		return t.TagRed
	case tags.ColorGreen:
		return t.TagGreen
	case tags.ColorYellow:
		return t.TagYellow
	}
	return tcell.ColorDefault
}
