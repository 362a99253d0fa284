// Package input maps terminal key events to front-end actions.
package input

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

var normalRunes = map[rune]ActionKind{
	'q': ActionQuit,
	'k': ActionUp,
	'j': ActionDown,
	'/': ActionSearch,
	'g': ActionGlobalSearch,
	'f': ActionCycleFilter,
	'c': ActionToggleContent,
	' ': ActionToggleMark,
	'y': ActionCopy,
	'x': ActionCut,
	'p': ActionPaste,
	'm': ActionMoveToNext,
	'C': ActionCopyToNext,
	'd': ActionDelete,
	'R': ActionRename,
	'1': ActionTagRed,
	'2': ActionTagGreen,
	'3': ActionTagYellow,
	'0': ActionRemoveColor,
	'n': ActionNote,
	't': ActionClearTags,
	'Y': ActionYankPath,
	'r': ActionRefresh,
	'?': ActionToggleHelp,
	'T': ActionShowTagged,
	'w': ActionSaveWorkspace,
	'W': ActionLoadWorkspace,
}

// Decode converts ev into an action for the given mode.
func Decode(ev *tcell.EventKey, mode Mode) Action {
	if ev.Key() == tcell.KeyCtrlC {
		return Action{Kind: ActionQuit}
	}
	switch mode {
	case ModePrompt:
		return decodePrompt(ev)
	case ModeConfirm:
		return decodeConfirm(ev)
	case ModeHelp, ModeOverlay:
		return decodeHelp(ev)
	default:
		return decodeNormal(ev)
	}
}

func decodeNormal(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyTab:
		return Action{Kind: ActionFocusNext}
	case tcell.KeyCtrlZ:
		return Action{Kind: ActionSuspend}
	case tcell.KeyBacktab:
		return Action{Kind: ActionFocusPrev}
	case tcell.KeyUp:
		return Action{Kind: ActionUp}
	case tcell.KeyDown:
		return Action{Kind: ActionDown}
	case tcell.KeyPgUp:
		return Action{Kind: ActionPageUp}
	case tcell.KeyPgDn:
		return Action{Kind: ActionPageDown}
	case tcell.KeyHome:
		return Action{Kind: ActionHome}
	case tcell.KeyEnd:
		return Action{Kind: ActionEnd}
	case tcell.KeyEnter, tcell.KeyRight:
		return Action{Kind: ActionOpen}
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyLeft:
		return Action{Kind: ActionParent}
	case tcell.KeyRune:
		if kind, ok := normalRunes[ev.Rune()]; ok {
			return Action{Kind: kind}
		}
	}
	return Action{}
}

func decodePrompt(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEnter:
		return Action{Kind: ActionPromptSubmit}
	case tcell.KeyEscape:
		return Action{Kind: ActionPromptCancel}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return Action{Kind: ActionPromptBackspace}
	case tcell.KeyRune:
		r := ev.Rune()
		if unicode.IsPrint(r) {
			return Action{Kind: ActionPromptInsert, Rune: r}
		}
	}
	return Action{}
}

func decodeConfirm(ev *tcell.EventKey) Action {
	if ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case 'y', 'Y':
			return Action{Kind: ActionConfirm}
		}
	}
	return Action{Kind: ActionCancel}
}

func decodeHelp(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape:
		return Action{Kind: ActionToggleHelp}
	case tcell.KeyRune:
		switch ev.Rune() {
		case '?', 'q', 'T':
			return Action{Kind: ActionToggleHelp}
		}
	}
	return Action{}
}
