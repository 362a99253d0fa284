package input

// ActionKind identifies what a key press asks for.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionQuit
	ActionFocusNext
	ActionFocusPrev
	ActionUp
	ActionDown
	ActionPageUp
	ActionPageDown
	ActionHome
	ActionEnd
	ActionOpen
	ActionParent
	ActionSearch
	ActionGlobalSearch
	ActionCycleFilter
	ActionToggleContent
	ActionToggleMark
	ActionCopy
	ActionCut
	ActionPaste
	ActionMoveToNext
	ActionCopyToNext
	ActionDelete
	ActionRename
	ActionTagRed
	ActionTagGreen
	ActionTagYellow
	ActionRemoveColor
	ActionNote
	ActionClearTags
	ActionYankPath
	ActionRefresh
	ActionToggleHelp
	ActionShowTagged
	ActionSaveWorkspace
	ActionLoadWorkspace
	ActionSuspend

	ActionPromptInsert
	ActionPromptBackspace
	ActionPromptSubmit
	ActionPromptCancel

	ActionConfirm
	ActionCancel
)

// Action is a decoded key press. Rune is set for ActionPromptInsert.
type Action struct {
	Kind ActionKind
	Rune rune
}

// Mode selects the key map.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt
	ModeConfirm
	ModeHelp
	// ModeOverlay is any read-only full-screen view, such as the tag list.
	ModeOverlay
)
