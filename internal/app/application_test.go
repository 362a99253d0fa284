package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/rpanes/internal/config"
	"github.com/kk-code-lab/rpanes/internal/panel"
	"github.com/kk-code-lab/rpanes/internal/tags"
	"github.com/kk-code-lab/rpanes/internal/ui/input"
)

type harness struct {
	app    *Application
	screen tcell.Screen
	base   string
	left   string
	right  string
	yanked string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	base := t.TempDir()
	left := filepath.Join(base, "left")
	right := filepath.Join(base, "right")
	for _, dir := range []string{left, right} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	writeFile(t, filepath.Join(left, "a.txt"), "alpha")
	writeFile(t, filepath.Join(left, "b.txt"), "bravo")

	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init screen: %v", err)
	}
	screen.SetSize(100, 30)

	settings := config.Settings{
		Panels:    config.PanelSettings{Count: 2, SearchDelay: 40 * time.Millisecond, WatchDelay: 100 * time.Millisecond},
		Tags:      config.TagSettings{Path: filepath.Join(base, "state", "file_tags.json")},
		Workspace: config.WorkspaceSettings{Path: filepath.Join(base, "state", "workspace.json")},
	}
	app, err := newApplication(screen, settings, []string{left, right})
	if err != nil {
		screen.Fini()
		t.Fatalf("newApplication: %v", err)
	}
	h := &harness{app: app, screen: screen, base: base, left: left, right: right}
	app.yank = func(text string) error {
		h.yanked = text
		return nil
	}
	t.Cleanup(func() { _ = app.Close() })

	h.pump(t, "initial listings", func() bool {
		return len(h.panel(0).Snapshot().Records) == 2 && h.panel(1).Snapshot().State == panel.StateWatching
	})
	return h
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func (h *harness) panel(i int) *panel.Controller {
	return h.app.registry.Panels()[i]
}

// pump runs loop tasks on the test goroutine, as Run does, until cond holds.
func (h *harness) pump(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for !cond() {
		select {
		case fn := <-h.app.loop.Tasks():
			fn()
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for %s (status %q)", what, h.app.status)
		}
	}
}

func (h *harness) press(keys ...any) {
	for _, k := range keys {
		switch k := k.(type) {
		case rune:
			h.app.handleEvent(tcell.NewEventKey(tcell.KeyRune, k, tcell.ModNone))
		case tcell.Key:
			h.app.handleEvent(tcell.NewEventKey(k, 0, tcell.ModNone))
		case string:
			for _, r := range k {
				h.app.handleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
			}
		}
	}
}

func names(c *panel.Controller) []string {
	var out []string
	for _, rec := range c.Snapshot().Records {
		out = append(out, rec.Name)
	}
	return out
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}

func TestPanelCount(t *testing.T) {
	tests := []struct {
		name                    string
		args, saved, configured int
		want                    int
	}{
		{"configured default", 0, 0, 6, 6},
		{"arguments win", 3, 5, 6, 3},
		{"saved count", 0, 4, 6, 4},
		{"clamped to max", 12, 0, 6, config.MaxPanels},
		{"at least one", 0, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := panelCount(tt.args, tt.saved, tt.configured); got != tt.want {
				t.Fatalf("panelCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewApplicationOpensPanelsAtArguments(t *testing.T) {
	h := newHarness(t)

	if ids := h.app.registry.IDs(); len(ids) != 2 || ids[0] != "panel1" || ids[1] != "panel2" {
		t.Fatalf("unexpected panel ids %v", ids)
	}
	if got := names(h.panel(0)); len(got) != 2 || got[0] != "a.txt" || got[1] != "b.txt" {
		t.Fatalf("unexpected left listing %v", got)
	}
	if n := h.app.workspace.NumPanels(); n != 2 {
		t.Fatalf("expected saved panel count 2, got %d", n)
	}
}

func TestFocusAndNavigation(t *testing.T) {
	// SETUP
	h := newHarness(t)
	sub := filepath.Join(h.left, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	h.press('r')
	h.pump(t, "sub listed", func() bool { return contains(names(h.panel(0)), "sub") })

	// EXECUTE
	h.press(tcell.KeyEnter)
	h.pump(t, "entered sub", func() bool { return h.panel(0).RootPath() == sub })
	h.press(tcell.KeyBackspace2)
	h.pump(t, "back at left", func() bool { return h.panel(0).RootPath() == h.left })
	h.press(tcell.KeyTab)

	// VERIFY
	if h.app.focused().ID() != "panel2" {
		t.Fatalf("expected panel2 focused, got %s", h.app.focused().ID())
	}
	h.press(tcell.KeyBacktab)
	if h.app.focused().ID() != "panel1" {
		t.Fatalf("expected panel1 focused after shift-tab")
	}
}

func TestMoveMarkedItemsToNextPanel(t *testing.T) {
	h := newHarness(t)

	h.press(' ', ' ', 'm')

	h.pump(t, "items moved", func() bool {
		return len(h.panel(1).Snapshot().Records) == 2 && len(h.panel(0).Snapshot().Records) == 0
	})
	if h.app.status != "moved 2" {
		t.Fatalf("unexpected status %q", h.app.status)
	}
	if len(h.app.uiFor(h.panel(0)).marked) != 0 {
		t.Fatalf("expected marks cleared after move")
	}
}

func TestCopySelectedToNextPanelKeepsSource(t *testing.T) {
	h := newHarness(t)

	h.press('C')

	h.pump(t, "item copied", func() bool { return contains(names(h.panel(1)), "a.txt") })
	if !contains(names(h.panel(0)), "a.txt") {
		t.Fatalf("expected source kept after copy")
	}
	if !strings.HasPrefix(h.app.status, "copied 1") {
		t.Fatalf("unexpected status %q", h.app.status)
	}
}

func TestCutInOnePanelPasteInAnother(t *testing.T) {
	h := newHarness(t)

	h.press('x', tcell.KeyTab, 'p')

	h.pump(t, "cut pasted", func() bool {
		return contains(names(h.panel(1)), "a.txt") && !contains(names(h.panel(0)), "a.txt")
	})
	if h.app.registry.Deps().Clipboard.HasData() {
		t.Fatalf("expected clipboard cleared after cut paste")
	}

	h.press('p')
	if h.app.status != "clipboard empty" {
		t.Fatalf("unexpected status %q", h.app.status)
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	target := filepath.Join(h.left, "a.txt")

	h.press('d')
	if h.app.mode() != input.ModeConfirm {
		t.Fatalf("expected confirm mode")
	}
	h.press('n')
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected file kept after cancel: %v", err)
	}

	h.press('d', 'y')
	h.pump(t, "file deleted", func() bool { return !contains(names(h.panel(0)), "a.txt") })
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}
}

func TestSearchPromptAppliesAndRestoresTerm(t *testing.T) {
	h := newHarness(t)

	h.press('/', "b")
	if h.app.mode() != input.ModePrompt {
		t.Fatalf("expected prompt mode")
	}
	h.pump(t, "filtered listing", func() bool {
		got := names(h.panel(0))
		return len(got) == 1 && got[0] == "b.txt"
	})

	h.press(tcell.KeyEscape)
	h.pump(t, "term restored", func() bool { return len(h.panel(0).Snapshot().Records) == 2 })
	if term := h.panel(0).Snapshot().Term; term != "" {
		t.Fatalf("expected empty term after cancel, got %q", term)
	}
}

func TestGlobalSearchAppliesToEveryPanel(t *testing.T) {
	h := newHarness(t)

	h.press('g', "bravo", tcell.KeyEnter)

	for i := 0; i < 2; i++ {
		if term := h.panel(i).Snapshot().Term; term != "bravo" {
			t.Fatalf("panel %d term = %q", i, term)
		}
	}
}

func TestTagKeysAndTaggedOverlay(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.left, "a.txt")

	h.press('1')
	if got := h.app.tags.Get(path).Color; got != tags.ColorRed {
		t.Fatalf("expected red tag, got %q", got)
	}
	h.pump(t, "tag shown", func() bool { return h.panel(0).Snapshot().Records[0].TagColor == tags.ColorRed })

	h.press('n', "check", tcell.KeyEnter)
	if got := h.app.tags.Get(path).Note; got != "check" {
		t.Fatalf("expected note, got %q", got)
	}

	h.press('T')
	if h.app.mode() != input.ModeOverlay {
		t.Fatalf("expected overlay mode")
	}
	if v := h.app.view(); len(v.Tagged) != 1 || v.Tagged[0].Entry.Note != "check" {
		t.Fatalf("unexpected tagged view %+v", v.Tagged)
	}
	h.press(tcell.KeyEscape)

	h.press('0')
	if got := h.app.tags.Get(path); got.Color != tags.ColorNone || got.Note != "check" {
		t.Fatalf("expected color removed and note kept, got %+v", got)
	}
	h.press('t')
	if !h.app.tags.Get(path).IsZero() {
		t.Fatalf("expected tags cleared")
	}
}

func TestRenamePrompt(t *testing.T) {
	h := newHarness(t)

	h.press('R')
	if got := string(h.app.prompt.text); got != "a.txt" {
		t.Fatalf("expected prompt prefilled with name, got %q", got)
	}
	for i := 0; i < len("a.txt"); i++ {
		h.press(tcell.KeyBackspace2)
	}
	h.press("z.txt", tcell.KeyEnter)

	h.pump(t, "renamed", func() bool { return contains(names(h.panel(0)), "z.txt") })
	if _, err := os.Stat(filepath.Join(h.left, "z.txt")); err != nil {
		t.Fatalf("expected renamed file: %v", err)
	}
}

func TestYankPath(t *testing.T) {
	h := newHarness(t)

	h.press(tcell.KeyDown, 'Y')

	if want := filepath.Join(h.left, "b.txt"); h.yanked != want {
		t.Fatalf("yanked %q, want %q", h.yanked, want)
	}
}

func TestWorkspaceSaveAndLoad(t *testing.T) {
	h := newHarness(t)

	h.press('w', "proj", tcell.KeyEnter)
	if names := h.app.workspace.Names(); len(names) != 1 || names[0] != "proj" {
		t.Fatalf("expected saved workspace, got %v", names)
	}

	h.press(tcell.KeyBackspace2)
	h.pump(t, "moved up", func() bool { return h.panel(0).RootPath() == h.base })

	h.press('W', "proj", tcell.KeyEnter)
	h.pump(t, "workspace restored", func() bool { return h.panel(0).RootPath() == h.left })
	if h.app.status != "workspace loaded: proj" {
		t.Fatalf("unexpected status %q", h.app.status)
	}
}

func TestRenderShowsBothPanels(t *testing.T) {
	h := newHarness(t)

	h.app.renderer.Render(h.app.view())

	w, _ := h.screen.Size()
	var header strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := h.screen.GetContent(x, 0)
		header.WriteRune(r)
	}
	if !strings.Contains(header.String(), "left") || !strings.Contains(header.String(), "right") {
		t.Fatalf("header missing panel roots: %q", header.String())
	}
}
