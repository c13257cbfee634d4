package input

import (
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/termtui/internal/config"
	"github.com/Gaurav-Gosain/termtui/internal/vt"
)

func snapshotOf(t *testing.T, cols, rows int, content string) *vt.Snapshot {
	t.Helper()
	e := vt.NewEmulator(cols, rows)
	if _, err := e.WriteString(content); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	return e.Snapshot()
}

func TestCharacterSelectionYank(t *testing.T) {
	cm := NewCopyMode(snapshotOf(t, 10, 4, "abcdef"))

	cm.MoveTo(Position{X: 2, Y: 0})
	cm.StartSelection(SelectionCharacter)
	cm.Move(2, 0)

	text, ok := cm.Yank()
	if !ok {
		t.Fatal("Yank with anchor should succeed")
	}
	if text != "cde" {
		t.Errorf("yank = %q, want %q", text, "cde")
	}
}

func TestCharacterSelectionReversed(t *testing.T) {
	cm := NewCopyMode(snapshotOf(t, 10, 4, "abcdef"))

	// Anchor to the right of the cursor; bounds normalize.
	cm.MoveTo(Position{X: 4, Y: 0})
	cm.StartSelection(SelectionCharacter)
	cm.Move(-2, 0)

	text, ok := cm.Yank()
	if !ok || text != "cde" {
		t.Errorf("yank = %q ok=%v, want %q true", text, ok, "cde")
	}
}

func TestLineSelectionJoinsRowsWithNewline(t *testing.T) {
	cm := NewCopyMode(snapshotOf(t, 20, 4, "first line\nsecond"))

	cm.MoveTo(Position{X: 5, Y: 0})
	cm.StartSelection(SelectionLine)
	cm.Move(0, 1)

	text, ok := cm.Yank()
	if !ok {
		t.Fatal("Yank with anchor should succeed")
	}
	// Line mode takes whole rows, trimmed of trailing blanks, joined by
	// a single newline regardless of cursor columns.
	if text != "first line\nsecond" {
		t.Errorf("yank = %q, want %q", text, "first line\nsecond")
	}
}

func TestYankJoinsWrappedRows(t *testing.T) {
	// 5 columns wraps "abcdefgh" onto a continuation row.
	cm := NewCopyMode(snapshotOf(t, 5, 4, "abcdefgh"))

	cm.MoveTo(Position{X: 0, Y: 0})
	cm.StartSelection(SelectionCharacter)
	cm.MoveTo(Position{X: 2, Y: 1})

	text, ok := cm.Yank()
	if !ok {
		t.Fatal("Yank with anchor should succeed")
	}
	if text != "abcdefgh" {
		t.Errorf("yank = %q, want %q (no newline at the soft wrap)", text, "abcdefgh")
	}
}

func TestYankWithoutAnchorIsNoop(t *testing.T) {
	cm := NewCopyMode(snapshotOf(t, 10, 4, "abcdef"))

	if _, ok := cm.Yank(); ok {
		t.Error("Yank without anchor should report false")
	}
}

func TestYankSpansScrollback(t *testing.T) {
	e := vt.NewEmulator(10, 3)
	for i := 0; i < 6; i++ {
		_, _ = e.WriteString(fmt.Sprintf("row-%d\n", i))
	}
	cm := NewCopyMode(e.Snapshot())

	cm.Top()
	cm.LineStart()
	cm.StartSelection(SelectionLine)
	cm.Move(0, 1)

	text, ok := cm.Yank()
	if !ok {
		t.Fatal("Yank with anchor should succeed")
	}
	if text != "row-0\nrow-1" {
		t.Errorf("yank = %q, want %q", text, "row-0\nrow-1")
	}
}

func TestToggleAnchor(t *testing.T) {
	cm := NewCopyMode(snapshotOf(t, 10, 4, "abc"))

	if cm.Anchor() != nil {
		t.Fatal("anchor should start unset")
	}
	cm.ToggleAnchor()
	if cm.Anchor() == nil {
		t.Fatal("anchor should be set after toggle")
	}
	cm.ToggleAnchor()
	if cm.Anchor() != nil {
		t.Error("anchor should clear on second toggle")
	}
}

func TestMoveClampsToContent(t *testing.T) {
	cm := NewCopyMode(snapshotOf(t, 10, 4, "abc"))

	cm.Move(-100, -100)
	if got := cm.Cursor(); got != (Position{X: 0, Y: 0}) {
		t.Errorf("cursor = %+v, want origin", got)
	}
	cm.Move(100, 100)
	got := cm.Cursor()
	if got.X != 9 || got.Y != 3 {
		t.Errorf("cursor = %+v, want (9,3)", got)
	}
}

func TestLineEndStopsAtLastText(t *testing.T) {
	cm := NewCopyMode(snapshotOf(t, 20, 4, "hello world"))
	cm.MoveTo(Position{X: 19, Y: 0})
	cm.LineEnd()
	if got := cm.Cursor().X; got != 10 {
		t.Errorf("LineEnd column = %d, want 10", got)
	}
}

func TestWordMotion(t *testing.T) {
	cm := NewCopyMode(snapshotOf(t, 30, 4, "one two  three"))
	cm.MoveTo(Position{X: 0, Y: 0})

	cm.WordForward()
	if got := cm.Cursor().X; got != 4 {
		t.Errorf("WordForward = col %d, want 4", got)
	}
	cm.WordForward()
	if got := cm.Cursor().X; got != 9 {
		t.Errorf("second WordForward = col %d, want 9", got)
	}
	cm.WordBackward()
	if got := cm.Cursor().X; got != 4 {
		t.Errorf("WordBackward = col %d, want 4", got)
	}
}

func TestSelectedHighlightGeometry(t *testing.T) {
	cm := NewCopyMode(snapshotOf(t, 10, 4, "abcdef\nghijkl"))

	cm.MoveTo(Position{X: 3, Y: 0})
	cm.StartSelection(SelectionCharacter)
	cm.MoveTo(Position{X: 2, Y: 1})

	tests := []struct {
		p    Position
		want bool
	}{
		{Position{X: 2, Y: 0}, false},
		{Position{X: 3, Y: 0}, true},
		{Position{X: 9, Y: 0}, true},
		{Position{X: 0, Y: 1}, true},
		{Position{X: 2, Y: 1}, true},
		{Position{X: 3, Y: 1}, false},
	}
	for _, tc := range tests {
		if got := cm.Selected(tc.p); got != tc.want {
			t.Errorf("Selected(%+v) = %v, want %v", tc.p, got, tc.want)
		}
	}

	cm.mode = SelectionLine
	if !cm.Selected(Position{X: 9, Y: 1}) {
		t.Error("line mode should select the full end row")
	}
}

func TestHandleCopyModeKey(t *testing.T) {
	reg := config.NewKeybindRegistry(config.DefaultConfig())

	newCM := func() *CopyMode {
		return NewCopyMode(snapshotOf(t, 10, 4, "abcdef"))
	}

	t.Run("movement", func(t *testing.T) {
		cm := newCM()
		cm.MoveTo(Position{X: 3, Y: 0})
		HandleCopyModeKey(tea.KeyPressMsg{Code: 'h', Text: "h"}, cm, reg)
		if got := cm.Cursor().X; got != 2 {
			t.Errorf("after h cursor col = %d, want 2", got)
		}
		HandleCopyModeKey(tea.KeyPressMsg{Code: tea.KeyRight}, cm, reg)
		if got := cm.Cursor().X; got != 3 {
			t.Errorf("after right cursor col = %d, want 3", got)
		}
	})

	t.Run("exit", func(t *testing.T) {
		cm := newCM()
		res := HandleCopyModeKey(tea.KeyPressMsg{Code: 'q', Text: "q"}, cm, reg)
		if !res.Exit {
			t.Error("q should exit copy mode")
		}
		res = HandleCopyModeKey(tea.KeyPressMsg{Code: tea.KeyEscape}, cm, reg)
		if !res.Exit {
			t.Error("esc should exit copy mode")
		}
	})

	t.Run("select and yank", func(t *testing.T) {
		cm := newCM()
		cm.MoveTo(Position{X: 2, Y: 0})
		HandleCopyModeKey(tea.KeyPressMsg{Code: 'v', Text: "v"}, cm, reg)
		if cm.Anchor() == nil {
			t.Fatal("v should drop the anchor")
		}
		HandleCopyModeKey(tea.KeyPressMsg{Code: 'l', Text: "l"}, cm, reg)
		HandleCopyModeKey(tea.KeyPressMsg{Code: 'l', Text: "l"}, cm, reg)
		res := HandleCopyModeKey(tea.KeyPressMsg{Code: 'y', Text: "y"}, cm, reg)
		if !res.DidYank || !res.Exit {
			t.Fatalf("y should yank and exit, got %+v", res)
		}
		if res.Yanked != "cde" {
			t.Errorf("yanked = %q, want %q", res.Yanked, "cde")
		}
	})

	t.Run("yank without anchor stays active", func(t *testing.T) {
		cm := newCM()
		res := HandleCopyModeKey(tea.KeyPressMsg{Code: 'y', Text: "y"}, cm, reg)
		if res.Exit || res.DidYank {
			t.Errorf("yank without anchor should be a no-op, got %+v", res)
		}
	})

	t.Run("line selection", func(t *testing.T) {
		cm := NewCopyMode(snapshotOf(t, 10, 4, "abc\ndef"))
		cm.MoveTo(Position{X: 1, Y: 0})
		HandleCopyModeKey(tea.KeyPressMsg{Code: 'v', Mod: tea.ModShift, Text: "V"}, cm, reg)
		if cm.Mode() != SelectionLine {
			t.Fatal("V should start line selection")
		}
		HandleCopyModeKey(tea.KeyPressMsg{Code: 'j', Text: "j"}, cm, reg)
		res := HandleCopyModeKey(tea.KeyPressMsg{Code: 'y', Text: "y"}, cm, reg)
		if res.Yanked != "abc\ndef" {
			t.Errorf("yanked = %q, want %q", res.Yanked, "abc\ndef")
		}
	})

	t.Run("unbound key ignored", func(t *testing.T) {
		cm := newCM()
		before := cm.Cursor()
		res := HandleCopyModeKey(tea.KeyPressMsg{Code: 'z', Text: "z"}, cm, reg)
		if res.Exit || res.DidYank || cm.Cursor() != before {
			t.Error("unbound key should change nothing")
		}
	})
}
