package input

import (
	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/termtui/internal/config"
)

// CopyModeResult reports what a copy-mode keypress did.
type CopyModeResult struct {
	// Exit is true when copy mode should end.
	Exit bool
	// Yanked holds the selected text when DidYank is true.
	Yanked  string
	DidYank bool
}

// HandleCopyModeKey dispatches a keypress against the copy-mode
// bindings and applies it to the state machine. Unbound keys are
// ignored. A yank without an anchored selection is a no-op and copy
// mode stays active.
func HandleCopyModeKey(msg tea.KeyPressMsg, cm *CopyMode, reg *config.KeybindRegistry) CopyModeResult {
	var action string
	for _, key := range keyCandidates(msg) {
		if a := reg.CopyModeAction(key); a != "" {
			action = a
			break
		}
	}

	switch action {
	case "exit":
		return CopyModeResult{Exit: true}
	case "move_left":
		cm.Move(-1, 0)
	case "move_right":
		cm.Move(1, 0)
	case "move_up":
		cm.Move(0, -1)
	case "move_down":
		cm.Move(0, 1)
	case "line_start":
		cm.LineStart()
	case "line_end":
		cm.LineEnd()
	case "top":
		cm.Top()
	case "bottom":
		cm.Bottom()
	case "page_up":
		cm.PageUp()
	case "page_down":
		cm.PageDown()
	case "half_page_up":
		cm.HalfPageUp()
	case "half_page_down":
		cm.HalfPageDown()
	case "word_forward":
		cm.WordForward()
	case "word_backward":
		cm.WordBackward()
	case "select_char":
		cm.StartSelection(SelectionCharacter)
	case "select_line":
		cm.StartSelection(SelectionLine)
	case "toggle_anchor":
		cm.ToggleAnchor()
	case "yank":
		if text, ok := cm.Yank(); ok {
			return CopyModeResult{Exit: true, Yanked: text, DidYank: true}
		}
	}
	return CopyModeResult{}
}

// keyCandidates returns the names a keypress may be bound under. The
// formatted keystroke comes first; the bare text form covers bindings
// like "V" where the formatted name carries a shift modifier.
func keyCandidates(msg tea.KeyPressMsg) []string {
	key := msg.Key()
	candidates := []string{msg.String()}
	if key.Text != "" && key.Text != candidates[0] {
		candidates = append(candidates, key.Text)
	}
	return candidates
}
