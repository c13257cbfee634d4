// Package input implements vim-style copy mode and keyboard translation
// for termtui.
//
// Copy mode freezes the terminal content in a snapshot and provides
// vim-like navigation and visual selection over it, including the
// scrollback history.
package input

import (
	"strings"

	"github.com/Gaurav-Gosain/termtui/internal/vt"
)

// SelectionMode selects how the anchored region maps to cells.
type SelectionMode int

const (
	// SelectionCharacter selects a contiguous run of cells between the
	// anchor and the cursor.
	SelectionCharacter SelectionMode = iota
	// SelectionLine selects whole rows between the anchor row and the
	// cursor row.
	SelectionLine
)

// Position is an absolute position in the frozen content: Y counts from
// the oldest scrollback row, X is a column.
type Position struct {
	X, Y int
}

// less orders positions top-to-bottom, then left-to-right.
func (p Position) less(o Position) bool {
	return p.Y < o.Y || (p.Y == o.Y && p.X < o.X)
}

// CopyMode is the selection state machine. It is created when copy mode
// is entered and discarded on exit; there is no inactive state to
// reset. The snapshot is taken under the session lock at entry, so live
// output cannot move coordinates under the selection.
type CopyMode struct {
	snap   *vt.Snapshot
	cursor Position
	anchor *Position
	mode   SelectionMode
}

// NewCopyMode starts copy mode over the given snapshot with the cursor
// at the live cursor's absolute position.
func NewCopyMode(snap *vt.Snapshot) *CopyMode {
	x, y := snap.CursorAbs()
	cm := &CopyMode{snap: snap, mode: SelectionCharacter}
	cm.cursor = cm.clamp(Position{X: x, Y: y})
	return cm
}

// Snapshot returns the frozen content the copy mode operates on.
func (cm *CopyMode) Snapshot() *vt.Snapshot { return cm.snap }

// Cursor returns the current cursor position.
func (cm *CopyMode) Cursor() Position { return cm.cursor }

// Anchor returns the selection anchor, nil when no selection is in
// progress.
func (cm *CopyMode) Anchor() *Position {
	if cm.anchor == nil {
		return nil
	}
	a := *cm.anchor
	return &a
}

// Mode returns the current selection mode.
func (cm *CopyMode) Mode() SelectionMode { return cm.mode }

// StartSelection drops the anchor at the cursor in the given mode. An
// existing anchor moves to the cursor.
func (cm *CopyMode) StartSelection(mode SelectionMode) {
	a := cm.cursor
	cm.anchor = &a
	cm.mode = mode
}

// ToggleAnchor drops the anchor at the cursor, or clears it when one is
// already set.
func (cm *CopyMode) ToggleAnchor() {
	if cm.anchor != nil {
		cm.anchor = nil
		return
	}
	a := cm.cursor
	cm.anchor = &a
}

// ClearSelection removes the anchor without moving the cursor.
func (cm *CopyMode) ClearSelection() {
	cm.anchor = nil
}

func (cm *CopyMode) clamp(p Position) Position {
	maxY := cm.snap.Total() - 1
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y > maxY {
		p.Y = maxY
	}
	if p.X < 0 {
		p.X = 0
	}
	if p.X > cm.snap.Cols()-1 {
		p.X = cm.snap.Cols() - 1
	}
	return p
}

// Move moves the cursor by the given deltas, clamped to the content.
func (cm *CopyMode) Move(dx, dy int) {
	cm.cursor = cm.clamp(Position{X: cm.cursor.X + dx, Y: cm.cursor.Y + dy})
}

// MoveTo places the cursor at an absolute position, clamped.
func (cm *CopyMode) MoveTo(p Position) {
	cm.cursor = cm.clamp(p)
}

// LineStart moves the cursor to column 0.
func (cm *CopyMode) LineStart() {
	cm.cursor.X = 0
}

// LineEnd moves the cursor to the last non-blank column of the current
// row, or column 0 on a blank row.
func (cm *CopyMode) LineEnd() {
	line := cm.snap.Line(cm.cursor.Y)
	x := len(line.Cells) - 1
	for x > 0 {
		c := line.Cells[x]
		if c.Width == 0 || (c.Rune == ' ' && c.Width == 1) {
			x--
			continue
		}
		break
	}
	cm.cursor.X = x
}

// Top moves the cursor to the oldest row.
func (cm *CopyMode) Top() {
	cm.cursor = cm.clamp(Position{X: cm.cursor.X, Y: 0})
}

// Bottom moves the cursor to the newest row.
func (cm *CopyMode) Bottom() {
	cm.cursor = cm.clamp(Position{X: cm.cursor.X, Y: cm.snap.Total() - 1})
}

// PageUp moves the cursor up one viewport height.
func (cm *CopyMode) PageUp() { cm.Move(0, -cm.snap.Rows()) }

// PageDown moves the cursor down one viewport height.
func (cm *CopyMode) PageDown() { cm.Move(0, cm.snap.Rows()) }

// HalfPageUp moves the cursor up half a viewport.
func (cm *CopyMode) HalfPageUp() { cm.Move(0, -cm.snap.Rows()/2) }

// HalfPageDown moves the cursor down half a viewport.
func (cm *CopyMode) HalfPageDown() { cm.Move(0, cm.snap.Rows()/2) }

// WordForward moves the cursor to the start of the next word on the
// current row, or to the end of the row.
func (cm *CopyMode) WordForward() {
	line := cm.snap.Line(cm.cursor.Y)
	x := cm.cursor.X
	// Skip the rest of the current word, then the gap.
	for x < len(line.Cells)-1 && !cellIsSpace(line.Cells[x]) {
		x++
	}
	for x < len(line.Cells)-1 && cellIsSpace(line.Cells[x]) {
		x++
	}
	cm.cursor.X = x
}

// WordBackward moves the cursor to the start of the previous word on
// the current row, or to column 0.
func (cm *CopyMode) WordBackward() {
	line := cm.snap.Line(cm.cursor.Y)
	x := cm.cursor.X
	for x > 0 && (x >= len(line.Cells) || cellIsSpace(line.Cells[x-1])) {
		x--
	}
	for x > 0 && !cellIsSpace(line.Cells[x-1]) {
		x--
	}
	cm.cursor.X = x
}

func cellIsSpace(c vt.Cell) bool {
	return c.Width != 0 && (c.Rune == ' ' || c.Rune == 0)
}

// Selection returns the normalized selection bounds. ok is false when
// no anchor is set.
func (cm *CopyMode) Selection() (start, end Position, ok bool) {
	if cm.anchor == nil {
		return Position{}, Position{}, false
	}
	start, end = *cm.anchor, cm.cursor
	if end.less(start) {
		start, end = end, start
	}
	return start, end, true
}

// Selected reports whether the cell at the absolute position falls
// inside the current selection. Used by the renderer to highlight.
func (cm *CopyMode) Selected(p Position) bool {
	start, end, ok := cm.Selection()
	if !ok {
		return false
	}
	switch cm.mode {
	case SelectionLine:
		return p.Y >= start.Y && p.Y <= end.Y
	default:
		if p.Y < start.Y || p.Y > end.Y {
			return false
		}
		if start.Y == end.Y {
			return p.X >= start.X && p.X <= end.X
		}
		if p.Y == start.Y {
			return p.X >= start.X
		}
		if p.Y == end.Y {
			return p.X <= end.X
		}
		return true
	}
}

// Yank extracts the selected text. ok is false when no anchor is set.
// Rows are trimmed of trailing blanks and joined with a newline, except
// that a soft-wrapped continuation row joins its predecessor directly.
func (cm *CopyMode) Yank() (text string, ok bool) {
	start, end, ok := cm.Selection()
	if !ok {
		return "", false
	}

	var b strings.Builder
	for y := start.Y; y <= end.Y; y++ {
		line := cm.snap.Line(y)

		fromX, toX := 0, cm.snap.Cols()-1
		if cm.mode == SelectionCharacter {
			if y == start.Y {
				fromX = start.X
			}
			if y == end.Y {
				toX = end.X
			}
		}

		b.WriteString(extractRowText(line, fromX, toX))

		if y < end.Y {
			next := cm.snap.Line(y + 1)
			if !next.Wrapped {
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), true
}

// extractRowText renders the cells of one row between the given columns
// inclusive, skipping wide-character placeholders and trimming trailing
// blanks.
func extractRowText(line vt.Line, fromX, toX int) string {
	if fromX < 0 {
		fromX = 0
	}
	if toX >= len(line.Cells) {
		toX = len(line.Cells) - 1
	}

	var runes []rune
	for x := fromX; x <= toX; x++ {
		c := line.Cells[x]
		if c.Width == 0 {
			// Trailing half of a wide character.
			continue
		}
		r := c.Rune
		if r == 0 {
			r = ' '
		}
		runes = append(runes, r)
	}

	// Trim trailing blanks so padding cells do not leak into the yank.
	end := len(runes)
	for end > 0 && runes[end-1] == ' ' {
		end--
	}
	return string(runes[:end])
}
