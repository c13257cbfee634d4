package vt

// Snapshot is a deep, immutable copy of the terminal's text content:
// every scrollback line followed by the viewport rows, addressed by
// absolute row where row 0 is the oldest scrollback line. Copy mode
// operates on a snapshot so live output cannot shift coordinates under
// an in-progress selection.
type Snapshot struct {
	lines         []Line
	scrollbackLen int
	cols          int
	rows          int
	cursor        Cursor
}

// Snapshot captures the current content. While the alternate screen is
// active the snapshot covers its viewport only; scrollback belongs to
// the primary screen. The caller must hold whatever lock serializes
// writes to the emulator.
func (e *Emulator) Snapshot() *Snapshot {
	var sbLen int
	if !e.IsAltScreen() {
		sbLen = e.ScrollbackLen()
	}

	snap := &Snapshot{
		scrollbackLen: sbLen,
		cols:          e.Width(),
		rows:          e.Height(),
		lines:         make([]Line, 0, sbLen+e.Height()),
	}
	for i := 0; i < sbLen; i++ {
		snap.lines = append(snap.lines, e.ScrollbackLine(i).Clone())
	}
	for y := 0; y < e.Height(); y++ {
		row, _ := e.scr.Row(y)
		snap.lines = append(snap.lines, row.Clone())
	}
	x, y := e.CursorPosition()
	snap.cursor = Cursor{X: x, Y: y}
	return snap
}

// Total returns the number of addressable rows, scrollback plus
// viewport.
func (s *Snapshot) Total() int { return len(s.lines) }

// ScrollbackLen returns the number of scrollback rows in the snapshot.
func (s *Snapshot) ScrollbackLen() int { return s.scrollbackLen }

// Cols returns the snapshot width.
func (s *Snapshot) Cols() int { return s.cols }

// Rows returns the viewport height at capture time.
func (s *Snapshot) Rows() int { return s.rows }

// Line returns the line at absolute row y. Out of range rows return a
// zero Line.
func (s *Snapshot) Line(y int) Line {
	if y < 0 || y >= len(s.lines) {
		return Line{}
	}
	return s.lines[y]
}

// CellAt returns the cell at absolute row y, column x.
func (s *Snapshot) CellAt(x, y int) (Cell, bool) {
	if y < 0 || y >= len(s.lines) || x < 0 || x >= s.cols {
		return Cell{}, false
	}
	l := s.lines[y]
	if x >= len(l.Cells) {
		return blankCell, true
	}
	return l.Cells[x], true
}

// CursorAbs returns the cursor position at capture time with the row
// expressed as an absolute row.
func (s *Snapshot) CursorAbs() (x, y int) {
	return s.cursor.X, s.scrollbackLen + s.cursor.Y
}
