package vt

import (
	"github.com/mattn/go-runewidth"
)

// Cursor is a position in the grid, origin top-left.
type Cursor struct {
	X, Y int
}

// Screen is a single terminal screen buffer: the visible grid, the
// cursor, the pending pen style and the scroll margins. The primary
// screen owns a scrollback buffer; the alternate screen does not.
type Screen struct {
	grid []Line
	cols int
	rows int

	cur      Cursor
	saved    Cursor
	savedPen Style
	pen      Style

	// wrapNext is set after printing into the last column. The cursor
	// stays put until the next printable wraps it to a new row.
	wrapNext bool

	// Scroll region, inclusive rows, 0-based.
	top    int
	bottom int

	autowrap     bool
	cursorHidden bool

	// scrollback is nil on the alternate screen.
	scrollback *Scrollback
}

// NewScreen creates a blank screen with the given dimensions.
func NewScreen(cols, rows int) *Screen {
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}
	s := &Screen{
		cols:     cols,
		rows:     rows,
		autowrap: true,
		bottom:   rows - 1,
	}
	s.grid = make([]Line, rows)
	for i := range s.grid {
		s.grid[i] = newLine(cols)
	}
	return s
}

// Width returns the number of columns.
func (s *Screen) Width() int { return s.cols }

// Height returns the number of rows.
func (s *Screen) Height() int { return s.rows }

// CursorPosition returns the cursor's column and row.
func (s *Screen) CursorPosition() (x, y int) {
	return s.cur.X, s.cur.Y
}

// Pen returns the style that will be applied to the next printed cell.
func (s *Screen) Pen() Style { return s.pen }

// SetPen replaces the pending pen style.
func (s *Screen) SetPen(pen Style) { s.pen = pen }

// CursorHidden reports whether the application hid the cursor (DECTCEM).
func (s *Screen) CursorHidden() bool { return s.cursorHidden }

// Scrollback returns the screen's scrollback buffer, nil for the
// alternate screen.
func (s *Screen) Scrollback() *Scrollback { return s.scrollback }

// CellAt returns the cell at the given position. ok is false when the
// position is out of bounds.
func (s *Screen) CellAt(x, y int) (Cell, bool) {
	if x < 0 || x >= s.cols || y < 0 || y >= s.rows {
		return Cell{}, false
	}
	return s.grid[y].Cells[x], true
}

// Row returns the line at row y. The second return is false when y is
// out of bounds.
func (s *Screen) Row(y int) (Line, bool) {
	if y < 0 || y >= s.rows {
		return Line{}, false
	}
	return s.grid[y], true
}

// Print writes a printable rune at the cursor, handling pending wraps
// and wide characters, and advances the cursor.
func (s *Screen) Print(r rune) {
	w := runewidth.RuneWidth(r)
	if w <= 0 {
		// Combining marks and other zero-width runes are dropped.
		return
	}

	if s.wrapNext {
		s.wrapNext = false
		if s.autowrap {
			s.wrap()
		}
	}

	// A wide rune that does not fit in the remaining columns wraps
	// early, leaving a blank in the last column.
	if w == 2 && s.cur.X == s.cols-1 {
		s.clearWideAt(s.cur.X, s.cur.Y)
		s.grid[s.cur.Y].Cells[s.cur.X] = Cell{Rune: ' ', Width: 1, Style: s.pen}
		if !s.autowrap {
			return
		}
		s.wrap()
	}

	row := &s.grid[s.cur.Y]
	s.clearWideAt(s.cur.X, s.cur.Y)
	row.Cells[s.cur.X] = Cell{Rune: r, Width: w, Style: s.pen}
	if w == 2 && s.cur.X+1 < s.cols {
		s.clearWideAt(s.cur.X+1, s.cur.Y)
		row.Cells[s.cur.X+1] = Cell{Width: 0, Style: s.pen}
	}

	if s.cur.X+w >= s.cols {
		s.cur.X = s.cols - 1
		s.wrapNext = true
	} else {
		s.cur.X += w
	}
}

// wrap moves the cursor to column 0 of the next row and marks the new
// row as a soft-wrap continuation.
func (s *Screen) wrap() {
	s.LineFeed()
	s.cur.X = 0
	s.grid[s.cur.Y].Wrapped = true
}

// clearWideAt repairs a wide character pair that is about to be split
// by a write at (x, y): overwriting either half blanks the other.
func (s *Screen) clearWideAt(x, y int) {
	row := &s.grid[y]
	c := row.Cells[x]
	switch {
	case c.Width == 2 && x+1 < s.cols:
		row.Cells[x+1] = Cell{Rune: ' ', Width: 1, Style: c.Style}
	case c.Width == 0 && x > 0 && row.Cells[x-1].Width == 2:
		row.Cells[x-1] = Cell{Rune: ' ', Width: 1, Style: row.Cells[x-1].Style}
	}
}

// LineFeed moves the cursor down one row, scrolling the region when the
// cursor is on the bottom margin.
func (s *Screen) LineFeed() {
	s.wrapNext = false
	if s.cur.Y == s.bottom {
		s.scrollUp(1)
	} else if s.cur.Y < s.rows-1 {
		s.cur.Y++
	}
}

// ReverseLineFeed moves the cursor up one row, scrolling the region
// down when the cursor is on the top margin.
func (s *Screen) ReverseLineFeed() {
	s.wrapNext = false
	if s.cur.Y == s.top {
		s.scrollDown(1)
	} else if s.cur.Y > 0 {
		s.cur.Y--
	}
}

// CarriageReturn moves the cursor to column 0.
func (s *Screen) CarriageReturn() {
	s.wrapNext = false
	s.cur.X = 0
}

// Backspace moves the cursor one column left, stopping at column 0.
func (s *Screen) Backspace() {
	s.wrapNext = false
	if s.cur.X > 0 {
		s.cur.X--
	}
}

// Tab moves the cursor to the next tab stop (every 8 columns).
func (s *Screen) Tab() {
	s.wrapNext = false
	next := (s.cur.X/8 + 1) * 8
	if next >= s.cols {
		next = s.cols - 1
	}
	s.cur.X = next
}

// scrollUp shifts the scroll region up n rows. Rows leaving a top
// margin at row 0 are pushed to scrollback on the primary screen.
func (s *Screen) scrollUp(n int) {
	if n <= 0 {
		return
	}
	region := s.bottom - s.top + 1
	if n > region {
		n = region
	}
	for ; n > 0; n-- {
		if s.top == 0 && s.bottom == s.rows-1 && s.scrollback != nil {
			s.scrollback.PushLine(s.grid[s.top])
		}
		copy(s.grid[s.top:s.bottom], s.grid[s.top+1:s.bottom+1])
		s.grid[s.bottom] = newLine(s.cols)
	}
}

// scrollDown shifts the scroll region down n rows, inserting blank rows
// at the top margin. Rows leaving the bottom are discarded.
func (s *Screen) scrollDown(n int) {
	if n <= 0 {
		return
	}
	region := s.bottom - s.top + 1
	if n > region {
		n = region
	}
	for ; n > 0; n-- {
		copy(s.grid[s.top+1:s.bottom+1], s.grid[s.top:s.bottom])
		s.grid[s.top] = newLine(s.cols)
	}
}

// ScrollUp implements CSI S.
func (s *Screen) ScrollUp(n int) {
	s.scrollUp(max(n, 1))
}

// ScrollDown implements CSI T.
func (s *Screen) ScrollDown(n int) {
	s.scrollDown(max(n, 1))
}

// SetMargins sets the scroll region from 1-based top and bottom rows
// (DECSTBM). Invalid regions reset to the full screen. The cursor moves
// home.
func (s *Screen) SetMargins(top, bottom int) {
	if top < 1 {
		top = 1
	}
	if bottom < 1 || bottom > s.rows {
		bottom = s.rows
	}
	if top >= bottom {
		top, bottom = 1, s.rows
	}
	s.top = top - 1
	s.bottom = bottom - 1
	s.setCursor(0, 0)
}

// setCursor moves the cursor to the clamped position and clears any
// pending wrap.
func (s *Screen) setCursor(x, y int) {
	s.wrapNext = false
	s.cur.X = clamp(x, 0, s.cols-1)
	s.cur.Y = clamp(y, 0, s.rows-1)
}

// SetCursorPosition implements CSI H / CSI f with 0-based coordinates.
func (s *Screen) SetCursorPosition(x, y int) {
	s.setCursor(x, y)
}

// CursorUp moves the cursor up n rows, stopping at the top margin when
// the cursor starts inside the region.
func (s *Screen) CursorUp(n int) {
	n = max(n, 1)
	limit := 0
	if s.cur.Y >= s.top {
		limit = s.top
	}
	s.wrapNext = false
	s.cur.Y = clamp(s.cur.Y-n, limit, s.rows-1)
}

// CursorDown moves the cursor down n rows, stopping at the bottom
// margin when the cursor starts inside the region.
func (s *Screen) CursorDown(n int) {
	n = max(n, 1)
	limit := s.rows - 1
	if s.cur.Y <= s.bottom {
		limit = s.bottom
	}
	s.wrapNext = false
	s.cur.Y = clamp(s.cur.Y+n, 0, limit)
}

// CursorForward moves the cursor right n columns.
func (s *Screen) CursorForward(n int) {
	s.wrapNext = false
	s.cur.X = clamp(s.cur.X+max(n, 1), 0, s.cols-1)
}

// CursorBack moves the cursor left n columns.
func (s *Screen) CursorBack(n int) {
	s.wrapNext = false
	s.cur.X = clamp(s.cur.X-max(n, 1), 0, s.cols-1)
}

// CursorNextLine implements CSI E.
func (s *Screen) CursorNextLine(n int) {
	s.CursorDown(n)
	s.cur.X = 0
}

// CursorPrevLine implements CSI F.
func (s *Screen) CursorPrevLine(n int) {
	s.CursorUp(n)
	s.cur.X = 0
}

// CursorColumn implements CSI G with a 0-based column.
func (s *Screen) CursorColumn(x int) {
	s.wrapNext = false
	s.cur.X = clamp(x, 0, s.cols-1)
}

// CursorRow implements CSI d (VPA) with a 0-based row.
func (s *Screen) CursorRow(y int) {
	s.wrapNext = false
	s.cur.Y = clamp(y, 0, s.rows-1)
}

// SaveCursor saves the cursor position and pen (DECSC).
func (s *Screen) SaveCursor() {
	s.saved = s.cur
	s.savedPen = s.pen
}

// RestoreCursor restores the cursor position and pen (DECRC).
func (s *Screen) RestoreCursor() {
	s.wrapNext = false
	s.cur.X = clamp(s.saved.X, 0, s.cols-1)
	s.cur.Y = clamp(s.saved.Y, 0, s.rows-1)
	s.pen = s.savedPen
}

// EraseInLine implements CSI K. Erased cells become default blanks.
func (s *Screen) EraseInLine(mode int) {
	row := s.grid[s.cur.Y].Cells
	switch mode {
	case 0: // cursor to end of line
		for x := s.cur.X; x < s.cols; x++ {
			row[x] = blankCell
		}
	case 1: // start of line to cursor
		for x := 0; x <= s.cur.X && x < s.cols; x++ {
			row[x] = blankCell
		}
	case 2: // whole line
		for x := range row {
			row[x] = blankCell
		}
	}
}

// EraseInDisplay implements CSI J. Mode 3 additionally clears
// scrollback.
func (s *Screen) EraseInDisplay(mode int) {
	switch mode {
	case 0: // cursor to end of screen
		s.EraseInLine(0)
		for y := s.cur.Y + 1; y < s.rows; y++ {
			s.grid[y] = newLine(s.cols)
		}
	case 1: // start of screen to cursor
		s.EraseInLine(1)
		for y := 0; y < s.cur.Y; y++ {
			s.grid[y] = newLine(s.cols)
		}
	case 2: // whole screen
		for y := range s.grid {
			s.grid[y] = newLine(s.cols)
		}
	case 3: // whole screen plus scrollback
		for y := range s.grid {
			s.grid[y] = newLine(s.cols)
		}
		if s.scrollback != nil {
			s.scrollback.Clear()
		}
	}
}

// EraseChars implements CSI X: blank n cells from the cursor without
// moving anything.
func (s *Screen) EraseChars(n int) {
	n = max(n, 1)
	row := s.grid[s.cur.Y].Cells
	for x := s.cur.X; x < s.cur.X+n && x < s.cols; x++ {
		row[x] = blankCell
	}
}

// InsertChars implements CSI @: shift cells right from the cursor,
// inserting blanks.
func (s *Screen) InsertChars(n int) {
	n = max(n, 1)
	if n > s.cols-s.cur.X {
		n = s.cols - s.cur.X
	}
	row := s.grid[s.cur.Y].Cells
	copy(row[s.cur.X+n:], row[s.cur.X:s.cols-n])
	for x := s.cur.X; x < s.cur.X+n; x++ {
		row[x] = blankCell
	}
}

// DeleteChars implements CSI P: shift cells left into the cursor,
// blanking the tail.
func (s *Screen) DeleteChars(n int) {
	n = max(n, 1)
	if n > s.cols-s.cur.X {
		n = s.cols - s.cur.X
	}
	row := s.grid[s.cur.Y].Cells
	copy(row[s.cur.X:], row[s.cur.X+n:])
	for x := s.cols - n; x < s.cols; x++ {
		row[x] = blankCell
	}
}

// InsertLines implements CSI L: blank rows appear at the cursor, rows
// below shift toward the bottom margin. No-op outside the region.
func (s *Screen) InsertLines(n int) {
	if s.cur.Y < s.top || s.cur.Y > s.bottom {
		return
	}
	n = max(n, 1)
	if n > s.bottom-s.cur.Y+1 {
		n = s.bottom - s.cur.Y + 1
	}
	copy(s.grid[s.cur.Y+n:s.bottom+1], s.grid[s.cur.Y:s.bottom+1-n])
	for y := s.cur.Y; y < s.cur.Y+n; y++ {
		s.grid[y] = newLine(s.cols)
	}
	s.cur.X = 0
}

// DeleteLines implements CSI M: rows at the cursor disappear, rows
// below shift up, blanks appear at the bottom margin.
func (s *Screen) DeleteLines(n int) {
	if s.cur.Y < s.top || s.cur.Y > s.bottom {
		return
	}
	n = max(n, 1)
	if n > s.bottom-s.cur.Y+1 {
		n = s.bottom - s.cur.Y + 1
	}
	copy(s.grid[s.cur.Y:s.bottom+1-n], s.grid[s.cur.Y+n:s.bottom+1])
	for y := s.bottom + 1 - n; y <= s.bottom; y++ {
		s.grid[y] = newLine(s.cols)
	}
	s.cur.X = 0
}

// Clear blanks the whole grid and homes the cursor, keeping scrollback.
func (s *Screen) Clear() {
	for y := range s.grid {
		s.grid[y] = newLine(s.cols)
	}
	s.setCursor(0, 0)
}

// Resize changes the screen dimensions. Every row, scrollback included,
// is padded or truncated to the new width. When the height shrinks, the
// viewport keeps its bottom rows and the overflow at the top moves into
// scrollback; when it grows, blank rows are appended. Resizing to the
// current size is a no-op.
func (s *Screen) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	if cols == s.cols && rows == s.rows {
		return
	}

	// A pending wrap does not survive a resize.
	if s.wrapNext {
		s.wrapNext = false
		if s.cur.X < cols-1 {
			s.cur.X++
		}
	}

	if cols != s.cols {
		for y := range s.grid {
			s.grid[y] = resizeLine(s.grid[y], cols)
		}
		if s.scrollback != nil {
			s.scrollback.ResizeLines(cols)
		}
		s.cols = cols
	}

	if rows < s.rows {
		// The overflow rows at the top become scrollback; the alternate
		// screen has none, so there they are dropped.
		drop := s.rows - rows
		if s.scrollback != nil {
			for y := 0; y < drop; y++ {
				s.scrollback.PushLine(s.grid[y])
			}
		}
		s.grid = append(s.grid[:0:0], s.grid[drop:]...)
		s.cur.Y -= drop
	} else if rows > s.rows {
		for y := s.rows; y < rows; y++ {
			s.grid = append(s.grid, newLine(cols))
		}
	}
	s.rows = rows

	// Margins reset to the full screen.
	s.top = 0
	s.bottom = rows - 1

	s.cur.X = clamp(s.cur.X, 0, cols-1)
	s.cur.Y = clamp(s.cur.Y, 0, rows-1)
}

// resizeLine pads or truncates a line to the given width. Truncation
// never leaves a dangling wide character leader in the last column.
func resizeLine(l Line, cols int) Line {
	switch {
	case len(l.Cells) == cols:
		return l
	case len(l.Cells) > cols:
		cells := make([]Cell, cols)
		copy(cells, l.Cells[:cols])
		if cols > 0 && cells[cols-1].Width == 2 {
			cells[cols-1] = blankCell
		}
		return Line{Cells: cells, Wrapped: l.Wrapped}
	default:
		cells := make([]Cell, cols)
		n := copy(cells, l.Cells)
		for i := n; i < cols; i++ {
			cells[i] = blankCell
		}
		return Line{Cells: cells, Wrapped: l.Wrapped}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
