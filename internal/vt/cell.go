package vt

import (
	"image/color"

	"github.com/mattn/go-runewidth"
)

// AttrMask is a bitmask of text attributes applied to a cell.
type AttrMask uint8

// Text attribute flags.
const (
	AttrBold AttrMask = 1 << iota
	AttrFaint
	AttrItalic
	AttrUnderline
	AttrInverse
	AttrStrikethrough
)

// Contains reports whether all attributes in m are set.
func (a AttrMask) Contains(m AttrMask) bool {
	return a&m == m
}

// Style describes the visual styling of a cell. Nil colors mean the
// outer terminal's default foreground/background should be used.
type Style struct {
	Fg    color.Color
	Bg    color.Color
	Attrs AttrMask
}

// IsZero reports whether the style is the default (unstyled) style.
func (s Style) IsZero() bool {
	return s.Fg == nil && s.Bg == nil && s.Attrs == 0
}

// Equal reports whether two styles render identically.
func (s Style) Equal(o Style) bool {
	return s.Attrs == o.Attrs && colorEqual(s.Fg, o.Fg) && colorEqual(s.Bg, o.Bg)
}

func colorEqual(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

// Cell is a single character cell in the grid. Wide characters occupy
// one leading cell with Width 2 followed by a placeholder cell with
// Width 0; the placeholder carries the same style but no content.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// blankCell is the default cell used to fill new and erased regions.
var blankCell = Cell{Rune: ' ', Width: 1}

// BlankCell returns the default blank cell.
func BlankCell() Cell {
	return blankCell
}

// IsBlank reports whether the cell renders as an unstyled space. Wide
// character placeholders are not blank.
func (c Cell) IsBlank() bool {
	return c.Width == 1 && c.Rune == ' ' && c.Style.IsZero()
}

// newCell builds a cell for the given rune using its display width.
func newCell(r rune, pen Style) Cell {
	return Cell{Rune: r, Width: runewidth.RuneWidth(r), Style: pen}
}

// Line is a single row of cells. Wrapped marks the row as a soft-wrap
// continuation of the row above it, which lets selection extraction
// join the two without inserting a newline.
type Line struct {
	Cells   []Cell
	Wrapped bool
}

// newLine returns a blank line with the given number of columns.
func newLine(cols int) Line {
	cells := make([]Cell, cols)
	for i := range cells {
		cells[i] = blankCell
	}
	return Line{Cells: cells}
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	cells := make([]Cell, len(l.Cells))
	copy(cells, l.Cells)
	return Line{Cells: cells, Wrapped: l.Wrapped}
}

// String returns the text content of the line with trailing blanks
// trimmed. Wide character placeholder cells contribute nothing.
func (l Line) String() string {
	end := len(l.Cells)
	for end > 0 {
		c := l.Cells[end-1]
		if c.Width == 0 || (c.Rune == ' ' && c.Width == 1) {
			end--
			continue
		}
		break
	}
	var b []rune
	for _, c := range l.Cells[:end] {
		if c.Width == 0 {
			continue
		}
		b = append(b, c.Rune)
	}
	return string(b)
}
