package vt

import (
	"testing"
)

// rowText collects the text of a viewport row without trimming.
func rowText(s *Screen, y int) string {
	line, ok := s.Row(y)
	if !ok {
		return ""
	}
	var runes []rune
	for _, c := range line.Cells {
		if c.Width == 0 {
			continue
		}
		runes = append(runes, c.Rune)
	}
	return string(runes)
}

func TestPrintHello(t *testing.T) {
	e := NewEmulator(80, 24)
	_, _ = e.WriteString("hello\n")

	line, ok := e.Row(0)
	if !ok {
		t.Fatal("row 0 out of bounds")
	}
	if got := len(line.Cells); got != 80 {
		t.Fatalf("row 0 has %d cells, want 80", got)
	}
	if got := line.String(); got != "hello" {
		t.Errorf("row 0 text = %q, want %q", got, "hello")
	}
	for x := 5; x < 80; x++ {
		if !line.Cells[x].IsBlank() {
			t.Fatalf("cell %d not blank after %q", x, "hello")
		}
	}
	x, y := e.CursorPosition()
	if x != 0 || y != 1 {
		t.Errorf("cursor = (%d, %d), want (0, 1)", x, y)
	}
}

func TestLineWidthInvariant(t *testing.T) {
	e := NewEmulator(20, 5)
	inputs := []string{
		"short\n",
		"a line that is much longer than twenty columns and wraps\n",
		"\x1b[2Jcleared",
		"\x1b[5;20r\n\n\n\n\n\n",
		"\x1b[K\x1b[1K\x1b[2K",
		"\x1b[3@abc\x1b[2P",
		"wide 日本語 text\n",
	}
	for _, in := range inputs {
		_, _ = e.WriteString(in)
		for y := 0; y < e.Height(); y++ {
			line, _ := e.Row(y)
			if len(line.Cells) != 20 {
				t.Fatalf("after %q row %d has %d cells, want 20", in, y, len(line.Cells))
			}
		}
	}
}

func TestASCIIRoundTrip(t *testing.T) {
	const text = "The quick brown fox"
	e := NewEmulator(40, 4)
	_, _ = e.WriteString(text)

	line, _ := e.Row(0)
	if got := line.String(); got != text {
		t.Errorf("round trip = %q, want %q", got, text)
	}
}

func TestWrapMarksContinuation(t *testing.T) {
	e := NewEmulator(5, 3)
	_, _ = e.WriteString("abcdefgh")

	row0, _ := e.Row(0)
	row1, _ := e.Row(1)
	if got := row0.String(); got != "abcde" {
		t.Errorf("row 0 = %q, want %q", got, "abcde")
	}
	if got := row1.String(); got != "fgh" {
		t.Errorf("row 1 = %q, want %q", got, "fgh")
	}
	if row0.Wrapped {
		t.Error("row 0 should not be marked wrapped")
	}
	if !row1.Wrapped {
		t.Error("row 1 should be marked wrapped")
	}
}

func TestWideCharCells(t *testing.T) {
	e := NewEmulator(10, 2)
	_, _ = e.WriteString("日a")

	c0, _ := e.CellAt(0, 0)
	c1, _ := e.CellAt(1, 0)
	c2, _ := e.CellAt(2, 0)
	if c0.Rune != '日' || c0.Width != 2 {
		t.Errorf("cell 0 = %q width %d, want 日 width 2", c0.Rune, c0.Width)
	}
	if c1.Width != 0 {
		t.Errorf("cell 1 width = %d, want 0 (wide placeholder)", c1.Width)
	}
	if c2.Rune != 'a' || c2.Width != 1 {
		t.Errorf("cell 2 = %q width %d, want a width 1", c2.Rune, c2.Width)
	}
}

func TestWideCharWrapAtEdge(t *testing.T) {
	e := NewEmulator(5, 3)
	// Four narrow cells then a wide rune that cannot fit in the last
	// column.
	_, _ = e.WriteString("abcd日")

	row0, _ := e.Row(0)
	row1, _ := e.Row(1)
	if got := row0.String(); got != "abcd" {
		t.Errorf("row 0 = %q, want %q", got, "abcd")
	}
	if row1.Cells[0].Rune != '日' || row1.Cells[0].Width != 2 {
		t.Errorf("wide rune should wrap to row 1, got %q", row1.Cells[0].Rune)
	}
	if !row1.Wrapped {
		t.Error("row 1 should be marked wrapped")
	}
}

func TestEraseUsesDefaultBlank(t *testing.T) {
	e := NewEmulator(10, 2)
	// Paint with a red background pen, then erase the line.
	_, _ = e.WriteString("\x1b[41mxxxxx\x1b[1;1H\x1b[2K")

	c, _ := e.CellAt(0, 0)
	if !c.IsBlank() {
		t.Errorf("erased cell = %+v, want default blank", c)
	}
}

func TestEraseInLineModes(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"cursor to end", "\x1b[1;4H\x1b[0K", "abc"},
		{"start to cursor", "\x1b[1;4H\x1b[1K", "    efghij"},
		{"whole line", "\x1b[2K", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEmulator(10, 2)
			_, _ = e.WriteString("abcdefghij")
			_, _ = e.WriteString(tc.seq)
			line, _ := e.Row(0)
			if got := line.String(); got != tc.want {
				t.Errorf("row 0 = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestScrollRegion(t *testing.T) {
	e := NewEmulator(10, 5)
	_, _ = e.WriteString("one\ntwo\nthree\nfour\nfive")
	// Restrict scrolling to rows 2-4 (1-based), then scroll it up.
	_, _ = e.WriteString("\x1b[2;4r\x1b[4;1H\n")

	want := []string{"one", "three", "four", "", "five"}
	for y, w := range want {
		line, _ := e.Row(y)
		if got := line.String(); got != w {
			t.Errorf("row %d = %q, want %q", y, got, w)
		}
	}
	// Region scrolling must not feed scrollback.
	if n := e.ScrollbackLen(); n != 0 {
		t.Errorf("scrollback len = %d, want 0", n)
	}
}

func TestInsertDeleteLines(t *testing.T) {
	e := NewEmulator(10, 4)
	_, _ = e.WriteString("aa\nbb\ncc\ndd")

	_, _ = e.WriteString("\x1b[2;1H\x1b[1L")
	want := []string{"aa", "", "bb", "cc"}
	for y, w := range want {
		line, _ := e.Row(y)
		if got := line.String(); got != w {
			t.Errorf("after IL row %d = %q, want %q", y, got, w)
		}
	}

	_, _ = e.WriteString("\x1b[2;1H\x1b[1M")
	want = []string{"aa", "bb", "cc", ""}
	for y, w := range want {
		line, _ := e.Row(y)
		if got := line.String(); got != w {
			t.Errorf("after DL row %d = %q, want %q", y, got, w)
		}
	}
}

func TestResizeIdempotent(t *testing.T) {
	e1 := NewEmulator(80, 24)
	e2 := NewEmulator(80, 24)
	content := "first line\nsecond line with more text\nthird\n"
	_, _ = e1.WriteString(content)
	_, _ = e2.WriteString(content)

	e1.Resize(40, 10)
	e2.Resize(40, 10)
	e2.Resize(40, 10)

	if e1.Width() != e2.Width() || e1.Height() != e2.Height() {
		t.Fatal("dimensions diverged")
	}
	for y := 0; y < e1.Height(); y++ {
		l1, _ := e1.Row(y)
		l2, _ := e2.Row(y)
		if l1.String() != l2.String() {
			t.Errorf("row %d: %q != %q", y, l1.String(), l2.String())
		}
	}
	x1, y1 := e1.CursorPosition()
	x2, y2 := e2.CursorPosition()
	if x1 != x2 || y1 != y2 {
		t.Errorf("cursor diverged: (%d,%d) vs (%d,%d)", x1, y1, x2, y2)
	}
}

func TestResizeShrinkKeepsCursorVisible(t *testing.T) {
	e := NewEmulator(20, 10)
	for i := 0; i < 9; i++ {
		_, _ = e.WriteString("line\n")
	}
	_, _ = e.WriteString("last")

	e.Resize(20, 4)

	if got := e.Height(); got != 4 {
		t.Fatalf("height = %d, want 4", got)
	}
	_, y := e.CursorPosition()
	if y != 3 {
		t.Errorf("cursor row = %d, want 3", y)
	}
	line, _ := e.Row(3)
	if got := line.String(); got != "last" {
		t.Errorf("cursor row text = %q, want %q", got, "last")
	}
	if got := e.ScrollbackLen(); got != 6 {
		t.Errorf("scrollback len = %d, want 6", got)
	}
	for i := 0; i < 6; i++ {
		if got := e.ScrollbackLine(i).String(); got != "line" {
			t.Errorf("scrollback line %d = %q, want %q", i, got, "line")
		}
	}
}

func TestResizeShrinkRetainsRowsBelowCursor(t *testing.T) {
	e := NewEmulator(20, 10)
	for i := 0; i < 9; i++ {
		_, _ = e.WriteString("line\n")
	}
	_, _ = e.WriteString("last")
	// Home the cursor; content below it must survive the shrink.
	_, _ = e.WriteString("\x1b[H")

	e.Resize(20, 4)

	if got := e.ScrollbackLen(); got != 6 {
		t.Errorf("scrollback len = %d, want 6", got)
	}
	line, _ := e.Row(3)
	if got := line.String(); got != "last" {
		t.Errorf("bottom row = %q, want %q", got, "last")
	}
	x, y := e.CursorPosition()
	if x != 0 || y != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", x, y)
	}
}

func TestResizeRepadsScrollback(t *testing.T) {
	e := NewEmulator(10, 2)
	for i := 0; i < 6; i++ {
		_, _ = e.WriteString("line\n")
	}
	if e.ScrollbackLen() == 0 {
		t.Fatal("setup: expected lines in scrollback")
	}

	e.Resize(20, 2)
	for i := 0; i < e.ScrollbackLen(); i++ {
		if got := len(e.ScrollbackLine(i).Cells); got != 20 {
			t.Fatalf("scrollback line %d width = %d, want 20", i, got)
		}
	}

	e.Resize(3, 2)
	for i := 0; i < e.ScrollbackLen(); i++ {
		line := e.ScrollbackLine(i)
		if got := len(line.Cells); got != 3 {
			t.Fatalf("scrollback line %d width = %d, want 3", i, got)
		}
		if got := line.String(); got != "lin" {
			t.Errorf("scrollback line %d = %q, want %q", i, got, "lin")
		}
	}
}

func TestResizeWiderPadsRows(t *testing.T) {
	e := NewEmulator(10, 3)
	_, _ = e.WriteString("abc")
	e.Resize(20, 3)

	line, _ := e.Row(0)
	if len(line.Cells) != 20 {
		t.Fatalf("row 0 has %d cells, want 20", len(line.Cells))
	}
	if got := line.String(); got != "abc" {
		t.Errorf("row 0 = %q, want %q", got, "abc")
	}
}

func TestResizeRejectsDegenerate(t *testing.T) {
	e := NewEmulator(10, 3)
	e.Resize(0, 5)
	e.Resize(5, 0)
	e.Resize(-1, -1)
	if e.Width() != 10 || e.Height() != 3 {
		t.Errorf("size = %dx%d, want 10x3", e.Width(), e.Height())
	}
}

func TestCursorMovesClamp(t *testing.T) {
	e := NewEmulator(10, 5)
	tests := []struct {
		name string
		seq  string
		x, y int
	}{
		{"up past top", "\x1b[99A", 0, 0},
		{"down past bottom", "\x1b[99B", 0, 4},
		{"forward past right", "\x1b[99C", 9, 0},
		{"position out of range", "\x1b[99;99H", 9, 4},
		{"home", "\x1b[H", 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _ = e.WriteString("\x1b[H")
			_, _ = e.WriteString(tc.seq)
			x, y := e.CursorPosition()
			if x != tc.x || y != tc.y {
				t.Errorf("cursor = (%d,%d), want (%d,%d)", x, y, tc.x, tc.y)
			}
		})
	}
}

func TestBackspaceStopsAtColumnZero(t *testing.T) {
	e := NewEmulator(10, 2)
	_, _ = e.WriteString("ab\b\b\b\b")
	x, y := e.CursorPosition()
	if x != 0 || y != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", x, y)
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	e := NewEmulator(20, 5)
	_, _ = e.WriteString("\x1b[3;7H\x1b7\x1b[H\x1b8")
	x, y := e.CursorPosition()
	if x != 6 || y != 2 {
		t.Errorf("cursor = (%d,%d), want (6,2)", x, y)
	}
}
