package vt

import (
	"fmt"
	"testing"
)

func textLine(s string, cols int) Line {
	l := newLine(cols)
	for i, r := range s {
		if i >= cols {
			break
		}
		l.Cells[i] = Cell{Rune: r, Width: 1}
	}
	return l
}

func TestScrollbackPushAndEviction(t *testing.T) {
	sb := NewScrollback(100)
	for i := 0; i < 150; i++ {
		sb.PushLine(textLine(fmt.Sprintf("line-%d", i), 20))
	}

	if got := sb.Len(); got != 100 {
		t.Fatalf("Len = %d, want 100", got)
	}
	// The 50 oldest lines were evicted.
	if got := sb.Line(0).String(); got != "line-50" {
		t.Errorf("oldest = %q, want %q", got, "line-50")
	}
	if got := sb.Line(99).String(); got != "line-149" {
		t.Errorf("newest = %q, want %q", got, "line-149")
	}
}

func TestScrollbackNeverExceedsCapacity(t *testing.T) {
	caps := []int{1, 7, 64, 1000}
	for _, c := range caps {
		sb := NewScrollback(c)
		for i := 0; i < 3*c+5; i++ {
			sb.PushLine(textLine("x", 4))
			if sb.Len() > c {
				t.Fatalf("cap %d: Len = %d after %d pushes", c, sb.Len(), i+1)
			}
		}
	}
}

func TestScrollbackCopiesLines(t *testing.T) {
	sb := NewScrollback(10)
	line := textLine("abc", 5)
	sb.PushLine(line)
	line.Cells[0] = Cell{Rune: 'z', Width: 1}

	if got := sb.Line(0).String(); got != "abc" {
		t.Errorf("stored line = %q, want %q (must not alias caller)", got, "abc")
	}
}

func TestScrollbackOutOfRange(t *testing.T) {
	sb := NewScrollback(10)
	sb.PushLine(textLine("a", 2))
	if l := sb.Line(-1); len(l.Cells) != 0 {
		t.Error("negative index should return a zero line")
	}
	if l := sb.Line(1); len(l.Cells) != 0 {
		t.Error("past-end index should return a zero line")
	}
}

func TestScrollbackClear(t *testing.T) {
	sb := NewScrollback(10)
	for i := 0; i < 15; i++ {
		sb.PushLine(textLine("x", 2))
	}
	sb.Clear()
	if sb.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", sb.Len())
	}
	sb.PushLine(textLine("y", 2))
	if got := sb.Line(0).String(); got != "y" {
		t.Errorf("line after Clear+Push = %q, want %q", got, "y")
	}
}

func TestScrollbackSetMaxLines(t *testing.T) {
	sb := NewScrollback(100)
	for i := 0; i < 100; i++ {
		sb.PushLine(textLine(fmt.Sprintf("%d", i), 8))
	}

	sb.SetMaxLines(10)
	if got := sb.Len(); got != 10 {
		t.Fatalf("Len after shrink = %d, want 10", got)
	}
	// The newest lines survive.
	if got := sb.Line(0).String(); got != "90" {
		t.Errorf("oldest after shrink = %q, want %q", got, "90")
	}
	if got := sb.Line(9).String(); got != "99" {
		t.Errorf("newest after shrink = %q, want %q", got, "99")
	}

	sb.SetMaxLines(50)
	if got := sb.Len(); got != 10 {
		t.Errorf("Len after grow = %d, want 10", got)
	}
	for i := 0; i < 60; i++ {
		sb.PushLine(textLine("f", 2))
	}
	if got := sb.Len(); got != 50 {
		t.Errorf("Len at new cap = %d, want 50", got)
	}
}

func TestScrollbackPopLine(t *testing.T) {
	sb := NewScrollback(5)
	sb.PushLine(textLine("a", 2))
	sb.PushLine(textLine("b", 2))

	line, ok := sb.PopLine()
	if !ok || line.String() != "b" {
		t.Fatalf("PopLine = %q ok=%v, want b true", line.String(), ok)
	}
	if sb.Len() != 1 {
		t.Errorf("Len after pop = %d, want 1", sb.Len())
	}
	_, _ = sb.PopLine()
	if _, ok := sb.PopLine(); ok {
		t.Error("PopLine on empty buffer should report false")
	}
}

func TestEmulatorScrollbackCap(t *testing.T) {
	e := NewEmulator(20, 24)
	e.SetScrollbackMaxLines(100)

	// Number every row so we can verify which lines survived.
	for i := 0; i < 24; i++ {
		_, _ = e.WriteString(fmt.Sprintf("row-%d\n", i))
	}
	for i := 24; i < 24+150; i++ {
		_, _ = e.WriteString(fmt.Sprintf("row-%d\n", i))
	}

	if got := e.ScrollbackLen(); got != 100 {
		t.Fatalf("scrollback len = %d, want 100", got)
	}
	// 174 lines scrolled off in total; the newest 100 remain.
	if got := e.ScrollbackLine(99).String(); got != "row-173" {
		t.Errorf("newest scrollback line = %q, want %q", got, "row-173")
	}
	// The viewport holds the most recent lines, with the cursor on a
	// fresh blank bottom row.
	top, _ := e.Row(0)
	if got := top.String(); got != "row-151" {
		t.Errorf("viewport top = %q, want %q", got, "row-151")
	}
	last, _ := e.Row(22)
	if got := last.String(); got != "row-173" {
		t.Errorf("viewport row 22 = %q, want %q", got, "row-173")
	}
}

func BenchmarkScrollbackPushLine(b *testing.B) {
	sb := NewScrollback(10000)
	line := textLine("benchmark line with some text", 80)
	b.ResetTimer()
	for b.Loop() {
		sb.PushLine(line)
	}
}
