package vt

// Scrollback stores lines that have scrolled off the top of the visible
// screen. It is a fixed-capacity ring buffer so pushes are O(1) and the
// oldest line is evicted once capacity is reached.
type Scrollback struct {
	// lines is the ring buffer arena, allocated once at capacity.
	lines []Line
	// maxLines is the capacity of the ring.
	maxLines int
	// head is the index of the oldest line.
	head int
	// tail is the index where the next line will be written.
	tail int
	// full reports whether the ring is at capacity.
	full bool
}

// DefaultScrollbackLines is the scrollback capacity used when none is given.
const DefaultScrollbackLines = 10000

// NewScrollback creates a scrollback buffer holding at most maxLines
// lines. A non-positive maxLines selects DefaultScrollbackLines.
func NewScrollback(maxLines int) *Scrollback {
	if maxLines <= 0 {
		maxLines = DefaultScrollbackLines
	}
	return &Scrollback{
		lines:    make([]Line, maxLines),
		maxLines: maxLines,
	}
}

// PushLine appends a copy of line to the buffer, evicting the oldest
// line when the buffer is full.
func (sb *Scrollback) PushLine(line Line) {
	if len(line.Cells) == 0 {
		return
	}

	// Copy to avoid aliasing the caller's grid row.
	sb.lines[sb.tail] = line.Clone()

	sb.tail = (sb.tail + 1) % sb.maxLines
	if sb.full {
		sb.head = (sb.head + 1) % sb.maxLines
	}
	if sb.tail == sb.head {
		sb.full = true
	}
}

// Len returns the number of lines currently stored.
func (sb *Scrollback) Len() int {
	if sb.full {
		return sb.maxLines
	}
	if sb.tail >= sb.head {
		return sb.tail - sb.head
	}
	return sb.maxLines - sb.head + sb.tail
}

// Line returns the line at index, where 0 is the oldest line and
// Len()-1 the most recently pushed. Out of range indexes return a zero
// Line.
func (sb *Scrollback) Line(index int) Line {
	if index < 0 || index >= sb.Len() {
		return Line{}
	}
	return sb.lines[(sb.head+index)%sb.maxLines]
}

// Lines returns all stored lines from oldest to newest. The returned
// lines must not be modified.
func (sb *Scrollback) Lines() []Line {
	length := sb.Len()
	if length == 0 {
		return nil
	}
	result := make([]Line, length)
	for i := 0; i < length; i++ {
		result[i] = sb.lines[(sb.head+i)%sb.maxLines]
	}
	return result
}

// PopLine removes and returns the newest line. ok is false when the
// buffer is empty. Used when the screen grows and rows are pulled back
// out of scrollback.
func (sb *Scrollback) PopLine() (Line, bool) {
	if sb.Len() == 0 {
		return Line{}, false
	}
	sb.tail = (sb.tail - 1 + sb.maxLines) % sb.maxLines
	line := sb.lines[sb.tail]
	sb.lines[sb.tail] = Line{}
	sb.full = false
	return line, true
}

// ResizeLines pads or truncates every stored line to the given width,
// keeping history rows addressable under the screen's current column
// count.
func (sb *Scrollback) ResizeLines(cols int) {
	if cols <= 0 {
		return
	}
	length := sb.Len()
	for i := 0; i < length; i++ {
		idx := (sb.head + i) % sb.maxLines
		sb.lines[idx] = resizeLine(sb.lines[idx], cols)
	}
}

// Clear removes all lines from the buffer.
func (sb *Scrollback) Clear() {
	sb.head = 0
	sb.tail = 0
	sb.full = false
	for i := range sb.lines {
		sb.lines[i] = Line{}
	}
}

// MaxLines returns the buffer's capacity.
func (sb *Scrollback) MaxLines() int {
	return sb.maxLines
}

// SetMaxLines changes the capacity. When shrinking, the oldest lines
// are discarded so the newest maxLines lines survive.
func (sb *Scrollback) SetMaxLines(maxLines int) {
	if maxLines <= 0 {
		maxLines = DefaultScrollbackLines
	}
	if maxLines == sb.maxLines {
		return
	}

	oldLen := sb.Len()
	newLines := make([]Line, maxLines)
	newLen := min(oldLen, maxLines)

	// Keep the newest newLen lines.
	start := oldLen - newLen
	for i := 0; i < newLen; i++ {
		newLines[i] = sb.lines[(sb.head+start+i)%sb.maxLines]
	}

	sb.lines = newLines
	sb.maxLines = maxLines
	sb.head = 0
	sb.tail = newLen % maxLines
	sb.full = newLen == maxLines
}
