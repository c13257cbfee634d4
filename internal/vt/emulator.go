package vt

import (
	"image/color"
	"io"

	"github.com/charmbracelet/x/ansi"
)

// Logger represents a logger interface.
type Logger interface {
	Printf(format string, v ...any)
}

// Callbacks are optional hooks invoked while processing output.
type Callbacks struct {
	// Title is called when the application sets the window title
	// through OSC 0 or OSC 2.
	Title func(title string)
	// Bell is called on BEL.
	Bell func()
}

// DEC private modes the emulator tracks.
const (
	ModeCursorKeys          = 1
	ModeAutowrap            = 7
	ModeCursorVisible       = 25
	ModeAltScreen47         = 47
	ModeMouseNormal         = 1000
	ModeMouseButtonEvent    = 1002
	ModeMouseAnyEvent       = 1003
	ModeMouseExtSGR         = 1006
	ModeAltScreen           = 1047
	ModeAltScreenSaveCursor = 1049
	ModeBracketedPaste      = 2004
)

// Emulator is a virtual terminal: a parser feeding two screen buffers,
// the primary one backed by scrollback. It is not safe for concurrent
// use; callers serialize Write, Resize and snapshot access externally.
type Emulator struct {
	// Main and alt screens and a pointer to the active one.
	scrs [2]Screen
	scr  *Screen

	parser *Parser

	// DEC private modes currently set.
	modes map[int]bool

	// The terminal's indexed 256 colors, nil entries fall back to the
	// standard palette.
	colors [256]color.Color

	// reply receives responses to queries such as DSR. Usually the PTY
	// writer.
	reply io.Writer

	title  string
	cb     Callbacks
	logger Logger
}

// NewEmulator creates an emulator with the given dimensions.
func NewEmulator(cols, rows int) *Emulator {
	e := new(Emulator)
	e.scrs[0] = *NewScreen(cols, rows)
	e.scrs[1] = *NewScreen(cols, rows)
	e.scrs[0].scrollback = NewScrollback(DefaultScrollbackLines)
	e.scr = &e.scrs[0]
	e.parser = NewParser(e)
	e.modes = map[int]bool{
		ModeAutowrap:      true,
		ModeCursorVisible: true,
	}
	return e
}

// SetLogger sets the emulator's logger.
func (e *Emulator) SetLogger(l Logger) {
	e.logger = l
}

// SetCallbacks sets the emulator's callbacks.
func (e *Emulator) SetCallbacks(cb Callbacks) {
	e.cb = cb
}

// SetReplyWriter sets the writer used for query responses. This is
// normally the PTY so reports reach the child process.
func (e *Emulator) SetReplyWriter(w io.Writer) {
	e.reply = w
}

// Write feeds PTY output through the parser. It never fails; malformed
// sequences are dropped and processing continues.
func (e *Emulator) Write(p []byte) (int, error) {
	e.parser.Advance(p)
	return len(p), nil
}

// WriteString writes a string to the emulator.
func (e *Emulator) WriteString(s string) (int, error) {
	return e.Write([]byte(s))
}

// Width returns the number of columns.
func (e *Emulator) Width() int { return e.scr.Width() }

// Height returns the number of rows.
func (e *Emulator) Height() int { return e.scr.Height() }

// Resize resizes both screen buffers. Degenerate dimensions are
// ignored.
func (e *Emulator) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	e.scrs[0].Resize(cols, rows)
	e.scrs[1].Resize(cols, rows)
}

// CellAt returns the cell of the active screen at the given position.
func (e *Emulator) CellAt(x, y int) (Cell, bool) {
	return e.scr.CellAt(x, y)
}

// Row returns a row of the active screen.
func (e *Emulator) Row(y int) (Line, bool) {
	return e.scr.Row(y)
}

// CursorPosition returns the active screen's cursor position.
func (e *Emulator) CursorPosition() (x, y int) {
	return e.scr.CursorPosition()
}

// IsCursorHidden reports whether the application hid the cursor.
func (e *Emulator) IsCursorHidden() bool {
	return !e.modes[ModeCursorVisible]
}

// Title returns the last title set through OSC 0/2.
func (e *Emulator) Title() string { return e.title }

// IsModeSet reports whether a DEC private mode is currently set.
func (e *Emulator) IsModeSet(mode int) bool {
	return e.modes[mode]
}

// IsAltScreen reports whether the alternate screen buffer is active.
// Full-screen applications like vim and less switch to it; scrollback
// is frozen while it is active.
func (e *Emulator) IsAltScreen() bool {
	return e.scr == &e.scrs[1]
}

// HasMouseMode reports whether any mouse tracking mode is enabled, so
// the host knows to forward mouse events to the child.
func (e *Emulator) HasMouseMode() bool {
	return e.modes[ModeMouseNormal] || e.modes[ModeMouseButtonEvent] || e.modes[ModeMouseAnyEvent]
}

// BracketedPasteEnabled reports whether the child asked for bracketed
// paste guards around pasted text.
func (e *Emulator) BracketedPasteEnabled() bool {
	return e.modes[ModeBracketedPaste]
}

// CursorKeysApplication reports whether arrow keys should be sent in
// application mode (SS3) rather than ANSI mode.
func (e *Emulator) CursorKeysApplication() bool {
	return e.modes[ModeCursorKeys]
}

// Scrollback returns the primary screen's scrollback buffer.
func (e *Emulator) Scrollback() *Scrollback {
	return e.scrs[0].Scrollback()
}

// ScrollbackLen returns the number of lines in scrollback.
func (e *Emulator) ScrollbackLen() int {
	return e.scrs[0].Scrollback().Len()
}

// ScrollbackLine returns a scrollback line, 0 being the oldest.
func (e *Emulator) ScrollbackLine(index int) Line {
	return e.scrs[0].Scrollback().Line(index)
}

// SetScrollbackMaxLines changes the scrollback capacity.
func (e *Emulator) SetScrollbackMaxLines(maxLines int) {
	e.scrs[0].Scrollback().SetMaxLines(maxLines)
}

// IndexedColor resolves one of the terminal's 256 indexed colors.
func (e *Emulator) IndexedColor(i int) color.Color {
	if i < 0 || i > 255 {
		return nil
	}
	if c := e.colors[i]; c != nil {
		return c
	}
	return ansi.IndexedColor(uint8(i)) //nolint:gosec // bounds checked above
}

// SetIndexedColor overrides one of the 256 indexed colors.
func (e *Emulator) SetIndexedColor(i int, c color.Color) {
	if i < 0 || i > 255 {
		return
	}
	e.colors[i] = c
}

// setMode applies a DEC private mode change and its side effects.
func (e *Emulator) setMode(mode int, on bool) {
	switch mode {
	case ModeAutowrap:
		e.scr.autowrap = on
	case ModeCursorVisible:
		// Tracked in the modes map only.
	case ModeAltScreen47, ModeAltScreen:
		e.switchScreen(on, false)
	case ModeAltScreenSaveCursor:
		e.switchScreen(on, true)
	case ModeCursorKeys, ModeMouseNormal, ModeMouseButtonEvent,
		ModeMouseAnyEvent, ModeMouseExtSGR, ModeBracketedPaste:
		// Tracked in the modes map only.
	default:
		e.logf("vt: unhandled private mode %d", mode)
		return
	}
	if on {
		e.modes[mode] = true
	} else {
		delete(e.modes, mode)
	}
}

// switchScreen moves between the primary and alternate buffers. The
// alternate buffer is cleared on entry; the primary buffer and its
// scrollback come back untouched on exit.
func (e *Emulator) switchScreen(alt, saveCursor bool) {
	if alt {
		if e.IsAltScreen() {
			return
		}
		if saveCursor {
			e.scrs[0].SaveCursor()
		}
		e.scrs[1].Clear()
		e.scrs[1].SetPen(e.scrs[0].Pen())
		e.scr = &e.scrs[1]
	} else {
		if !e.IsAltScreen() {
			return
		}
		e.scr = &e.scrs[0]
		if saveCursor {
			e.scrs[0].RestoreCursor()
		}
	}
}

// reset restores the emulator to its initial state (RIS). Scrollback is
// preserved.
func (e *Emulator) reset() {
	cols, rows := e.Width(), e.Height()
	sb := e.scrs[0].scrollback
	e.scrs[0] = *NewScreen(cols, rows)
	e.scrs[1] = *NewScreen(cols, rows)
	e.scrs[0].scrollback = sb
	e.scr = &e.scrs[0]
	e.modes = map[int]bool{
		ModeAutowrap:      true,
		ModeCursorVisible: true,
	}
}

// handleOSC dispatches a completed OSC string.
func (e *Emulator) handleOSC(data []byte) {
	cmd, content, ok := splitOSC(data)
	if !ok {
		return
	}
	switch cmd {
	case "0", "2": // icon name and/or window title
		e.title = content
		if e.cb.Title != nil {
			e.cb.Title(content)
		}
	default:
		e.logf("vt: dropped osc %s", cmd)
	}
}

func splitOSC(data []byte) (cmd, content string, ok bool) {
	for i, b := range data {
		if b == ';' {
			return string(data[:i]), string(data[i+1:]), true
		}
	}
	return "", "", false
}

func (e *Emulator) bell() {
	if e.cb.Bell != nil {
		e.cb.Bell()
	}
}

func (e *Emulator) logf(format string, v ...any) {
	if e.logger != nil {
		e.logger.Printf(format, v...)
	}
}
