package vt

import (
	"fmt"
	"image/color"
	"io"

	"github.com/charmbracelet/x/ansi"
)

// param returns the i-th CSI parameter, substituting def when the
// parameter is missing or zero.
func param(params []int, i, def int) int {
	if i >= len(params) || params[i] == 0 {
		return def
	}
	return params[i]
}

// handleCSI dispatches a completed CSI sequence. Unrecognized finals
// are dropped without disturbing the stream.
func (e *Emulator) handleCSI(final byte, params []int, private bool) {
	if private {
		switch final {
		case 'h':
			for _, m := range params {
				e.setMode(m, true)
			}
		case 'l':
			for _, m := range params {
				e.setMode(m, false)
			}
		default:
			e.logf("vt: dropped private csi %c %v", final, params)
		}
		return
	}

	scr := e.scr
	switch final {
	case 'A':
		scr.CursorUp(param(params, 0, 1))
	case 'B':
		scr.CursorDown(param(params, 0, 1))
	case 'C':
		scr.CursorForward(param(params, 0, 1))
	case 'D':
		scr.CursorBack(param(params, 0, 1))
	case 'E':
		scr.CursorNextLine(param(params, 0, 1))
	case 'F':
		scr.CursorPrevLine(param(params, 0, 1))
	case 'G':
		scr.CursorColumn(param(params, 0, 1) - 1)
	case 'H', 'f':
		row := param(params, 0, 1)
		col := param(params, 1, 1)
		scr.SetCursorPosition(col-1, row-1)
	case 'd':
		scr.CursorRow(param(params, 0, 1) - 1)
	case 'J':
		scr.EraseInDisplay(param(params, 0, 0))
	case 'K':
		scr.EraseInLine(param(params, 0, 0))
	case 'X':
		scr.EraseChars(param(params, 0, 1))
	case '@':
		scr.InsertChars(param(params, 0, 1))
	case 'P':
		scr.DeleteChars(param(params, 0, 1))
	case 'L':
		scr.InsertLines(param(params, 0, 1))
	case 'M':
		scr.DeleteLines(param(params, 0, 1))
	case 'S':
		scr.ScrollUp(param(params, 0, 1))
	case 'T':
		scr.ScrollDown(param(params, 0, 1))
	case 'r':
		scr.SetMargins(param(params, 0, 1), param(params, 1, scr.Height()))
	case 'm':
		e.handleSGR(params)
	case 'n':
		e.handleDSR(param(params, 0, 0))
	case 's':
		scr.SaveCursor()
	case 'u':
		scr.RestoreCursor()
	default:
		e.logf("vt: dropped csi %c %v", final, params)
	}
}

// handleDSR answers Device Status Report queries on the reply writer.
func (e *Emulator) handleDSR(kind int) {
	if e.reply == nil {
		return
	}
	switch kind {
	case 5: // operating status
		_, _ = io.WriteString(e.reply, "\x1b[0n")
	case 6: // cursor position report, 1-based
		x, y := e.scr.CursorPosition()
		_, _ = fmt.Fprintf(e.reply, "\x1b[%d;%dR", y+1, x+1)
	}
}

// handleSGR applies a Select Graphic Rendition sequence to the pen.
func (e *Emulator) handleSGR(params []int) {
	pen := e.scr.Pen()
	if len(params) == 0 {
		e.scr.SetPen(Style{})
		return
	}

	for i := 0; i < len(params); i++ {
		switch p := params[i]; p {
		case 0:
			pen = Style{}
		case 1:
			pen.Attrs |= AttrBold
		case 2:
			pen.Attrs |= AttrFaint
		case 3:
			pen.Attrs |= AttrItalic
		case 4:
			pen.Attrs |= AttrUnderline
		case 7:
			pen.Attrs |= AttrInverse
		case 9:
			pen.Attrs |= AttrStrikethrough
		case 22:
			pen.Attrs &^= AttrBold | AttrFaint
		case 23:
			pen.Attrs &^= AttrItalic
		case 24:
			pen.Attrs &^= AttrUnderline
		case 27:
			pen.Attrs &^= AttrInverse
		case 29:
			pen.Attrs &^= AttrStrikethrough
		case 30, 31, 32, 33, 34, 35, 36, 37:
			pen.Fg = e.IndexedColor(p - 30)
		case 38:
			c, n := readExtendedColor(params[i:])
			if n == 0 {
				e.scr.SetPen(pen)
				return
			}
			pen.Fg = c
			i += n - 1
		case 39:
			pen.Fg = nil
		case 40, 41, 42, 43, 44, 45, 46, 47:
			pen.Bg = e.IndexedColor(p - 40)
		case 48:
			c, n := readExtendedColor(params[i:])
			if n == 0 {
				e.scr.SetPen(pen)
				return
			}
			pen.Bg = c
			i += n - 1
		case 49:
			pen.Bg = nil
		case 90, 91, 92, 93, 94, 95, 96, 97:
			pen.Fg = e.IndexedColor(p - 90 + 8)
		case 100, 101, 102, 103, 104, 105, 106, 107:
			pen.Bg = e.IndexedColor(p - 100 + 8)
		default:
			// Blink, conceal, fonts and friends are not modeled.
		}
	}
	e.scr.SetPen(pen)
}

// readExtendedColor reads a semicolon-form 38/48 color sequence
// starting at the 38/48 parameter itself. It returns the color and the
// number of parameters consumed, or n == 0 when the sequence is
// malformed.
func readExtendedColor(params []int) (color.Color, int) {
	if len(params) < 2 {
		return nil, 0
	}
	switch params[1] {
	case 5: // indexed
		if len(params) < 3 {
			return nil, 0
		}
		n := params[2]
		if n < 0 || n > 255 {
			return nil, 0
		}
		return ansi.IndexedColor(uint8(n)), 3 //nolint:gosec // bounds checked above
	case 2: // truecolor
		if len(params) < 5 {
			return nil, 0
		}
		r, g, b := params[2], params[3], params[4]
		if r > 255 || g > 255 || b > 255 {
			return nil, 0
		}
		return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, 5 //nolint:gosec // bounds checked above
	default:
		return nil, 0
	}
}
