package input

import (
	tea "charm.land/bubbletea/v2"
)

// KeyToBytes converts a key press into the byte sequence a terminal
// application expects on its PTY. appCursor selects application cursor
// key encoding (SS3) for the arrow and home/end keys, per DECCKM.
func KeyToBytes(msg tea.KeyPressMsg, appCursor bool) []byte {
	key := msg.Key()

	if key.Mod != 0 {
		// Ctrl+key combinations map to C0 control codes.
		if key.Mod&tea.ModCtrl != 0 {
			switch key.Code {
			case tea.KeySpace:
				return []byte{0x00}
			case tea.KeyBackspace:
				return []byte{0x08}
			case tea.KeyTab:
				return []byte{0x09}
			case tea.KeyEnter:
				return []byte{0x0a}
			case tea.KeyEscape:
				return []byte{0x1b}
			}
			if key.Code >= 'a' && key.Code <= 'z' {
				return []byte{byte(key.Code - 'a' + 1)}
			}
			if key.Code >= 'A' && key.Code <= 'Z' {
				return []byte{byte(key.Code - 'A' + 1)}
			}
			switch key.Code {
			case '@':
				return []byte{0x00}
			case '[':
				return []byte{0x1b}
			case '\\':
				return []byte{0x1c}
			case ']':
				return []byte{0x1d}
			case '^':
				return []byte{0x1e}
			case '_':
				return []byte{0x1f}
			case '?':
				return []byte{0x7f}
			}
		}

		// Alt+key sends ESC followed by the key.
		if key.Mod&tea.ModAlt != 0 {
			switch key.Code {
			case tea.KeyBackspace:
				return []byte{0x1b, 0x7f}
			default:
				if len(key.Text) == 1 {
					return []byte{0x1b, key.Text[0]}
				}
				if key.Code >= 32 && key.Code <= 126 {
					return []byte{0x1b, byte(key.Code)}
				}
			}
		}

		// Cursor keys with modifiers use the CSI 1;{mod} form.
		if final, ok := cursorFinal(key.Code); ok {
			if mod := modParam(key.Mod); mod > 1 {
				return []byte{0x1b, '[', '1', ';', byte('0' + mod), final}
			}
		}
	}

	switch key.Code {
	case tea.KeyEnter:
		return []byte{'\r'}
	case tea.KeyTab:
		return []byte{'\t'}
	case tea.KeyBackspace:
		return []byte{0x7f}
	case tea.KeyEscape:
		return []byte{0x1b}
	case tea.KeySpace:
		return []byte{' '}
	case tea.KeyDelete:
		return []byte("\x1b[3~")
	case tea.KeyInsert:
		return []byte("\x1b[2~")
	case tea.KeyPgUp:
		return []byte("\x1b[5~")
	case tea.KeyPgDown:
		return []byte("\x1b[6~")
	}

	if final, ok := cursorFinal(key.Code); ok {
		if appCursor {
			return []byte{0x1b, 'O', final}
		}
		return []byte{0x1b, '[', final}
	}

	if fn := functionKeyBytes(key.Code); len(fn) > 0 {
		return fn
	}

	// Key.Text carries the shifted/composed text for printable keys,
	// including multi-byte Unicode.
	if key.Text != "" {
		return []byte(key.Text)
	}
	if key.Code >= 32 && key.Code <= 126 {
		return []byte{byte(key.Code)}
	}
	return nil
}

// cursorFinal returns the final byte of a cursor key sequence.
func cursorFinal(code rune) (byte, bool) {
	switch code {
	case tea.KeyUp:
		return 'A', true
	case tea.KeyDown:
		return 'B', true
	case tea.KeyRight:
		return 'C', true
	case tea.KeyLeft:
		return 'D', true
	case tea.KeyHome:
		return 'H', true
	case tea.KeyEnd:
		return 'F', true
	}
	return 0, false
}

// modParam computes the xterm modifier parameter for CSI sequences.
func modParam(mod tea.KeyMod) int {
	p := 1
	if mod&tea.ModShift != 0 {
		p++
	}
	if mod&tea.ModAlt != 0 {
		p += 2
	}
	if mod&tea.ModCtrl != 0 {
		p += 4
	}
	return p
}

// functionKeyBytes returns the unmodified escape sequence for F1-F12.
func functionKeyBytes(code rune) []byte {
	switch code {
	case tea.KeyF1:
		return []byte{0x1b, 'O', 'P'}
	case tea.KeyF2:
		return []byte{0x1b, 'O', 'Q'}
	case tea.KeyF3:
		return []byte{0x1b, 'O', 'R'}
	case tea.KeyF4:
		return []byte{0x1b, 'O', 'S'}
	case tea.KeyF5:
		return []byte("\x1b[15~")
	case tea.KeyF6:
		return []byte("\x1b[17~")
	case tea.KeyF7:
		return []byte("\x1b[18~")
	case tea.KeyF8:
		return []byte("\x1b[19~")
	case tea.KeyF9:
		return []byte("\x1b[20~")
	case tea.KeyF10:
		return []byte("\x1b[21~")
	case tea.KeyF11:
		return []byte("\x1b[23~")
	case tea.KeyF12:
		return []byte("\x1b[24~")
	}
	return nil
}
