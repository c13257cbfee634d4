package vt

import "unicode/utf8"

// parserState is the decoder's current position in an escape sequence.
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSI
	stateOSC
	stateCharset
)

const (
	maxParams    = 16
	maxParam     = 65535
	maxOSCLength = 4096
)

// Parser decodes a terminal byte stream into operations on an Emulator.
// It is resumable: escape sequences and multi-byte UTF-8 runes split
// across Advance calls continue where they left off.
type Parser struct {
	emu   *Emulator
	state parserState

	// CSI accumulation.
	params   []int
	curParam int
	private  bool
	ignore   bool

	// OSC accumulation.
	osc    []byte
	oscEsc bool

	// pending holds the prefix of a UTF-8 rune cut off by a chunk
	// boundary.
	pending []byte
}

// NewParser creates a parser feeding the given emulator.
func NewParser(emu *Emulator) *Parser {
	return &Parser{
		emu:    emu,
		state:  stateGround,
		params: make([]int, 0, maxParams),
		osc:    make([]byte, 0, 128),
	}
}

// Advance processes a chunk of bytes from the PTY.
func (p *Parser) Advance(data []byte) {
	if len(p.pending) > 0 {
		data = append(p.pending, data...)
		p.pending = nil
	}

	for i := 0; i < len(data); {
		b := data[i]
		size := 1

		switch p.state {
		case stateGround:
			switch {
			case b == 0x1b:
				p.state = stateEscape
			case b == '\n' || b == 0x0b || b == 0x0c:
				// LF moves to column 0 of the next row.
				p.emu.scr.LineFeed()
				p.emu.scr.CarriageReturn()
			case b == '\r':
				p.emu.scr.CarriageReturn()
			case b == 0x08:
				p.emu.scr.Backspace()
			case b == '\t':
				p.emu.scr.Tab()
			case b == 0x07:
				p.emu.bell()
			case b < 0x20 || b == 0x7f:
				// Remaining C0 controls and DEL are ignored.
			case b < utf8.RuneSelf:
				p.emu.scr.Print(rune(b))
			default:
				r, sz := utf8.DecodeRune(data[i:])
				if r == utf8.RuneError && sz == 1 {
					if !utf8.FullRune(data[i:]) && len(data)-i < utf8.UTFMax {
						// Partial rune at the end of the chunk, keep
						// it for the next Advance.
						p.pending = append([]byte(nil), data[i:]...)
						return
					}
					// Invalid byte, drop it.
				} else {
					p.emu.scr.Print(r)
				}
				size = sz
			}

		case stateEscape:
			p.state = stateGround
			switch b {
			case '[':
				p.state = stateCSI
				p.params = p.params[:0]
				p.curParam = 0
				p.private = false
				p.ignore = false
			case ']':
				p.state = stateOSC
				p.osc = p.osc[:0]
				p.oscEsc = false
			case '(', ')', '*', '+':
				p.state = stateCharset
			case '7':
				p.emu.scr.SaveCursor()
			case '8':
				p.emu.scr.RestoreCursor()
			case 'D': // IND
				p.emu.scr.LineFeed()
			case 'E': // NEL
				p.emu.scr.CarriageReturn()
				p.emu.scr.LineFeed()
			case 'M': // RI
				p.emu.scr.ReverseLineFeed()
			case 'c': // RIS
				p.emu.reset()
			case '=', '>':
				// Keypad modes, not tracked.
			default:
				p.emu.logf("vt: unhandled escape 0x%02x", b)
			}

		case stateCSI:
			switch {
			case b >= '0' && b <= '9':
				p.curParam = p.curParam*10 + int(b-'0')
				if p.curParam > maxParam {
					p.curParam = maxParam
				}
			case b == ';':
				if len(p.params) < maxParams {
					p.params = append(p.params, p.curParam)
				}
				p.curParam = 0
			case b == '?':
				p.private = true
			case b >= 0x3c && b <= 0x3f:
				// Other prefix markers (<, =, >); sequence dropped at
				// dispatch.
				p.ignore = true
			case b >= 0x20 && b <= 0x2f:
				// Intermediate bytes select sequences we do not
				// implement.
				p.ignore = true
			case b >= 0x40 && b <= 0x7e:
				if len(p.params) < maxParams {
					p.params = append(p.params, p.curParam)
				}
				if !p.ignore {
					p.emu.handleCSI(b, p.params, p.private)
				} else {
					p.emu.logf("vt: dropped csi 0x%02x", b)
				}
				p.state = stateGround
			default:
				// Malformed sequence, abandon it.
				p.state = stateGround
			}

		case stateOSC:
			switch {
			case b == 0x07:
				p.emu.handleOSC(p.osc)
				p.state = stateGround
			case p.oscEsc:
				if b == '\\' {
					p.emu.handleOSC(p.osc)
				}
				p.oscEsc = false
				p.state = stateGround
			case b == 0x1b:
				p.oscEsc = true
			default:
				if len(p.osc) < maxOSCLength {
					p.osc = append(p.osc, b)
				}
			}

		case stateCharset:
			// Single charset designator byte, then back to ground.
			p.state = stateGround
		}

		i += size
	}
}
