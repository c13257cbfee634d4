package app

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/termtui/internal/config"
	"github.com/Gaurav-Gosain/termtui/internal/input"
	"github.com/Gaurav-Gosain/termtui/internal/vt"
)

// Init starts the tick loop and the session exit listener.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(),
		listenForExit(m.sess),
	}
	if m.watcher != nil {
		cmds = append(cmds, listenForConfigChanges(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Update handles all incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if m.status != "" && time.Now().After(m.statusExpiry) {
			m.status = ""
		}
		return m, tickCmd()

	case SessionExitedMsg:
		return m, tea.Quit

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.registry = config.NewKeybindRegistry(msg.Config)
		m.notify("Configuration reloaded")
		m.logger.Info("config reloaded")
		return m, listenForConfigChanges(m.watcher)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = m.width > 0 && m.height > 0
		if m.ready {
			cols, rows := m.terminalSize()
			if err := m.sess.Resize(cols, rows); err != nil {
				m.logger.Error("resize failed", "err", err)
			}
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseWheelMsg:
		return m.handleWheel(msg)

	case tea.MouseClickMsg:
		mouse := msg.Mouse()
		m.forwardMouse(encodeSGRButton(mouse.Button), mouse.X, mouse.Y, 'M')
		return m, nil

	case tea.MouseReleaseMsg:
		mouse := msg.Mouse()
		m.forwardMouse(encodeSGRButton(mouse.Button), mouse.X, mouse.Y, 'm')
		return m, nil

	case tea.MouseMotionMsg:
		mouse := msg.Mouse()
		// Motion reports add 32 to the button code.
		m.forwardMouse(encodeSGRButton(mouse.Button)+32, mouse.X, mouse.Y, 'M')
		return m, nil

	case tea.ClipboardMsg:
		if err := m.sess.Paste(msg.Content); err != nil {
			m.logger.Error("paste failed", "err", err)
		}
		return m, nil

	case tea.PasteMsg:
		if err := m.sess.Paste(msg.Content); err != nil {
			m.logger.Error("paste failed", "err", err)
		}
		return m, nil
	}

	return m, nil
}

// handleKey routes a keypress to copy mode, a session binding, or the
// child process.
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch m.registry.SessionAction(msg.String()) {
		case "toggle_help":
			m.showHelp = false
		default:
			if msg.String() == "esc" || msg.String() == "q" {
				m.showHelp = false
			}
		}
		return m, nil
	}

	if m.copyMode != nil {
		res := input.HandleCopyModeKey(msg, m.copyMode, m.registry)
		var cmd tea.Cmd
		if res.DidYank {
			m.notify(fmt.Sprintf("Copied %d characters", len(res.Yanked)))
			cmd = tea.SetClipboard(res.Yanked)
		}
		if res.Exit {
			m.copyMode = nil
		} else {
			m.ensureCopyCursorVisible()
		}
		return m, cmd
	}

	switch m.registry.SessionAction(msg.String()) {
	case "enter_copy_mode":
		m.enterCopyMode()
		return m, nil
	case "paste":
		return m, tea.ReadClipboard
	case "toggle_help":
		m.showHelp = true
		return m, nil
	case "quit":
		return m, tea.Quit
	}

	// Any other key snaps the view back to the live screen.
	m.scrollOffset = 0

	var appCursor bool
	m.sess.WithLock(func(emu *vt.Emulator) {
		appCursor = emu.CursorKeysApplication()
	})
	if data := input.KeyToBytes(msg, appCursor); len(data) > 0 {
		if err := m.sess.SendInput(data); err != nil {
			m.logger.Error("send input failed", "err", err)
		}
	}
	return m, nil
}

// handleWheel scrolls copy mode, the scrollback view, or forwards the
// wheel to a mouse-aware child.
func (m *Model) handleWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	mouse := msg.Mouse()
	up := mouse.Button == tea.MouseWheelUp
	if !up && mouse.Button != tea.MouseWheelDown {
		return m, nil
	}

	if m.copyMode != nil {
		if up {
			m.copyMode.Move(0, -3)
		} else {
			m.copyMode.Move(0, 3)
		}
		m.ensureCopyCursorVisible()
		return m, nil
	}

	var wantsMouse bool
	var scrollbackLen int
	m.sess.WithLock(func(emu *vt.Emulator) {
		wantsMouse = emu.HasMouseMode()
		scrollbackLen = emu.ScrollbackLen()
	})

	if wantsMouse {
		code := 64
		if !up {
			code = 65
		}
		m.forwardMouse(code, mouse.X, mouse.Y, 'M')
		return m, nil
	}

	if up {
		m.scrollOffset = min(m.scrollOffset+3, scrollbackLen)
	} else {
		m.scrollOffset = max(m.scrollOffset-3, 0)
	}
	return m, nil
}

// forwardMouse sends an SGR mouse report to the child when it enabled
// mouse tracking. Coordinates are 1-based on the wire.
func (m *Model) forwardMouse(code, x, y int, final byte) {
	if code < 0 {
		return
	}
	var wantsMouse bool
	m.sess.WithLock(func(emu *vt.Emulator) {
		wantsMouse = emu.HasMouseMode()
	})
	if !wantsMouse {
		return
	}
	seq := fmt.Sprintf("\x1b[<%d;%d;%d%c", code, x+1, y+1, final)
	if err := m.sess.SendInput([]byte(seq)); err != nil {
		m.logger.Error("mouse forward failed", "err", err)
	}
}

// encodeSGRButton maps a bubbletea mouse button to its SGR code, -1
// for buttons that have no encoding.
func encodeSGRButton(btn tea.MouseButton) int {
	switch btn {
	case tea.MouseLeft:
		return 0
	case tea.MouseMiddle:
		return 1
	case tea.MouseRight:
		return 2
	case tea.MouseNone:
		return 3
	case tea.MouseWheelUp:
		return 64
	case tea.MouseWheelDown:
		return 65
	}
	return -1
}

// enterCopyMode freezes the terminal and starts the selection state
// machine over the snapshot.
func (m *Model) enterCopyMode() {
	snap := m.sess.Snapshot()
	m.copyMode = input.NewCopyMode(snap)
	// Entering from a scrolled view keeps the same lines visible.
	m.copyTop = snap.ScrollbackLen() - m.scrollOffset
	m.scrollOffset = 0
	m.ensureCopyCursorVisible()
}

// ensureCopyCursorVisible scrolls the copy-mode viewport to keep the
// cursor on screen.
func (m *Model) ensureCopyCursorVisible() {
	if m.copyMode == nil {
		return
	}
	_, rows := m.terminalSize()
	total := m.copyMode.Snapshot().Total()

	y := m.copyMode.Cursor().Y
	if y < m.copyTop {
		m.copyTop = y
	}
	if y > m.copyTop+rows-1 {
		m.copyTop = y - rows + 1
	}
	m.copyTop = max(0, min(m.copyTop, max(0, total-rows)))
}
