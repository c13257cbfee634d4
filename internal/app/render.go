package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/termtui/internal/input"
	"github.com/Gaurav-Gosain/termtui/internal/pool"
	"github.com/Gaurav-Gosain/termtui/internal/vt"
)

var (
	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#00D7FF")).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	selectionStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#5F5FAF")).
			Foreground(lipgloss.Color("#FFFFFF"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#303030")).
			Foreground(lipgloss.Color("#D0D0D0"))

	statusModeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#5F87FF")).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Padding(0, 1)
)

// cellFlag marks how a cell should be highlighted on top of its own
// style.
type cellFlag int

const (
	flagNone cellFlag = iota
	flagSelected
	flagCursor
)

// View renders the terminal content plus the status bar.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion
	view.ReportFocus = true

	if !m.ready {
		view.SetContent("")
		return view
	}

	var frame string
	if m.showHelp {
		frame = m.renderHelp()
	} else if m.copyMode != nil {
		frame = m.renderCopyMode()
	} else {
		frame = m.renderLive()
	}

	status := m.renderStatusBar()
	if m.cfg.Appearance.StatusPosition == "top" {
		view.SetContent(status + "\n" + frame)
	} else {
		view.SetContent(frame + "\n" + status)
	}
	return view
}

// renderLive renders the live screen, with scrollback lines above it
// when the view is scrolled.
func (m *Model) renderLive() string {
	cols, rows := m.terminalSize()
	offset := m.scrollOffset

	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)

	m.sess.WithLock(func(emu *vt.Emulator) {
		sbLen := emu.ScrollbackLen()
		if offset > sbLen {
			offset = sbLen
		}
		curX, curY := emu.CursorPosition()
		showCursor := offset == 0 && !emu.IsCursorHidden()

		for y := 0; y < rows; y++ {
			if y > 0 {
				sb.WriteByte('\n')
			}
			var line vt.Line
			cursorAt := -1
			if y < offset {
				line = emu.ScrollbackLine(sbLen - offset + y)
			} else {
				line, _ = emu.Row(y - offset)
				if showCursor && y-offset == curY {
					cursorAt = curX
				}
			}
			renderLine(sb, line, cols, func(x int) cellFlag {
				if x == cursorAt {
					return flagCursor
				}
				return flagNone
			})
		}
	})
	return sb.String()
}

// renderCopyMode renders the frozen snapshot with the selection and
// the copy-mode cursor highlighted.
func (m *Model) renderCopyMode() string {
	cols, rows := m.terminalSize()
	cm := m.copyMode
	snap := cm.Snapshot()
	cursor := cm.Cursor()

	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)

	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		absY := m.copyTop + y
		line := snap.Line(absY)
		renderLine(sb, line, cols, func(x int) cellFlag {
			if absY == cursor.Y && x == cursor.X {
				return flagCursor
			}
			if cm.Selected(input.Position{X: x, Y: absY}) {
				return flagSelected
			}
			return flagNone
		})
	}
	return sb.String()
}

// renderLine writes one row, batching runs of identically styled cells
// into a single style invocation.
func renderLine(sb *strings.Builder, line vt.Line, cols int, flagAt func(x int) cellFlag) {
	run := pool.GetStringBuilder()
	defer pool.PutStringBuilder(run)

	var runStyle vt.Style
	runFlag := flagNone

	flush := func() {
		if run.Len() == 0 {
			return
		}
		text := run.String()
		run.Reset()
		switch runFlag {
		case flagCursor:
			sb.WriteString(cursorStyle.Render(text))
		case flagSelected:
			sb.WriteString(selectionStyle.Render(text))
		default:
			if runStyle.IsZero() {
				sb.WriteString(text)
			} else {
				sb.WriteString(styleFor(runStyle).Render(text))
			}
		}
	}

	for x := 0; x < cols; x++ {
		cell := vt.BlankCell()
		if x < len(line.Cells) {
			cell = line.Cells[x]
		}
		if cell.Width == 0 {
			// Trailing half of a wide character.
			continue
		}

		r := cell.Rune
		if r == 0 {
			r = ' '
		}
		flag := flagAt(x)

		if run.Len() > 0 && (flag != runFlag || (flag == flagNone && !cell.Style.Equal(runStyle))) {
			flush()
		}
		if run.Len() == 0 {
			runStyle = cell.Style
			runFlag = flag
		}
		run.WriteRune(r)
	}
	flush()
}

// styleFor converts an emulator cell style to a lipgloss style.
func styleFor(st vt.Style) lipgloss.Style {
	s := lipgloss.NewStyle()
	if st.Fg != nil {
		s = s.Foreground(st.Fg)
	}
	if st.Bg != nil {
		s = s.Background(st.Bg)
	}
	if st.Attrs.Contains(vt.AttrBold) {
		s = s.Bold(true)
	}
	if st.Attrs.Contains(vt.AttrFaint) {
		s = s.Faint(true)
	}
	if st.Attrs.Contains(vt.AttrItalic) {
		s = s.Italic(true)
	}
	if st.Attrs.Contains(vt.AttrUnderline) {
		s = s.Underline(true)
	}
	if st.Attrs.Contains(vt.AttrInverse) {
		s = s.Reverse(true)
	}
	if st.Attrs.Contains(vt.AttrStrikethrough) {
		s = s.Strikethrough(true)
	}
	return s
}

// renderStatusBar renders the one-row bar with the session title on
// the left and the mode indicator on the right.
func (m *Model) renderStatusBar() string {
	title := m.sess.Title()
	if title == "" {
		title = m.sess.Name
	}
	left := " " + title

	var mode string
	switch {
	case m.copyMode != nil:
		cursor := m.copyMode.Cursor()
		mode = fmt.Sprintf("COPY %d/%d", cursor.Y+1, m.copyMode.Snapshot().Total())
	case m.scrollOffset > 0:
		mode = fmt.Sprintf("SCROLL -%d", m.scrollOffset)
	}

	right := ""
	if m.status != "" {
		right = m.status + " "
	}
	if mode != "" {
		right += statusModeStyle.Render(mode)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		left = ansi.Truncate(left, max(m.width-lipgloss.Width(right), 0), "…")
		gap = m.width - lipgloss.Width(left) - lipgloss.Width(right)
	}
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
