package app

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/Gaurav-Gosain/termtui/internal/config"
)

var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("11"))

	helpHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Padding(0, 1)

	helpCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	helpHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)
)

// renderHelp renders the keybinding reference page shown while help is
// toggled on.
func (m *Model) renderHelp() string {
	sections := config.GetKeybindings(m.registry, m.cfg)

	blocks := make([]string, 0, 2*len(sections)+1)
	for _, section := range sections {
		rows := make([][]string, 0, len(section.Bindings))
		for _, b := range section.Bindings {
			rows = append(rows, []string{b.Key, b.Description})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
			Headers("Keys", "Action").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return helpHeaderStyle
				}
				return helpCellStyle
			})

		blocks = append(blocks, helpTitleStyle.Render(section.Title), t.Render())
	}
	blocks = append(blocks, helpHintStyle.Render("Press esc to close help"))

	page := lipgloss.JoinVertical(lipgloss.Left, blocks...)
	_, rows := m.terminalSize()
	return lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, page)
}
