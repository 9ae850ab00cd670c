package prompt

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// pickerModel is a single-choice menu driven by the arrow keys.
type pickerModel struct {
	title    string
	options  []string
	cursor   int
	chosen   int
	aborted  bool
	finished bool
}

func newPicker(title string, options []string) pickerModel {
	return pickerModel{title: title, options: options, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = m.cursor
		m.finished = true
		return m, tea.Quit
	case "ctrl+c", "esc", "q":
		m.aborted = true
		m.finished = true
		return m, tea.Quit
	default:
		// Digits jump straight to an option, as in the numbered menu.
		if len(key.Runes) == 1 && key.Runes[0] >= '0' && key.Runes[0] <= '9' {
			if idx := int(key.Runes[0] - '0'); idx < len(m.options) {
				m.cursor = idx
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.finished {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, opt := range m.options {
		line := fmt.Sprintf("(%d) %s", i, opt)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓: move  Enter: select  Esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

func pick(in io.Reader, out io.Writer, title string, options []string) (int, error) {
	final, err := tea.NewProgram(newPicker(title, options), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return 0, err
	}

	m := final.(pickerModel)
	if m.aborted || m.chosen < 0 {
		return 0, ErrAborted
	}
	return m.chosen, nil
}
