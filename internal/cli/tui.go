package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/depscout/depscout/pkg/analysis"
)

// List styles.
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// conflictModel is the bubbletea model for browsing detected conflicts.
// The list shows one line per conflict; the pane below shows the
// selected conflict's message, hint and the corrected requirements.
type conflictModel struct {
	report *analysis.Report
	cursor int
	height int
	offset int
}

func newConflictModel(report *analysis.Report) conflictModel {
	return conflictModel{
		report: report,
		height: 10,
	}
}

func (m conflictModel) Init() tea.Cmd {
	return nil
}

func (m conflictModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.report.Conflicts)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 3 {
			m.height = 3
		}
	}
	return m, nil
}

func (m conflictModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Conflicts"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.report.Conflicts) {
		end = len(m.report.Conflicts)
	}

	for i := m.offset; i < end; i++ {
		c := m.report.Conflicts[i]
		line := string(c.Kind) + "  " + c.Package

		if i == m.cursor {
			b.WriteString("▸ " + listSelectedStyle.Render(line))
		} else {
			b.WriteString("  " + listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.cursor < len(m.report.Conflicts) {
		c := m.report.Conflicts[m.cursor]
		b.WriteString("\n")
		b.WriteString(StyleError.Render(c.Message))
		b.WriteString("\n")
		if c.Hint != "" {
			b.WriteString(StyleDim.Render(c.Hint))
			b.WriteString("\n")
		}
	}

	if len(m.report.Fixed) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleSuccess.Render("Corrected requirements"))
		b.WriteString("\n")
		for _, line := range m.report.Fixed {
			b.WriteString(listDimStyle.Render("  " + line))
			b.WriteString("\n")
		}
	}

	return b.String()
}
