// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/search/orchestrator"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	styleInput    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("0")).Padding(0, 1)
	styleResult   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	styleHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleStatus   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newInteractiveCommand(orc *orchestrator.Orchestrator) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Launch an interactive search REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			program := tea.NewProgram(newReplModel(orc), tea.WithAltScreen())
			_, err := program.Run()
			return err
		},
	}
}

type replResult struct {
	Title  string
	URL    string
	Engine string
}

type replSearchDoneMsg struct {
	results []replResult
	err     error
}

type replModel struct {
	orc           *orchestrator.Orchestrator
	query         string
	results       []replResult
	selected      int
	loading       bool
	lastErr       error
	quitting      bool
	terminalWidth int
}

func newReplModel(orc *orchestrator.Orchestrator) replModel {
	return replModel{orc: orc}
}

func (m replModel) Init() tea.Cmd { return nil }

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.query == "" || len(m.results) > 0 {
				m.quitting = true
				return m, tea.Quit
			}
			m.query = ""
			m.results = nil
			return m, nil

		case "enter":
			if m.query != "" && !m.loading {
				m.loading = true
				return m, m.runSearch()
			}

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.results)-1 {
				m.selected++
			}

		case "backspace":
			if len(m.query) > 0 {
				m.query = m.query[:len(m.query)-1]
			}

		case "esc":
			m.query = ""
			m.results = nil
			m.lastErr = nil

		default:
			if len(msg.String()) == 1 {
				m.query += msg.String()
			}
		}

	case tea.WindowSizeMsg:
		m.terminalWidth = msg.Width

	case replSearchDoneMsg:
		m.loading = false
		m.results = msg.results
		m.lastErr = msg.err
		m.selected = 0
	}

	return m, nil
}

func (m replModel) runSearch() tea.Cmd {
	query := m.query
	orc := m.orc
	return func() tea.Msg {
		q := model.DefaultSearchQuery()
		q.Query = query
		resp, err := orc.Search(context.Background(), q)
		if err != nil {
			return replSearchDoneMsg{err: err}
		}
		results := make([]replResult, 0, len(resp.Results))
		for _, item := range resp.Results {
			results = append(results, replResult{Title: item.Title, URL: item.URL, Engine: item.Engine})
		}
		return replSearchDoneMsg{results: results}
	}
}

func (m replModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("seesea") + "\n\n")
	b.WriteString("search: ")
	b.WriteString(styleInput.Render(m.query + "_"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(styleStatus.Render("searching...") + "\n\n")
	} else if m.lastErr != nil {
		b.WriteString(styleError.Render("error: "+m.lastErr.Error()) + "\n\n")
	}

	if len(m.results) > 0 {
		b.WriteString(fmt.Sprintf("%d results\n", len(m.results)))
		for i, r := range m.results {
			line := fmt.Sprintf("  %s [%s] %s", r.Title, r.Engine, r.URL)
			if m.terminalWidth > 10 && len(line) > m.terminalWidth-2 {
				line = line[:m.terminalWidth-5] + "..."
			}
			if i == m.selected {
				b.WriteString(styleSelected.Render("> "+line) + "\n")
			} else {
				b.WriteString(styleResult.Render("  "+line) + "\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(styleHelp.Render("q: quit | enter: search | esc: clear | j/k: navigate"))
	return b.String()
}
