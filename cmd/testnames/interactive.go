package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/testnames/internal/report"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Top, k.Bottom, k.Quit, k.Help},
	}
}

var defaultKeyMap = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("^/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("v/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	tuiHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	tuiBorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	childStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// maxMessage is the message column width in the TUI tables.
const maxMessage = 50

// checkModel is the Bubble Tea model for browsing check results.
type checkModel struct {
	rep      *report.JSONReport
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	content  string
}

func newCheckModel(rep *report.JSONReport) checkModel {
	return checkModel{
		rep:     rep,
		help:    help.New(),
		keys:    defaultKeyMap,
		content: renderCheckContent(rep),
	}
}

func renderCheckContent(rep *report.JSONReport) string {
	var sb strings.Builder
	if rep == nil {
		rep = report.New(nil, version, 0)
	}

	sb.WriteString(titleStyle.Render(
		fmt.Sprintf("testnames: %d class(es), %d test case(s), %d complaint(s)",
			rep.Summary.Classes, rep.Summary.Cases, rep.Summary.Complaints)))
	sb.WriteString("\n\n")

	for _, c := range rep.Classes {
		sb.WriteString(tuiHeaderStyle.Render(fmt.Sprintf("=== %s ===", c.Name)))
		sb.WriteString("\n")
		sb.WriteString(statusStyle.Render(fmt.Sprintf("    %s", c.Path)))
		sb.WriteString("\n")

		if len(c.Complaints) == 0 {
			sb.WriteString(statusStyle.Render("    No complaints."))
			sb.WriteString("\n\n")
			continue
		}

		var rows [][]string
		var flatten func(cs []report.ComplaintReport, depth int)
		flatten = func(cs []report.ComplaintReport, depth int) {
			for _, cr := range cs {
				rule := cr.Rule
				if depth > 0 {
					rule = strings.Repeat("  ", depth-1) + "└ " + rule
				}
				rows = append(rows, []string{rule, cr.Location, report.Truncate(cr.Message, maxMessage)})
				flatten(cr.Children, depth+1)
			}
		}
		flatten(c.Complaints, 0)

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(tuiBorderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return tuiHeaderStyle
				}
				if col == 0 && row >= 0 && row < len(rows) {
					if strings.Contains(rows[row][0], "└") {
						return childStyle
					}
					return ruleStyle
				}
				return lipgloss.NewStyle()
			}).
			Headers("RULE", "LOCATION", "MESSAGE").
			Rows(rows...)

		sb.WriteString(t.String())
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func (m checkModel) Init() tea.Cmd {
	return nil
}

func (m checkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m checkModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := statusStyle.Render(
		fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)

	return m.viewport.View() + "\n" + footer
}

// runInteractiveCheck launches the Bubble Tea TUI for browsing
// check results.
func runInteractiveCheck(rep *report.JSONReport) error {
	p := tea.NewProgram(newCheckModel(rep), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
