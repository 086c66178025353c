// Package tui is an interactive picker: type to filter listening ports,
// enter to kill the selected owner.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/productdevbook/portkiller/internal/killer"
	"github.com/productdevbook/portkiller/internal/query"
	"github.com/productdevbook/portkiller/internal/scanner"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// PortSource is a cached scanner that can be told to forget its results
type PortSource interface {
	scanner.Scanner
	Invalidate()
}

// Options configure the picker
type Options struct {
	IncludeSystem bool
	Method        killer.Method
	// Favorite marks ports in the list, may be nil
	Favorite func(port int) bool
}

type scanMsg struct {
	query string
	ports []scanner.Port
}

type killMsg struct {
	outcome killer.Outcome
	port    scanner.Port
}

// Model is the bubbletea model of the picker
type Model struct {
	source PortSource
	term   *killer.Terminator
	opts   Options

	input   textinput.Model
	results []scanner.Port
	cursor  int
	loaded  bool

	status   string
	statusOK bool
}

// New returns a picker reading ports from source and killing through term
func New(source PortSource, term *killer.Terminator, opts Options) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "port, process or protocol"
	input.Focus()

	return Model{
		source: source,
		term:   term,
		opts:   opts,
		input:  input,
	}
}

// Run starts the picker on the terminal
func Run(source PortSource, term *killer.Terminator, opts Options) error {
	_, err := tea.NewProgram(New(source, term, opts)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.scan())
}

// scan filters through the cache, so typing does not rescan the OS each keystroke
func (m Model) scan() tea.Cmd {
	q := m.input.Value()
	source, includeSystem := m.source, m.opts.IncludeSystem
	return func() tea.Msg {
		ports := source.Scan(context.Background(), includeSystem)
		return scanMsg{query: q, ports: query.Apply(ports, q)}
	}
}

func (m Model) kill(p scanner.Port) tea.Cmd {
	term, method := m.term, m.opts.Method
	return func() tea.Msg {
		return killMsg{outcome: term.Terminate(context.Background(), p.PID, method), port: p}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if len(m.results) == 0 {
				return m, nil
			}
			return m, m.kill(m.results[m.cursor])
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			return m, tea.Batch(cmd, m.scan())
		}
		return m, cmd

	case scanMsg:
		// Drop results for a query the user already typed past
		if msg.query != m.input.Value() {
			return m, nil
		}
		m.results = msg.ports
		m.loaded = true
		if m.cursor >= len(m.results) {
			m.cursor = max(len(m.results)-1, 0)
		}
		return m, nil

	case killMsg:
		name := msg.port.Process
		if msg.outcome.Success {
			m.status = fmt.Sprintf("✓ Killed %s, port %d is free", name, msg.port.Port)
		} else {
			m.status = fmt.Sprintf("✗ Failed to kill %s: %s", name, msg.outcome.Message)
		}
		m.statusOK = msg.outcome.Success
		m.source.Invalidate()
		return m, m.scan()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("portkiller"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s on enter", m.opts.Method)))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case !m.loaded:
		b.WriteString(dimStyle.Render("Scanning ports..."))
		b.WriteString("\n")
	case len(m.results) == 0:
		b.WriteString("No active ports found\n")
		b.WriteString(dimStyle.Render("No processes using network ports match your query"))
		b.WriteString("\n")
	default:
		for i, p := range m.results {
			b.WriteString(m.renderPort(i, p))
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusOK {
			b.WriteString(okStyle.Render(m.status))
		} else {
			b.WriteString(errStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ select • enter kill • esc quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderPort(i int, p scanner.Port) string {
	marker := " "
	if m.opts.Favorite != nil && m.opts.Favorite(p.Port) {
		marker = "*"
	}

	name := fmt.Sprintf("%s Port %d/%s - %s (PID: %d)", marker, p.Port, p.Protocol, p.Process, p.PID)
	desc := dimStyle.Render("Local: " + p.LocalAddress)

	if i == m.cursor {
		return selectedStyle.Render("› "+name) + "  " + desc + "\n"
	}
	return "  " + name + "  " + desc + "\n"
}
