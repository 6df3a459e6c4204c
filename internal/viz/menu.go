package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/threebody/internal/record"
)

// MenuItem is one selectable entry: a preset or a stored run.
type MenuItem struct {
	Name        string
	Description string
}

// Loader produces the series to play for a selected item.
type Loader func(name string) ([]record.Record, PlayerOptions, error)

const (
	stateMenu = iota
	stateLoading
	statePlay
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuIdleDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	menuErr      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

type loadedMsg struct {
	recs []record.Record
	opts PlayerOptions
	err  error
}

// Menu lists items and plays the selected one. Esc in the player returns to
// the list.
type Menu struct {
	title  string
	items  []MenuItem
	cursor int
	state  int
	load   Loader
	player Player
	err    error
}

func NewMenu(title string, items []MenuItem, load Loader) Menu {
	return Menu{title: title, items: items, load: load}
}

// RunMenu runs the menu full screen.
func RunMenu(title string, items []MenuItem, load Loader) error {
	_, err := tea.NewProgram(NewMenu(title, items, load), tea.WithAltScreen()).Run()
	return err
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.state, m.err = stateMenu, msg.err
			return m, nil
		}
		m.player = NewPlayer(msg.recs, msg.opts)
		m.state = statePlay
		return m, m.player.Init()
	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case statePlay:
			if msg.String() == "esc" {
				m.state = stateMenu
				return m, nil
			}
		}
	}

	if m.state == statePlay {
		next, cmd := m.player.Update(msg)
		m.player = next.(Player)
		return m, cmd
	}
	return m, nil
}

func (m Menu) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.items) == 0 {
			return m, nil
		}
		m.state, m.err = stateLoading, nil
		name, load := m.items[m.cursor].Name, m.load
		return m, func() tea.Msg {
			recs, opts, err := load(name)
			return loadedMsg{recs: recs, opts: opts, err: err}
		}
	}
	return m, nil
}

func (m Menu) View() string {
	switch m.state {
	case statePlay:
		return m.player.View()
	case stateLoading:
		return "\n\n    " + menuSub.Render("integrating "+m.items[m.cursor].Name+" ...") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.title)) + "\n    " +
		menuSub.Render("three-body problem, RK4") + "\n    " +
		menuSub.Render("─────────────────────────") + "\n\n")
	for i, it := range m.items {
		desc := it.Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"),
				menuSelected.Render(fmt.Sprintf("%-18s", it.Name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-18s", it.Name)), menuIdleDesc.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + menuErr.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuIdle.Render(" navigate  ") +
		menuKey.Render("enter") + menuIdle.Render(" play  ") +
		menuKey.Render("esc") + menuIdle.Render(" back  ") +
		menuKey.Render("q") + menuIdle.Render(" quit") + "\n")
	return b.String()
}
