package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/mergegrid/internal/achievements"
)

type achievementsKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Back key.Binding
	Quit key.Binding
}

func (k achievementsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Back, k.Quit}
}

func (k achievementsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var (
	unlockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// AchievementsModel lists the catalogue with the player's unlocks.
type AchievementsModel struct {
	tracker   *achievements.Tracker
	offset    int
	width     int
	height    int
	keys      achievementsKeyMap
	help      help.Model
	quitting  bool
	goingBack bool
}

// NewAchievementsModel creates the achievements screen.
func NewAchievementsModel(env *Env, width, height int) AchievementsModel {
	return AchievementsModel{
		tracker: env.Tracker,
		width:   width,
		height:  height,
		help:    help.New(),
		keys: achievementsKeyMap{
			Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "scroll up")),
			Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "scroll down")),
			Back: key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
			Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		},
	}
}

// Init initializes the model.
func (m AchievementsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m AchievementsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.offset > 0 {
				m.offset--
			}
		case key.Matches(msg, m.keys.Down):
			if m.offset < len(achievements.Catalogue)-m.visibleRows() {
				m.offset++
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.offset = 0
	}
	return m, nil
}

func (m AchievementsModel) visibleRows() int {
	return max(m.height-7, 1)
}

// View renders the list.
func (m AchievementsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	got, total := m.tracker.Progress()
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(fmt.Sprintf("ACHIEVEMENTS  %d/%d", got, total)), m.width))
	b.WriteString("\n\n")

	end := min(m.offset+m.visibleRows(), len(achievements.Catalogue))
	for _, a := range achievements.Catalogue[m.offset:end] {
		if at, ok := m.tracker.UnlockedAt(a.ID); ok {
			line := fmt.Sprintf("[x] %-18s %s", a.Title, a.Description)
			if !at.IsZero() {
				line += at.Format("  (Jan 02 2006)")
			}
			b.WriteString("  " + unlockedStyle.Render(line))
		} else {
			b.WriteString("  " + lockedStyle.Render(fmt.Sprintf("[ ] %-18s %s", a.Title, a.Description)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m AchievementsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m AchievementsModel) IsQuitting() bool {
	return m.quitting
}

// RunAchievements runs the achievements screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunAchievements(env *Env, width, height int) (bool, error) {
	p := tea.NewProgram(NewAchievementsModel(env, width, height), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(AchievementsModel)
	return ok && m.IsGoingBack(), nil
}
