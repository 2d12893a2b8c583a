// Package tui provides the Bubble Tea front end for MergeGrid.
// It handles the terminal UI loop, input mapping, and screen flow.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
)

// MenuChoice is what the player picked on the main menu.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceScoreboard
	ChoiceAchievements
	ChoiceOnline
)

// MenuItem represents a selectable line in the menu.
type MenuItem struct {
	Choice MenuChoice
	Mode   t2048.ModeID
	Title  string
	Detail string
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	env       *Env
	items     []MenuItem
	cursor    int
	width     int
	height    int
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	quitting  bool
	selected  *MenuItem
	notice    string
	now       func() time.Time
}

// NewMenuModel creates a new menu model.
func NewMenuModel(env *Env, cfg core.RuntimeConfig) MenuModel {
	m := MenuModel{
		env:       env,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
		now:       time.Now,
	}
	m.items = m.buildItems()
	return m
}

func (m MenuModel) buildItems() []MenuItem {
	items := make([]MenuItem, 0, len(t2048.ModeIDs)+2)
	for _, id := range t2048.ModeIDs {
		mode := t2048.MustMode(id)
		item := MenuItem{Choice: ChoicePlay, Mode: id, Title: mode.Title}
		switch id {
		case t2048.ModeTimeAttack:
			item.Detail = "race the clock"
		case t2048.ModeDaily:
			item.Detail = m.dailyDetail()
		case t2048.ModeVersus:
			if !m.env.Online() {
				continue
			}
			item.Choice = ChoiceOnline
			item.Detail = "online"
		}
		items = append(items, item)
	}
	items = append(items,
		MenuItem{Choice: ChoiceScoreboard, Title: "High Scores"},
		MenuItem{Choice: ChoiceAchievements, Title: "Achievements", Detail: m.achievementDetail()},
	)
	return items
}

func (m MenuModel) dailyDetail() string {
	d := t2048.DailyFor(m.now())
	detail := fmt.Sprintf("%dx%d, target %d", d.GridSize, d.GridSize, d.TargetScore)
	if m.env.Profile == nil {
		return detail
	}
	if r, err := m.env.Profile.DailyCompleted(d.Date); err == nil && r != nil {
		detail += fmt.Sprintf(", done (%d)", r.Score)
	}
	return detail
}

func (m MenuModel) achievementDetail() string {
	got, total := m.env.Tracker.Progress()
	return fmt.Sprintf("%d/%d", got, total)
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}

	case MenuActionScoreboard:
		m.selected = &MenuItem{Choice: ChoiceScoreboard}
		return m, tea.Quit

	case MenuActionAchievements:
		m.selected = &MenuItem{Choice: ChoiceAchievements}
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("M E R G E G R I D"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("Playing as %s", m.env.Player), m.width))
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(centerText(errorStyle.Render(m.notice), m.width))
		b.WriteString("\n\n")
	}

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := cursor + item.Title
		if item.Detail != "" {
			line += hintStyle.Render(" (" + item.Detail + ")")
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(hintStyle.Render("Up/Down: Navigate  |  Enter: Select  |  Tab: Scores  |  T: Achievements  |  Q: Quit"), m.width))
	b.WriteString("\n")

	return b.String()
}

// WithNotice returns the menu showing a one-line message above the items.
func (m MenuModel) WithNotice(msg string) MenuModel {
	m.notice = msg
	return m
}

// Notice returns the message shown above the items.
func (m MenuModel) Notice() string {
	return m.notice
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}
