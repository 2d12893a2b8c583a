package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
)

type optionRow int

const (
	rowSize optionRow = iota
	rowTimer
	rowContinue
	rowStart
)

// OptionsModel lets users choose grid size and timer before a game starts,
// and offers to continue a saved classic game.
type OptionsModel struct {
	env       *Env
	mode      t2048.Mode
	sizeIdx   int
	timerIdx  int
	cursor    int
	resume    *t2048.ResumeState
	width     int
	height    int
	keyMapper *KeyMapper
	selection GameOptions
	choosing  bool
	quitting  bool
	back      bool
}

// NewOptionsModel creates the options screen for mode.
func NewOptionsModel(env *Env, id t2048.ModeID, width, height int) (OptionsModel, error) {
	mode, err := env.Config.Mode(id)
	if err != nil {
		return OptionsModel{}, err
	}

	m := OptionsModel{
		env:       env,
		mode:      mode,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
		choosing:  true,
	}
	m.sizeIdx = max(slices.Index(t2048.SupportedSizes, env.Config.Game.GridSize), 0)
	m.timerIdx = slices.Index(t2048.TimerChoices, mode.TimerSeconds)
	if m.timerIdx < 0 {
		m.timerIdx = slices.Index(t2048.TimerChoices, t2048.DefaultTimerSeconds)
	}
	m.loadResume()
	return m, nil
}

func (m *OptionsModel) size() int {
	return t2048.SupportedSizes[m.sizeIdx]
}

func (m *OptionsModel) timer() int {
	if !m.mode.Timed() {
		return 0
	}
	return t2048.TimerChoices[m.timerIdx]
}

func (m *OptionsModel) loadResume() {
	m.resume = nil
	if st, ok := LoadResume(m.env.Profile, m.mode, m.size()); ok {
		m.resume = &st
	}
}

// rows lists the visible rows in display order.
func (m OptionsModel) rows() []optionRow {
	rows := []optionRow{rowSize}
	if m.mode.Timed() {
		rows = append(rows, rowTimer)
	}
	if m.resume != nil {
		rows = append(rows, rowContinue)
	}
	return append(rows, rowStart)
}

// Init initializes the model.
func (m OptionsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m OptionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m OptionsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	row := rows[m.cursor]

	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionBack:
		m.back = true
		return m, tea.Quit
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case MenuActionDown:
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case MenuActionLeft:
		m.adjust(row, -1)
	case MenuActionRight:
		m.adjust(row, 1)
	case MenuActionSelect:
		switch row {
		case rowContinue:
			return m.choose(false)
		case rowStart:
			return m.choose(true)
		default:
			m.cursor++
		}
	}
	return m, nil
}

func (m *OptionsModel) adjust(row optionRow, delta int) {
	switch row {
	case rowSize:
		n := len(t2048.SupportedSizes)
		m.sizeIdx = (m.sizeIdx + delta + n) % n
		m.loadResume()
	case rowTimer:
		n := len(t2048.TimerChoices)
		m.timerIdx = (m.timerIdx + delta + n) % n
	}
}

func (m OptionsModel) choose(fresh bool) (tea.Model, tea.Cmd) {
	m.choosing = false
	m.selection = GameOptions{
		Mode:         m.mode.ID,
		GridSize:     m.size(),
		TimerSeconds: m.timer(),
		Fresh:        fresh,
	}
	return m, tea.Quit
}

// View renders the options.
func (m OptionsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(strings.ToUpper(m.mode.Title)), m.width))
	b.WriteString("\n\n")

	for i, row := range m.rows() {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(cursor+m.rowLabel(row), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(hintStyle.Render("Left/Right: Change  |  Enter: Select  |  Esc: Back  |  Q: Quit"), m.width))
	return b.String()
}

func (m OptionsModel) rowLabel(row optionRow) string {
	switch row {
	case rowSize:
		return fmt.Sprintf("Grid:  < %dx%d >", m.size(), m.size())
	case rowTimer:
		return fmt.Sprintf("Timer: < %ds >", m.timer())
	case rowContinue:
		return fmt.Sprintf("Continue saved game (score %d)", m.resume.Score)
	}
	if m.mode.ID == t2048.ModeVersus {
		return "Host lobby"
	}
	return "New game"
}

// Selected returns the selection, or nil if still choosing.
func (m OptionsModel) Selected() *GameOptions {
	if m.choosing {
		return nil
	}
	return &m.selection
}

// IsQuitting returns true if user wants to quit.
func (m OptionsModel) IsQuitting() bool {
	return m.quitting
}

// WantsBack returns true if user pressed back.
func (m OptionsModel) WantsBack() bool {
	return m.back
}

// RunOptions runs the options screen for mode and returns the selection,
// or nil when the player backed out.
func RunOptions(env *Env, id t2048.ModeID, cfg core.RuntimeConfig) (*GameOptions, bool, error) {
	model, err := NewOptionsModel(env, id, cfg.ScreenW, cfg.ScreenH)
	if err != nil {
		return nil, false, err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, false, err
	}

	m, ok := final.(OptionsModel)
	if !ok || m.IsQuitting() {
		return nil, true, nil
	}
	return m.Selected(), false, nil
}
