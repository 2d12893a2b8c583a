package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/multiplayer"
)

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenOptions
	screenGame
	screenScoreboard
	screenAchievements
	screenLobby
	screenVersus
)

// sessionEventMsg carries one coordinator event into the Bubble Tea loop.
type sessionEventMsg struct {
	event multiplayer.SessionEvent
}

// sessionClosedMsg is delivered once the session's event channel closes.
type sessionClosedMsg struct{}

// listenCmd waits for the next coordinator event. Exactly one listenCmd is
// outstanding at a time; the session re-issues it after every event.
func listenCmd(events <-chan multiplayer.SessionEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionEventMsg{event: evt}
	}
}

// SessionModel manages one player's full flow: menu, options, game,
// scoreboard, achievements and, when a coordinator is attached, the
// head-to-head lobby and match.
type SessionModel struct {
	env     *Env
	config  core.RuntimeConfig
	session *multiplayer.ChannelSession // nil for local play
	screen  sessionScreen

	menu         MenuModel
	options      OptionsModel
	game         *Model
	scoreboard   ScoreboardModel
	achievements AchievementsModel
	lobby        OnlineLobbyModel
	versus       VersusModel

	quitting bool
}

// NewSessionModel creates a session. session may be nil when env has no
// coordinator.
func NewSessionModel(env *Env, cfg core.RuntimeConfig, session *multiplayer.ChannelSession) SessionModel {
	if cfg.TickRate <= 0 {
		cfg.TickRate = env.Config.Game.FPS
	}
	return SessionModel{
		env:     env,
		config:  cfg,
		session: session,
		menu:    NewMenuModel(env, cfg),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.session != nil {
		return tea.Batch(m.menu.Init(), listenCmd(m.session.Events()))
	}
	return m.menu.Init()
}

// Update routes messages to the active screen and switches screens when
// one finishes.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
	case sessionEventMsg:
		next, cmd := m.routeEvent(msg.event)
		return next, tea.Batch(cmd, listenCmd(m.session.Events()))
	case sessionClosedMsg:
		m.quitting = true
		return m, tea.Quit
	case TickMsg:
		if m.screen != screenGame {
			return m, nil
		}
	}

	switch m.screen {
	case screenOptions:
		return m.updateOptions(msg)
	case screenGame:
		return m.updateGame(msg)
	case screenScoreboard:
		return m.updateScoreboard(msg)
	case screenAchievements:
		return m.updateAchievements(msg)
	case screenLobby:
		return m.updateLobby(msg)
	case screenVersus:
		return m.updateVersus(msg)
	}
	return m.updateMenu(msg)
}

// routeEvent hands coordinator events to the online screens. Events that
// arrive after the player left them are dropped.
func (m SessionModel) routeEvent(evt multiplayer.SessionEvent) (SessionModel, tea.Cmd) {
	switch m.screen {
	case screenLobby:
		next, cmd := m.updateLobby(evt)
		return next.(SessionModel), cmd
	case screenVersus:
		next, cmd := m.updateVersus(evt)
		return next.(SessionModel), cmd
	}
	return m, nil
}

func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.menu = NewMenuModel(m.env, m.config)
	return m, m.menu.Init()
}

func (m SessionModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)

	if m.menu.IsQuitting() {
		return m.quit()
	}
	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}

	switch selected.Choice {
	case ChoicePlay:
		if selected.Mode == t2048.ModeDaily {
			return m.startGame(GameOptions{Mode: t2048.ModeDaily, Fresh: true})
		}
		opts, err := NewOptionsModel(m.env, selected.Mode, m.config.ScreenW, m.config.ScreenH)
		if err != nil {
			m.env.Logger.Error("cannot open options", "mode", selected.Mode, "err", err)
			return m.toMenu()
		}
		m.options = opts
		m.screen = screenOptions
		return m, m.options.Init()
	case ChoiceScoreboard:
		m.scoreboard = NewScoreboardModel(m.env, "", m.config.ScreenW, m.config.ScreenH)
		m.screen = screenScoreboard
		return m, m.scoreboard.Init()
	case ChoiceAchievements:
		m.achievements = NewAchievementsModel(m.env, m.config.ScreenW, m.config.ScreenH)
		m.screen = screenAchievements
		return m, m.achievements.Init()
	case ChoiceOnline:
		if m.session == nil {
			return m.toMenu()
		}
		m.lobby = NewOnlineLobbyModel(m.env, m.session.ID(), m.config.ScreenW, m.config.ScreenH)
		m.screen = screenLobby
		return m, m.lobby.Init()
	}
	return m.toMenu()
}

func (m SessionModel) updateOptions(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.options.Update(msg)
	m.options = next.(OptionsModel)

	switch {
	case m.options.IsQuitting():
		return m.quit()
	case m.options.WantsBack():
		return m.toMenu()
	}
	if opts := m.options.Selected(); opts != nil {
		return m.startGame(*opts)
	}
	return m, cmd
}

func (m SessionModel) startGame(opts GameOptions) (tea.Model, tea.Cmd) {
	cfg := m.config
	cfg.Seed = 0
	game, err := NewModel(m.env, opts, cfg)
	if errors.Is(err, ErrDailyCompleted) {
		next, cmd := m.toMenu()
		sm := next.(SessionModel)
		sm.menu = sm.menu.WithNotice("Today's challenge is done. Come back tomorrow!")
		return sm, cmd
	}
	if err != nil {
		m.env.Logger.Error("cannot start game", "mode", opts.Mode, "err", err)
		return m.toMenu()
	}
	m.game = &game
	m.screen = screenGame
	return m, m.game.Init()
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	game := next.(Model)
	m.game = &game

	switch {
	case m.game.IsQuitting():
		m.game.Close()
		return m.quit()
	case m.game.BackToMenu():
		m.game.Close()
		m.game = nil
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scoreboard.Update(msg)
	m.scoreboard = next.(ScoreboardModel)

	switch {
	case m.scoreboard.IsQuitting():
		return m.quit()
	case m.scoreboard.IsGoingBack():
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateAchievements(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.achievements.Update(msg)
	m.achievements = next.(AchievementsModel)

	switch {
	case m.achievements.IsQuitting():
		return m.quit()
	case m.achievements.IsGoingBack():
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateLobby(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.lobby.Update(msg)
	m.lobby = next.(OnlineLobbyModel)

	switch {
	case m.lobby.IsQuitting():
		return m.quit()
	case m.lobby.BackToMenu():
		return m.toMenu()
	case m.lobby.State() == OnlineStateInMatch:
		m.versus = NewVersusModel(m.env, m.session.ID(), m.lobby, m.config.ScreenW, m.config.ScreenH)
		m.screen = screenVersus
		return m, m.versus.Init()
	}
	return m, cmd
}

func (m SessionModel) updateVersus(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.versus.Update(msg)
	m.versus = next.(VersusModel)

	switch {
	case m.versus.IsQuitting():
		return m.quit()
	case m.versus.BackToMenu():
		return m.toMenu()
	}
	return m, cmd
}

// View renders the active screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenOptions:
		return m.options.View()
	case screenGame:
		return m.game.View()
	case screenScoreboard:
		return m.scoreboard.View()
	case screenAchievements:
		return m.achievements.View()
	case screenLobby:
		return m.lobby.View()
	case screenVersus:
		return m.versus.View()
	}
	return m.menu.View()
}

// RunSession runs the interactive flow in the local terminal.
func RunSession(env *Env, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(NewSessionModel(env, cfg, nil), tea.WithAltScreen())
	final, err := p.Run()
	if sm, ok := final.(SessionModel); ok && sm.game != nil {
		sm.game.Close()
	}
	return err
}
