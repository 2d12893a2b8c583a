package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/multiplayer"
)

// VersusModel shows a running head-to-head match. Input goes to the
// coordinator; the board only changes when a snapshot arrives.
type VersusModel struct {
	coordinator *multiplayer.Coordinator
	sessionID   multiplayer.SessionID
	matchID     multiplayer.MatchID
	side        core.PlayerID
	opponent    string
	settings    multiplayer.LobbySettings
	keyMapper   *KeyMapper
	screen      *core.Screen
	width       int
	height      int

	snapshot *t2048.VersusSnapshot
	ended    *multiplayer.MatchEndedEvent
	waiting  bool // asked for a rematch
	pending  bool // opponent asked for a rematch

	backToMenu bool
	quitting   bool
}

// NewVersusModel creates the match view from a started lobby.
func NewVersusModel(env *Env, sessionID multiplayer.SessionID, lobby OnlineLobbyModel, width, height int) VersusModel {
	return VersusModel{
		coordinator: env.Coordinator,
		sessionID:   sessionID,
		matchID:     lobby.MatchID(),
		side:        lobby.Side(),
		opponent:    lobby.Opponent(),
		settings:    lobby.Settings(),
		keyMapper:   NewKeyMapper(),
		screen:      core.NewScreen(width, height),
		width:       width,
		height:      height,
	}
}

// Init initializes the model.
func (m VersusModel) Init() tea.Cmd {
	return nil
}

// Update handles keys and coordinator events.
func (m VersusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
	case multiplayer.SnapshotEvent:
		if msg.MatchID != m.matchID {
			return m, nil
		}
		if snap, ok := msg.Snapshot.(t2048.VersusSnapshot); ok {
			m.snapshot = &snap
		}
	case multiplayer.MatchEndedEvent:
		if msg.MatchID == m.matchID {
			m.ended = &msg
		}
	case multiplayer.RematchPendingEvent:
		m.pending = true
	case multiplayer.MatchStartedEvent:
		m.matchID = msg.MatchID
		m.side = msg.Side
		m.settings = msg.Settings
		m.snapshot = nil
		m.ended = nil
		m.waiting = false
		m.pending = false
	}
	return m, nil
}

func (m VersusModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	if m.ended != nil {
		switch action {
		case core.ActionRestart, core.ActionConfirm:
			if !m.waiting {
				m.waiting = true
				m.coordinator.Send(multiplayer.ReadyForRematchMsg{SessionID: m.sessionID, MatchID: m.matchID})
			}
		case core.ActionBack:
			m.backToMenu = true
		}
		return m, nil
	}

	switch action {
	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		frame := core.NewInputFrame()
		frame.Set(action)
		m.coordinator.Send(multiplayer.PlayerInputMsg{MatchID: m.matchID, Player: m.side, Input: frame})
	case core.ActionBack:
		m.leave()
		m.backToMenu = true
	}
	return m, nil
}

// leave forfeits a running match.
func (m VersusModel) leave() {
	if m.ended == nil {
		m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
	}
}

// View renders the boards and the result once the match is over.
func (m VersusModel) View() string {
	if m.quitting {
		return ""
	}
	if m.snapshot == nil {
		line := fmt.Sprintf("Match starting on a %dx%d grid...", m.settings.GridSize, m.settings.GridSize)
		if m.opponent != "" {
			line = fmt.Sprintf("Playing %s on a %dx%d grid...", m.opponent, m.settings.GridSize, m.settings.GridSize)
		}
		return "\n" + centerText(line, m.width)
	}

	t2048.RenderVersus(m.screen, *m.snapshot, m.side)
	view := RenderScreen(m.screen)
	if m.ended != nil {
		view = overlayBottom(view, toastStyle.Render(m.resultText()), m.width)
	}
	return view
}

func (m VersusModel) resultText() string {
	e := m.ended
	mine, theirs := e.Score1, e.Score2
	if m.side == core.Player2 {
		mine, theirs = theirs, mine
	}

	headline := "Draw"
	switch e.Winner {
	case m.side:
		headline = "You win!"
	case m.side.Other():
		headline = "You lose"
	}
	if e.Reason != multiplayer.MatchEndReasonCompleted {
		headline += " - " + e.Reason.String()
	}

	prompt := "R: Rematch  |  B: Menu"
	switch {
	case m.waiting:
		prompt = "Waiting for opponent..."
	case m.pending:
		prompt = "Opponent wants a rematch! R: Accept  |  B: Menu"
	}
	return fmt.Sprintf("%s\n%d - %d\n%s", headline, mine, theirs, prompt)
}

// BackToMenu returns true if user requested to go back to menu.
func (m VersusModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if user requested to quit entirely.
func (m VersusModel) IsQuitting() bool {
	return m.quitting
}
