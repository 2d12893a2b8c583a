package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/multiplayer"
)

// OnlineState represents the current state of the online matchmaking flow.
type OnlineState int

const (
	OnlineStateChooseMode    OnlineState = iota // Choose Host or Join
	OnlineStateHostSetup                        // Picking grid size and timer
	OnlineStateHostWaiting                      // Hosting, waiting for joiner
	OnlineStateJoinEnterCode                    // Entering join code
	OnlineStateJoinWaiting                      // Waiting to connect to host
	OnlineStateInMatch                          // Match has started
)

// OnlineLobbyModel handles the online matchmaking flow. Coordinator events
// are delivered to Update by the owning session.
type OnlineLobbyModel struct {
	state       OnlineState
	width       int
	height      int
	keyMapper   *KeyMapper
	sessionID   multiplayer.SessionID
	coordinator *multiplayer.Coordinator

	// Host state
	sizeIdx   int
	timerIdx  int
	setupRow  int
	lobbyCode string
	opponent  string
	settings  multiplayer.LobbySettings

	// Join state
	joinCodeInput string
	joinError     string

	// Match state
	matchID multiplayer.MatchID
	side    core.PlayerID

	backToMenu bool
	quitting   bool
}

// NewOnlineLobbyModel creates a new online lobby model.
func NewOnlineLobbyModel(env *Env, sessionID multiplayer.SessionID, width, height int) OnlineLobbyModel {
	m := OnlineLobbyModel{
		state:       OnlineStateChooseMode,
		width:       width,
		height:      height,
		keyMapper:   NewKeyMapper(),
		sessionID:   sessionID,
		coordinator: env.Coordinator,
	}
	m.sizeIdx = max(slices.Index(t2048.SupportedSizes, env.Config.Game.GridSize), 0)
	m.timerIdx = slices.Index(t2048.TimerChoices, env.Config.Modes.VersusSeconds)
	if m.timerIdx < 0 {
		m.timerIdx = slices.Index(t2048.TimerChoices, t2048.DefaultTimerSeconds)
	}
	return m
}

// Init initializes the lobby model.
func (m OnlineLobbyModel) Init() tea.Cmd {
	return nil
}

func (m OnlineLobbyModel) hostSettings() multiplayer.LobbySettings {
	return multiplayer.LobbySettings{
		GridSize:     t2048.SupportedSizes[m.sizeIdx],
		TimerSeconds: t2048.TimerChoices[m.timerIdx],
	}
}

// Update handles messages.
func (m OnlineLobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case multiplayer.LobbyCreatedEvent:
		m.lobbyCode = msg.Code
		m.settings = msg.Settings
		m.state = OnlineStateHostWaiting
	case multiplayer.LobbyJoinedEvent:
		m.side = msg.Side
		m.opponent = msg.OpponentName
		m.settings = msg.Settings
	case multiplayer.LobbyErrorEvent:
		m.joinError = msg.Message
		if m.state == OnlineStateJoinWaiting {
			m.state = OnlineStateJoinEnterCode
		}
	case multiplayer.LobbyPlayerLeftEvent:
		m.opponent = ""
		if m.state == OnlineStateJoinWaiting {
			m.joinError = "Host closed the lobby"
			m.state = OnlineStateJoinEnterCode
		}
	case multiplayer.MatchStartedEvent:
		m.matchID = msg.MatchID
		m.side = msg.Side
		m.settings = msg.Settings
		m.state = OnlineStateInMatch
	}
	return m, nil
}

func (m OnlineLobbyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.handleChooseModeKey(msg)
	case OnlineStateHostSetup:
		return m.handleHostSetupKey(msg)
	case OnlineStateHostWaiting, OnlineStateJoinWaiting:
		return m.handleWaitingKey(msg)
	case OnlineStateJoinEnterCode:
		return m.handleJoinCodeKey(msg)
	}
	return m, nil
}

func (m OnlineLobbyModel) handleChooseModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "H", "1":
		m.state = OnlineStateHostSetup
		m.setupRow = 0
	case "j", "J", "2":
		m.state = OnlineStateJoinEnterCode
		m.joinCodeInput = ""
		m.joinError = ""
	case "esc", "b":
		m.backToMenu = true
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m OnlineLobbyModel) handleHostSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionUp, MenuActionDown:
		m.setupRow = 1 - m.setupRow
	case MenuActionLeft:
		m.cycle(-1)
	case MenuActionRight:
		m.cycle(1)
	case MenuActionSelect:
		m.coordinator.Send(multiplayer.CreateLobbyMsg{
			SessionID: m.sessionID,
			GameID:    t2048.VersusGameID,
			Settings:  m.hostSettings(),
		})
	case MenuActionBack:
		m.state = OnlineStateChooseMode
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *OnlineLobbyModel) cycle(delta int) {
	if m.setupRow == 0 {
		n := len(t2048.SupportedSizes)
		m.sizeIdx = (m.sizeIdx + delta + n) % n
		return
	}
	n := len(t2048.TimerChoices)
	m.timerIdx = (m.timerIdx + delta + n) % n
}

func (m OnlineLobbyModel) handleWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.leave()
		if m.state == OnlineStateJoinWaiting {
			m.state = OnlineStateJoinEnterCode
			return m, nil
		}
		m.backToMenu = true
	case "q":
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// leave withdraws from whatever lobby this session is in.
func (m *OnlineLobbyModel) leave() {
	switch m.state {
	case OnlineStateHostWaiting:
		m.coordinator.Send(multiplayer.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
	case OnlineStateJoinWaiting:
		m.coordinator.Send(multiplayer.LeaveLobbyMsg{SessionID: m.sessionID, Code: m.joinCodeInput})
	}
}

func (m OnlineLobbyModel) handleJoinCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		m.state = OnlineStateChooseMode
		return m, nil
	case "enter":
		code := multiplayer.NormalizeCode(m.joinCodeInput)
		if !multiplayer.ValidCode(code) {
			m.joinError = fmt.Sprintf("Codes are %d characters", multiplayer.JoinCodeLength)
			return m, nil
		}
		m.joinCodeInput = code
		m.state = OnlineStateJoinWaiting
		m.joinError = ""
		m.coordinator.Send(multiplayer.JoinLobbyMsg{SessionID: m.sessionID, Code: code})
	case "backspace":
		if m.joinCodeInput != "" {
			m.joinCodeInput = m.joinCodeInput[:len(m.joinCodeInput)-1]
		}
	default:
		if len(key) == 1 && len(m.joinCodeInput) < multiplayer.JoinCodeLength {
			c := strings.ToUpper(key)
			if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '0' && c[0] <= '9') {
				m.joinCodeInput += c
			}
		}
	}
	return m, nil
}

// View renders the current state.
func (m OnlineLobbyModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.viewChooseMode()
	case OnlineStateHostSetup:
		return m.viewHostSetup()
	case OnlineStateHostWaiting:
		return m.viewHostWaiting()
	case OnlineStateJoinEnterCode:
		return m.viewJoinEnterCode()
	case OnlineStateJoinWaiting:
		return m.viewJoinWaiting()
	}
	return ""
}

func (m OnlineLobbyModel) lines(title string, body ...string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")
	for _, line := range body {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m OnlineLobbyModel) viewChooseMode() string {
	return m.lines("HEAD TO HEAD",
		"Race an opponent on the same board for the highest score.",
		"",
		"[H] Host a game",
		"[J] Join a game",
		"",
		hintStyle.Render("Esc: Back  |  Q: Quit"),
	)
}

func (m OnlineLobbyModel) viewHostSetup() string {
	s := m.hostSettings()
	rows := []string{
		fmt.Sprintf("Grid:  < %dx%d >", s.GridSize, s.GridSize),
		fmt.Sprintf("Timer: < %ds >", s.TimerSeconds),
	}
	for i := range rows {
		if i == m.setupRow {
			rows[i] = "> " + rows[i]
		} else {
			rows[i] = "  " + rows[i]
		}
	}
	body := append(rows, "", hintStyle.Render("Left/Right: Change  |  Enter: Create lobby  |  Esc: Back"))
	return m.lines("HOST A GAME", body...)
}

func (m OnlineLobbyModel) viewHostWaiting() string {
	status := "Waiting for player to join..."
	if m.opponent != "" {
		status = fmt.Sprintf("%s joined, starting...", m.opponent)
	}
	return m.lines("HOSTING GAME",
		"Share this code with your opponent:",
		"",
		titleStyle.Render(fmt.Sprintf("[ %s ]", m.lobbyCode)),
		"",
		fmt.Sprintf("%dx%d grid, %ds", m.settings.GridSize, m.settings.GridSize, m.settings.TimerSeconds),
		status,
		"",
		hintStyle.Render("Esc: Cancel  |  Q: Quit"),
	)
}

func (m OnlineLobbyModel) viewJoinEnterCode() string {
	code := m.joinCodeInput
	if len(code) < multiplayer.JoinCodeLength {
		code += "_" + strings.Repeat(" ", multiplayer.JoinCodeLength-1-len(code))
	}
	body := []string{"Enter the game code:", "", fmt.Sprintf("[ %s ]", code)}
	if m.joinError != "" {
		body = append(body, "", errorStyle.Render("Error: "+m.joinError))
	}
	body = append(body, "", hintStyle.Render("Enter: Connect  |  Esc: Back"))
	return m.lines("JOIN GAME", body...)
}

func (m OnlineLobbyModel) viewJoinWaiting() string {
	return m.lines("CONNECTING",
		fmt.Sprintf("Joining game: %s", m.joinCodeInput),
		"",
		"Please wait...",
		"",
		hintStyle.Render("Esc: Cancel"),
	)
}

// State returns the current online state.
func (m OnlineLobbyModel) State() OnlineState {
	return m.state
}

// BackToMenu returns true if user wants to go back to menu.
func (m OnlineLobbyModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if user wants to quit entirely.
func (m OnlineLobbyModel) IsQuitting() bool {
	return m.quitting
}

// MatchID returns the match ID if a match was started.
func (m OnlineLobbyModel) MatchID() multiplayer.MatchID {
	return m.matchID
}

// Side returns which side (P1/P2) this session plays.
func (m OnlineLobbyModel) Side() core.PlayerID {
	return m.side
}

// Settings returns the grid size and timer of the match.
func (m OnlineLobbyModel) Settings() multiplayer.LobbySettings {
	return m.settings
}

// Opponent returns the opponent's name once known.
func (m OnlineLobbyModel) Opponent() string {
	return m.opponent
}
