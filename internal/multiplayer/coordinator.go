package multiplayer

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergegrid/internal/core"
)

// joinCodeAlphabet leaves out characters that are easy to misread (0/O, 1/I).
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the number of characters in a lobby code.
const JoinCodeLength = 6

// Lobby represents a waiting room for a match.
type Lobby struct {
	Code      string
	GameID    string
	Settings  LobbySettings
	Host      SessionHandle
	Joiner    SessionHandle
	CreatedAt time.Time
}

// finishedMatch remembers the players of an ended match so they can
// agree on a rematch.
type finishedMatch struct {
	code     string
	gameID   string
	settings LobbySettings
	player1  SessionHandle
	player2  SessionHandle
	ready    map[SessionID]bool
	endedAt  time.Time
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // How long before an empty lobby or rematch offer expires
	TickRate      int           // Game tick rate (Hz)
	CleanupPeriod time.Duration // How often to clean up expired lobbies
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  2 * time.Minute,
		TickRate:      60,
		CleanupPeriod: 30 * time.Second,
	}
}

// GameFactory creates game instances for matches. Lobby settings arrive
// through cfg.GridSize and cfg.TimerSeconds.
type GameFactory func(gameID string, cfg core.RuntimeConfig) (OnlineGame, error)

// MatchResultSaver is an interface for saving match results.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID        string
	GameID         string
	GridSize       int
	Player1Session string
	Player2Session string
	Score1         int
	Score2         int
	WinnerSession  string
	EndReason      string
	DurationSecs   int
}

// Coordinator manages lobbies and active matches.
type Coordinator struct {
	config      CoordinatorConfig
	gameFactory GameFactory
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // Optional, can be nil
	logger      *log.Logger

	mu       sync.RWMutex
	lobbies  map[string]*Lobby          // code -> lobby
	matches  map[MatchID]*OnlineMatch   // matchID -> match
	finished map[MatchID]*finishedMatch // ended matches awaiting a rematch
	settings map[MatchID]LobbySettings  // settings of running matches

	// Track which session is in which lobby/match
	sessionLobby map[SessionID]string  // sessionID -> lobby code
	sessionMatch map[SessionID]MatchID // sessionID -> matchID

	// Message channel for async processing
	msgChan chan CoordinatorMessage
	done    chan struct{}
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, factory GameFactory, sessions *SessionRegistry) *Coordinator {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	c := &Coordinator{
		config:       cfg,
		gameFactory:  factory,
		sessions:     sessions,
		logger:       log.Default(),
		lobbies:      make(map[string]*Lobby),
		matches:      make(map[MatchID]*OnlineMatch),
		finished:     make(map[MatchID]*finishedMatch),
		settings:     make(map[MatchID]LobbySettings),
		sessionLobby: make(map[SessionID]string),
		sessionMatch: make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
	return c
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetLogger replaces the logger used for background failures.
func (c *Coordinator) SetLogger(logger *log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	if c.config.CleanupPeriod > 0 {
		go c.cleanupLoop()
	}
}

// Stop shuts down the coordinator and every running match.
func (c *Coordinator) Stop() {
	close(c.done)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.matches {
		m.Stop()
	}
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// processMessages handles incoming messages.
func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case CancelLobbyMsg:
		c.handleCancelLobby(m)
	case LeaveLobbyMsg:
		c.handleLeaveLobby(m)
	case LeaveMatchMsg:
		c.handleLeaveMatch(m)
	case PlayerInputMsg:
		c.handlePlayerInput(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	case ReadyForRematchMsg:
		c.handleReadyForRematch(m)
	}
}

// busy reports whether a session is already waiting in a lobby or playing.
// Must be called with lock held.
func (c *Coordinator) busy(id SessionID) bool {
	_, inLobby := c.sessionLobby[id]
	_, inMatch := c.sessionMatch[id]
	return inLobby || inMatch
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	if c.busy(msg.SessionID) {
		c.mu.Unlock()
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}
	c.dropRematchOffers(msg.SessionID)

	code := c.generateUniqueCode()
	lobby := &Lobby{
		Code:      code,
		GameID:    msg.GameID,
		Settings:  msg.Settings,
		Host:      session,
		CreatedAt: time.Now(),
	}

	c.lobbies[code] = lobby
	c.sessionLobby[msg.SessionID] = code
	c.mu.Unlock()

	session.Send(LobbyCreatedEvent{Code: code, GameID: msg.GameID, Settings: msg.Settings})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}

	code := NormalizeCode(msg.Code)
	lobby, exists := c.lobbies[code]
	if !exists {
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	}
	if lobby.Joiner != nil {
		session.Send(LobbyErrorEvent{Message: "Lobby is full"})
		return
	}
	if lobby.Host.ID() == msg.SessionID {
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}
	c.dropRematchOffers(msg.SessionID)

	lobby.Joiner = session
	c.sessionLobby[msg.SessionID] = code

	lobby.Host.Send(LobbyJoinedEvent{
		Code:       code,
		Side:         Player1,
		OpponentID:   msg.SessionID,
		OpponentName: session.Name(),
		Settings:     lobby.Settings,
	})
	session.Send(LobbyJoinedEvent{
		Code:       code,
		Side:         Player2,
		OpponentID:   lobby.Host.ID(),
		OpponentName: lobby.Host.Name(),
		Settings:     lobby.Settings,
	})

	delete(c.sessionLobby, lobby.Host.ID())
	delete(c.sessionLobby, msg.SessionID)
	delete(c.lobbies, code)

	c.startMatch(code, lobby.GameID, lobby.Settings, lobby.Host, lobby.Joiner)
}

// startMatch creates the game and launches the match loop.
// Must be called with lock held.
func (c *Coordinator) startMatch(code, gameID string, settings LobbySettings, p1, p2 SessionHandle) {
	matchID := NewMatchID()

	game, err := c.gameFactory(gameID, settings.RuntimeConfig(c.config.TickRate, time.Now().UnixNano()))
	if err != nil {
		c.logger.Error("could not create game", "game", gameID, "error", err)
		p1.Send(LobbyErrorEvent{Message: "Failed to create game"})
		p2.Send(LobbyErrorEvent{Message: "Failed to create game"})
		return
	}

	match := NewOnlineMatch(matchID, code, gameID, game, p1, p2, c.config.TickRate)

	c.matches[matchID] = match
	c.settings[matchID] = settings
	c.sessionMatch[p1.ID()] = matchID
	c.sessionMatch[p2.ID()] = matchID

	p1.Send(MatchStartedEvent{MatchID: matchID, Side: Player1, Code: code, Settings: settings})
	p2.Send(MatchStartedEvent{MatchID: matchID, Side: Player2, Code: code, Settings: settings})

	go match.Run(func(result MatchResult) {
		c.handleMatchEnded(matchID, result)
	})
}

func (c *Coordinator) handleMatchEnded(matchID MatchID, result MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	match, exists := c.matches[matchID]
	if !exists {
		return
	}
	settings := c.settings[matchID]
	p1, p2 := match.player1Session, match.player2Session

	if c.resultSaver != nil {
		winnerSession := ""
		if result.Winner == Player1 {
			winnerSession = string(p1.ID())
		} else if result.Winner == Player2 {
			winnerSession = string(p2.ID())
		}

		tickRate := max(1, c.config.TickRate)
		resultData := MatchResultData{
			MatchID:        string(matchID),
			GameID:         match.GameID(),
			GridSize:       settings.GridSize,
			Player1Session: string(p1.ID()),
			Player2Session: string(p2.ID()),
			Score1:         result.Score1,
			Score2:         result.Score2,
			WinnerSession:  winnerSession,
			EndReason:      result.Reason.String(),
			DurationSecs:   int(result.Ticks / uint64(tickRate)), //nolint:gosec // tickRate is clamped positive
		}
		saver, logger := c.resultSaver, c.logger
		go func() {
			if err := saver.SaveMatchResult(resultData); err != nil {
				logger.Warn("could not save match result", "match", resultData.MatchID, "error", err)
			}
		}()
	}

	delete(c.sessionMatch, p1.ID())
	delete(c.sessionMatch, p2.ID())
	delete(c.matches, matchID)
	delete(c.settings, matchID)

	// Only a completed match can be replayed; after a disconnect one side is gone.
	if result.Reason == MatchEndReasonCompleted {
		c.finished[matchID] = &finishedMatch{
			code:     match.Code(),
			gameID:   match.GameID(),
			settings: settings,
			player1:  p1,
			player2:  p2,
			ready:    make(map[SessionID]bool),
			endedAt:  time.Now(),
		}
	}

	endEvent := MatchEndedEvent{
		MatchID: matchID,
		Reason:  result.Reason,
		Winner:  result.Winner,
		Score1:  result.Score1,
		Score2:  result.Score2,
	}
	p1.Send(endEvent)
	p2.Send(endEvent)
}

func (c *Coordinator) handleReadyForRematch(msg ReadyForRematchMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fm, exists := c.finished[msg.MatchID]
	if !exists {
		if s, ok := c.sessions.Get(msg.SessionID); ok {
			s.Send(LobbyErrorEvent{Message: "Rematch no longer available"})
		}
		return
	}

	var opponent SessionHandle
	switch msg.SessionID {
	case fm.player1.ID():
		opponent = fm.player2
	case fm.player2.ID():
		opponent = fm.player1
	default:
		return
	}

	fm.ready[msg.SessionID] = true
	if !fm.ready[opponent.ID()] {
		opponent.Send(RematchPendingEvent{Code: fm.code})
		return
	}

	delete(c.finished, msg.MatchID)
	if c.busy(fm.player1.ID()) || c.busy(fm.player2.ID()) {
		fm.player1.Send(LobbyErrorEvent{Message: "Rematch no longer available"})
		fm.player2.Send(LobbyErrorEvent{Message: "Rematch no longer available"})
		return
	}
	c.startMatch(fm.code, fm.gameID, fm.settings, fm.player1, fm.player2)
}

// dropRematchOffers forgets finished matches involving id and tells the
// other player. Must be called with lock held.
func (c *Coordinator) dropRematchOffers(id SessionID) {
	for matchID, fm := range c.finished {
		var other SessionHandle
		switch id {
		case fm.player1.ID():
			other = fm.player2
		case fm.player2.ID():
			other = fm.player1
		default:
			continue
		}
		delete(c.finished, matchID)
		if fm.ready[other.ID()] {
			other.Send(LobbyErrorEvent{Message: "Opponent declined the rematch"})
		}
	}
}

func (c *Coordinator) handleCancelLobby(msg CancelLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code := NormalizeCode(msg.Code)
	lobby, exists := c.lobbies[code]
	if !exists {
		return
	}

	// Only host can cancel
	if lobby.Host.ID() != msg.SessionID {
		return
	}

	if lobby.Joiner != nil {
		lobby.Joiner.Send(MatchEndedEvent{
			Reason: MatchEndReasonHostLeft,
		})
		delete(c.sessionLobby, lobby.Joiner.ID())
	}

	delete(c.lobbies, code)
	delete(c.sessionLobby, msg.SessionID)
}

func (c *Coordinator) handleLeaveLobby(msg LeaveLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code := NormalizeCode(msg.Code)
	lobby, exists := c.lobbies[code]
	if !exists {
		return
	}

	if lobby.Joiner != nil && lobby.Joiner.ID() == msg.SessionID {
		lobby.Joiner = nil
		delete(c.sessionLobby, msg.SessionID)
		lobby.Host.Send(LobbyPlayerLeftEvent{Code: code})
		return
	}

	if lobby.Host.ID() == msg.SessionID {
		if lobby.Joiner != nil {
			lobby.Joiner.Send(MatchEndedEvent{Reason: MatchEndReasonHostLeft})
			delete(c.sessionLobby, lobby.Joiner.ID())
		}
		delete(c.lobbies, code)
		delete(c.sessionLobby, msg.SessionID)
	}
}

func (c *Coordinator) handleLeaveMatch(msg LeaveMatchMsg) {
	c.mu.Lock()
	match, exists := c.matches[msg.MatchID]
	if !exists {
		c.dropRematchOffers(msg.SessionID)
	}
	c.mu.Unlock()

	if !exists {
		return
	}
	match.PlayerDisconnected(msg.SessionID)
}

func (c *Coordinator) handlePlayerInput(msg PlayerInputMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}

	match.SendInput(msg.Player, msg.Input)
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		if lobby, exists := c.lobbies[code]; exists {
			if lobby.Host.ID() == msg.SessionID {
				if lobby.Joiner != nil {
					lobby.Joiner.Send(MatchEndedEvent{Reason: MatchEndReasonHostLeft})
					delete(c.sessionLobby, lobby.Joiner.ID())
				}
				delete(c.lobbies, code)
			} else if lobby.Joiner != nil && lobby.Joiner.ID() == msg.SessionID {
				lobby.Joiner = nil
				lobby.Host.Send(LobbyPlayerLeftEvent{Code: code})
			}
		}
		delete(c.sessionLobby, msg.SessionID)
	}

	if matchID, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if match, exists := c.matches[matchID]; exists {
			match.PlayerDisconnected(msg.SessionID)
		}
	}

	c.dropRematchOffers(msg.SessionID)
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired(time.Now())
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for code, lobby := range c.lobbies {
		// Only expire lobbies without joiners
		if lobby.Joiner == nil && now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
			delete(c.sessionLobby, lobby.Host.ID())
			delete(c.lobbies, code)
		}
	}
	for id, fm := range c.finished {
		if now.Sub(fm.endedAt) > c.config.LobbyTimeout {
			delete(c.finished, id)
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a JoinCodeLength-character code from joinCodeAlphabet.
func generateJoinCode() string {
	b := make([]byte, JoinCodeLength)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	// 256 is a multiple of the alphabet size, so the modulo is unbiased.
	for i := range b {
		b[i] = joinCodeAlphabet[int(b[i])%len(joinCodeAlphabet)]
	}
	return string(b)
}

// NormalizeCode upper-cases a typed join code and trims surrounding space.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code has the shape of a join code.
func ValidCode(code string) bool {
	if len(code) != JoinCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(joinCodeAlphabet, r) {
			return false
		}
	}
	return true
}

// GetLobby returns a lobby by code (for testing/debug).
func (c *Coordinator) GetLobby(code string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[NormalizeCode(code)]
	return l, ok
}

// GetMatch returns a match by ID (for testing/debug).
func (c *Coordinator) GetMatch(id MatchID) (*OnlineMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// LobbyCount returns the number of active lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// MatchCount returns the number of active matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
