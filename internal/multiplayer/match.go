package multiplayer

import (
	"sync"
	"time"

	"github.com/vovakirdan/mergegrid/internal/core"
)

// OnlineGame is the interface a game implements to be played head to head.
type OnlineGame interface {
	// Reset initializes the game state.
	Reset(cfg core.RuntimeConfig)

	// StepMulti advances the game by one tick using input from multiple players.
	StepMulti(input core.MultiInputFrame) core.StepResult

	// Snapshot returns the current game state as a snapshot for network transmission.
	Snapshot() GameSnapshot

	// IsGameOver returns true if the game has ended.
	IsGameOver() bool

	// Winner returns the winning player (Player1/Player2) or 0 if no winner yet.
	Winner() PlayerID

	// Score1 returns Player 1's score.
	Score1() int

	// Score2 returns Player 2's score.
	Score2() int
}

// MatchResult contains the outcome of a completed match.
type MatchResult struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  PlayerID
	Score1  int
	Score2  int
	Ticks   uint64
}

// OnlineMatch represents an active multiplayer game session.
type OnlineMatch struct {
	id     MatchID
	code   string
	gameID string
	game   OnlineGame

	player1Session SessionHandle
	player2Session SessionHandle

	// Input handling. Each player's frames are queued in arrival order and
	// the match consumes at most one per player per tick.
	inputMu   sync.Mutex
	queue1    []core.InputFrame
	queue2    []core.InputFrame
	inputChan chan playerInput

	// Match state
	tick     uint64
	tickRate int
	done     chan struct{}
	doneOnce sync.Once

	// Disconnect handling
	disconnectChan chan SessionID
}

type playerInput struct {
	player PlayerID
	input  core.InputFrame
}

// NewOnlineMatch creates a new online match.
func NewOnlineMatch(
	id MatchID,
	code string,
	gameID string,
	game OnlineGame,
	p1Session, p2Session SessionHandle,
	tickRate int,
) *OnlineMatch {
	return &OnlineMatch{
		id:             id,
		code:           code,
		gameID:         gameID,
		game:           game,
		player1Session: p1Session,
		player2Session: p2Session,
		inputChan:      make(chan playerInput, 64),
		tick:           0,
		tickRate:       tickRate,
		done:           make(chan struct{}),
		disconnectChan: make(chan SessionID, 2),
	}
}

// ID returns the match identifier.
func (m *OnlineMatch) ID() MatchID {
	return m.id
}

// Code returns the join code used to create this match.
func (m *OnlineMatch) Code() string {
	return m.code
}

// GameID returns the game identifier.
func (m *OnlineMatch) GameID() string {
	return m.gameID
}

// SendInput sends player input to the match.
// Non-blocking, uses a buffered channel.
func (m *OnlineMatch) SendInput(player PlayerID, input core.InputFrame) {
	select {
	case m.inputChan <- playerInput{player: player, input: input}:
	default:
		// Channel full, drop input (rare under normal conditions)
	}
}

// PlayerDisconnected signals that a player has disconnected.
func (m *OnlineMatch) PlayerDisconnected(sessionID SessionID) {
	select {
	case m.disconnectChan <- sessionID:
	default:
	}
}

// Run starts the authoritative match loop.
// The callback is called when the match ends.
func (m *OnlineMatch) Run(onComplete func(MatchResult)) {
	defer func() {
		m.doneOnce.Do(func() {
			close(m.done)
		})
	}()

	tickDuration := time.Second / time.Duration(m.tickRate)
	ticker := time.NewTicker(tickDuration)
	defer ticker.Stop()

	// Monitor session disconnects
	go m.monitorSessions()

	for {
		select {
		case <-ticker.C:
			result, done := m.runTick()
			if done {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case sessionID := <-m.disconnectChan:
			result := m.handleDisconnect(sessionID)
			if onComplete != nil {
				onComplete(result)
			}
			return

		case <-m.done:
			return
		}
	}
}

func (m *OnlineMatch) runTick() (MatchResult, bool) {
	m.drainInputs()

	// One queued frame per player; the rest wait for later ticks.
	m.inputMu.Lock()
	multiInput := core.NewMultiInputFrame()
	multiInput.SetPlayer(Player1, popFrame(&m.queue1))
	multiInput.SetPlayer(Player2, popFrame(&m.queue2))
	m.inputMu.Unlock()

	// Run game simulation
	m.game.StepMulti(multiInput)
	m.tick++

	// Broadcast snapshot to both sessions
	snapshot := m.game.Snapshot()
	snapshotEvent := SnapshotEvent{
		MatchID:  m.id,
		Tick:     m.tick,
		Snapshot: snapshot,
	}
	m.player1Session.Send(snapshotEvent)
	m.player2Session.Send(snapshotEvent)

	// Check for game over
	if m.game.IsGameOver() {
		return MatchResult{
			MatchID: m.id,
			Reason:  MatchEndReasonCompleted,
			Winner:  m.game.Winner(),
			Score1:  m.game.Score1(),
			Score2:  m.game.Score2(),
			Ticks:   m.tick,
		}, true
	}

	return MatchResult{}, false
}

// maxQueuedInputs bounds how many moves a player can have in flight.
const maxQueuedInputs = 32

func (m *OnlineMatch) drainInputs() {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()

	for {
		select {
		case pi := <-m.inputChan:
			if !pi.input.Any() {
				continue
			}
			if pi.player == Player1 {
				m.queue1 = pushFrame(m.queue1, pi.input)
			} else {
				m.queue2 = pushFrame(m.queue2, pi.input)
			}
		default:
			return
		}
	}
}

func pushFrame(q []core.InputFrame, f core.InputFrame) []core.InputFrame {
	if len(q) >= maxQueuedInputs {
		return q
	}
	return append(q, f.Clone())
}

func popFrame(q *[]core.InputFrame) core.InputFrame {
	if len(*q) == 0 {
		return core.NewInputFrame()
	}
	f := (*q)[0]
	*q = (*q)[1:]
	return f
}

func (m *OnlineMatch) handleDisconnect(sessionID SessionID) MatchResult {
	var winner PlayerID
	var reason MatchEndReason

	if sessionID == m.player1Session.ID() {
		winner = Player2
		reason = MatchEndReasonDisconnect
	} else {
		winner = Player1
		reason = MatchEndReasonDisconnect
	}

	return MatchResult{
		MatchID: m.id,
		Reason:  reason,
		Winner:  winner,
		Score1:  m.game.Score1(),
		Score2:  m.game.Score2(),
		Ticks:   m.tick,
	}
}

func (m *OnlineMatch) monitorSessions() {
	select {
	case <-m.player1Session.Done():
		select {
		case m.disconnectChan <- m.player1Session.ID():
		default:
		}
	case <-m.player2Session.Done():
		select {
		case m.disconnectChan <- m.player2Session.ID():
		default:
		}
	case <-m.done:
	}
}

// Stop gracefully stops the match.
func (m *OnlineMatch) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
