// Package multiplayer runs head-to-head matches between two sessions of the
// same server process: lobbies with join codes, an authoritative match loop
// and result reporting.
package multiplayer

import (
	"github.com/google/uuid"

	"github.com/vovakirdan/mergegrid/internal/core"
)

// PlayerID is an alias to core.PlayerID for convenience.
// Player1 is always the lobby host.
type PlayerID = core.PlayerID

// Re-export player constants for convenience.
const (
	Player1 = core.Player1
	Player2 = core.Player2
)

// SessionID uniquely identifies a player's session (e.g., SSH connection).
type SessionID string

// MatchID uniquely identifies a game match.
type MatchID string

// NewSessionID returns a random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// NewMatchID returns a random match identifier.
func NewMatchID() MatchID {
	return MatchID(uuid.NewString())
}

// LobbySettings are chosen by the host and apply to every match played
// from the lobby, rematches included.
type LobbySettings struct {
	GridSize     int
	TimerSeconds int
}

// RuntimeConfig folds the settings into a runtime config for the game.
func (s LobbySettings) RuntimeConfig(tickRate int, seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:      80,
		ScreenH:      24,
		TickRate:     tickRate,
		Seed:         seed,
		GridSize:     s.GridSize,
		TimerSeconds: s.TimerSeconds,
	}
}
