package tui

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergegrid/internal/achievements"
	"github.com/vovakirdan/mergegrid/internal/config"
	"github.com/vovakirdan/mergegrid/internal/leaderboard"
	"github.com/vovakirdan/mergegrid/internal/multiplayer"
	"github.com/vovakirdan/mergegrid/internal/storage"
)

// Env bundles what every screen of one player's session shares.
// Store and Profile are nil when the database could not be opened;
// Coordinator is nil outside the SSH server.
type Env struct {
	Player      string
	Store       *storage.Store
	Profile     *storage.Profile
	Config      config.Config
	Leaderboard leaderboard.Submitter
	Coordinator *multiplayer.Coordinator
	Tracker     *achievements.Tracker
	Logger      *log.Logger
}

// NewEnv prepares a session for player.
func NewEnv(player string, store *storage.Store, cfg config.Config, lb leaderboard.Submitter, logger *log.Logger) *Env {
	if player == "" {
		player = "local"
	}
	if logger == nil {
		logger = log.Default()
	}
	if lb == nil {
		lb = leaderboard.Nop{}
	}

	env := &Env{
		Player:      player,
		Store:       store,
		Config:      cfg,
		Leaderboard: lb,
		Logger:      logger,
	}
	if store != nil {
		env.Profile = store.Profile(player)
		env.Tracker = achievements.NewTracker(env.Profile)
	} else {
		env.Tracker = achievements.NewTracker(nil)
	}
	env.Tracker.SetLogger(logger)
	return env
}

// Online reports whether head-to-head play is available.
func (e *Env) Online() bool {
	return e.Coordinator != nil
}
