package t2048

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying     GameStateType = "playing"
	StateWon         GameStateType = "won"
	StateGameOver    GameStateType = "game_over"
	StateTimeUp      GameStateType = "time_up"
	StatePaused      GameStateType = "paused"
	StatePausedSmall GameStateType = "paused_small_window"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick     uint64
	Mode     ModeID
	Size     int
	Score    int
	Board    [][]int
	MaxTile  int
	TimeLeft int
	CanUndo  bool
	State    GameStateType
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case g.timeUp:
		state = StateTimeUp
	case g.session.Over():
		state = StateGameOver
	case g.paused:
		state = StatePaused
	case g.session.Won():
		state = StateWon
	}

	return Snapshot{
		Tick:     g.tick,
		Mode:     g.mode.ID,
		Size:     g.session.Size(),
		Score:    g.session.Score(),
		Board:    g.session.grid.Values(),
		MaxTile:  g.session.MaxTile(),
		TimeLeft: g.TimeLeft(),
		CanUndo:  g.mode.AllowUndo && g.session.CanUndo(),
		State:    state,
	}
}
