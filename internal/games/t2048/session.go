package t2048

import (
	"errors"
	"fmt"
	"slices"
)

// SupportedSizes lists the grid edge lengths a session can be created with.
var SupportedSizes = []int{3, 4, 5, 6, 8}

// ErrUnsupportedSize is returned for grid sizes outside SupportedSizes.
var ErrUnsupportedSize = errors.New("t2048: unsupported grid size")

// IsSupportedSize reports whether size is one of SupportedSizes.
func IsSupportedSize(size int) bool {
	return slices.Contains(SupportedSizes, size)
}

// Status is the coarse state of a session.
type Status int

const (
	StatusActive Status = iota
	StatusWon
	StatusOver
)

func (s Status) String() string {
	switch s {
	case StatusWon:
		return "won"
	case StatusOver:
		return "over"
	default:
		return "active"
	}
}

// SessionConfig holds the engine parameters of a session.
type SessionConfig struct {
	Size         int
	WinThreshold int     // 0 means DefaultWinThreshold
	Spawn4Prob   float64 // 0 means DefaultSpawn4Prob
}

func (c SessionConfig) normalized() (SessionConfig, error) {
	if !IsSupportedSize(c.Size) {
		return c, fmt.Errorf("%w: %d", ErrUnsupportedSize, c.Size)
	}
	if c.WinThreshold == 0 {
		c.WinThreshold = DefaultWinThreshold
	}
	if c.Spawn4Prob <= 0 || c.Spawn4Prob > 1 {
		c.Spawn4Prob = DefaultSpawn4Prob
	}
	return c, nil
}

// SavedState is the persisted shape of a session.
type SavedState struct {
	Grid  [][]int `json:"grid"`
	Score int     `json:"score"`
	Size  int     `json:"size"`
	Won   bool    `json:"won"`
	Over  bool    `json:"over"`
}

// Turn reports what a single Move call did.
type Turn struct {
	MoveOutcome
	Spawned  *Tile
	NewlyWon bool
	Over     bool
}

type undoSlot struct {
	grid  Grid
	score int
}

// Session owns one game's grid, score and flags. It is not safe for
// concurrent use.
type Session struct {
	cfg   SessionConfig
	rnd   RandomSource
	grid  Grid
	score int
	won   bool
	over  bool
	undo  *undoSlot
}

// NewSession starts a game with two random tiles on an empty grid.
func NewSession(cfg SessionConfig, rnd RandomSource) (*Session, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	s := &Session{
		cfg:  cfg,
		rnd:  rnd,
		grid: NewGrid(cfg.Size),
	}
	SpawnTile(s.grid, rnd, cfg.Spawn4Prob)
	SpawnTile(s.grid, rnd, cfg.Spawn4Prob)
	return s, nil
}

// MustSession is like NewSession but panics on an invalid configuration.
// Callers pass a size already checked with IsSupportedSize.
func MustSession(cfg SessionConfig, rnd RandomSource) *Session {
	s, err := NewSession(cfg, rnd)
	if err != nil {
		panic(err)
	}
	return s
}

// RestoreSession rebuilds a session from a saved state. The undo slot starts
// empty.
func RestoreSession(cfg SessionConfig, st SavedState, rnd RandomSource) (*Session, error) {
	if st.Size != 0 {
		cfg.Size = st.Size
	}
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	grid, err := GridFromRows(st.Grid)
	if err != nil {
		return nil, err
	}
	if grid.Rows() != cfg.Size || grid.Cols() != cfg.Size {
		return nil, fmt.Errorf("%w: %dx%d grid for size %d", ErrInvalidGrid, grid.Rows(), grid.Cols(), cfg.Size)
	}
	if st.Score < 0 {
		return nil, fmt.Errorf("t2048: negative score %d", st.Score)
	}
	return &Session{
		cfg:   cfg,
		rnd:   rnd,
		grid:  grid,
		score: st.Score,
		won:   st.Won,
		over:  st.Over || IsGameOver(grid),
	}, nil
}

// Move applies dir. Nothing happens once the session is over. A move that
// changes nothing discards the undo slot and leaves the rest untouched.
func (s *Session) Move(dir Direction) Turn {
	if s.over {
		return Turn{MoveOutcome: MoveOutcome{Grid: s.grid}, Over: true}
	}

	out := ApplyMove(s.grid, dir, s.cfg.WinThreshold)
	if !out.Moved {
		s.undo = nil
		return Turn{MoveOutcome: out}
	}

	s.undo = &undoSlot{grid: s.grid, score: s.score}
	s.grid = out.Grid
	s.score += out.ScoreDelta

	turn := Turn{MoveOutcome: out}
	if out.ThresholdReached && !s.won {
		s.won = true
		turn.NewlyWon = true
	}
	if tile, ok := SpawnTile(s.grid, s.rnd, s.cfg.Spawn4Prob); ok {
		turn.Spawned = &tile
	}
	s.over = !MovesAvailable(s.grid)
	turn.Over = s.over
	turn.Grid = s.grid.Clone()
	return turn
}

// CanUndo reports whether a prior state is held.
func (s *Session) CanUndo() bool {
	return s.undo != nil
}

// Undo restores the grid and score from before the last accepted move and
// clears the game-over flag. The won flag is kept. Each move can be undone
// once.
func (s *Session) Undo() bool {
	if s.undo == nil {
		return false
	}
	s.grid = s.undo.grid
	s.score = s.undo.score
	s.over = false
	s.undo = nil
	return true
}

// ForceOver ends the session, e.g. when a timer expires.
func (s *Session) ForceOver() {
	s.over = true
	s.undo = nil
}

// Status returns Over, Won or Active, in that precedence.
func (s *Session) Status() Status {
	switch {
	case s.over:
		return StatusOver
	case s.won:
		return StatusWon
	default:
		return StatusActive
	}
}

// State returns the persistable state.
func (s *Session) State() SavedState {
	return SavedState{
		Grid:  s.grid.Values(),
		Score: s.score,
		Size:  s.cfg.Size,
		Won:   s.won,
		Over:  s.over,
	}
}

// Grid returns a copy of the current grid.
func (s *Session) Grid() Grid { return s.grid.Clone() }

// Score returns the cumulative score.
func (s *Session) Score() int { return s.score }

// Won reports whether the win tile was ever created.
func (s *Session) Won() bool { return s.won }

// Over reports whether the session has ended.
func (s *Session) Over() bool { return s.over }

// Size returns the grid edge length.
func (s *Session) Size() int { return s.cfg.Size }

// WinThreshold returns the tile value that wins.
func (s *Session) WinThreshold() int { return s.cfg.WinThreshold }

// MaxTile returns the highest tile on the grid.
func (s *Session) MaxTile() int { return s.grid.MaxTile() }
