package t2048

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/registry"
)

// Settings are the tunables a Game is built with.
type Settings struct {
	GridSize     int
	WinThreshold int
	Spawn4Prob   float64
	TimerSeconds int // time attack countdown
}

// DefaultSettings returns the standard 4x4 game.
func DefaultSettings() Settings {
	return Settings{
		GridSize:     4,
		WinThreshold: DefaultWinThreshold,
		Spawn4Prob:   DefaultSpawn4Prob,
		TimerSeconds: DefaultTimerSeconds,
	}
}

// ResumeState is what the platform persists for a classic game.
type ResumeState struct {
	SavedState
	KeepPlaying bool `json:"keep_playing"`
	UndoUsed    bool `json:"undo_used"`
}

// Game drives a Session for one solo mode and renders it.
type Game struct {
	mode     Mode
	settings Settings
	session  *Session
	rng      *rand.Rand
	tick     uint64
	tickRate int
	now      func() time.Time
	daily    *Daily

	best      int
	listeners []Listener

	screenW int
	screenH int

	paused      bool
	tooSmall    bool
	keepPlaying bool
	undoUsed    bool
	ended       bool
	timeUp      bool
	timerTicks  int // remaining ticks, timed modes only
	lastMerges  []MergeEvent
	lastSpawned *Tile

	animations     []TileAnimation
	animating      bool
	animationPhase AnimationPhase
	animationTicks int
	pendingNewTile *Tile
}

// New creates a game for a solo mode.
func New(mode Mode, settings Settings) *Game {
	return &Game{
		mode:     mode,
		settings: settings,
		now:      time.Now,
	}
}

func init() {
	for _, id := range []ModeID{ModeClassic, ModeTimeAttack, ModeDaily} {
		mode := MustMode(id)
		registry.Register(string(id), func() registry.Game {
			return New(mode, DefaultSettings())
		})
	}
}

// SetClock replaces the time source used to pick the daily challenge.
func (g *Game) SetClock(now func() time.Time) {
	g.now = now
}

// Subscribe registers l for game events.
func (g *Game) Subscribe(l Listener) {
	g.listeners = append(g.listeners, l)
}

// SetBest sets the best score shown in the HUD.
func (g *Game) SetBest(best int) {
	g.best = best
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return string(g.mode.ID)
}

// Title returns the display name.
func (g *Game) Title() string {
	return g.mode.Title
}

// Mode returns the mode descriptor in use.
func (g *Game) Mode() Mode {
	return g.mode
}

// Size returns the grid edge length of the current session.
func (g *Game) Size() int {
	if g.session == nil {
		return g.settings.GridSize
	}
	return g.session.Size()
}

// Daily returns the challenge being played, or nil outside daily mode.
func (g *Game) Daily() *Daily {
	return g.daily
}

// ScoreKey names the best-score record this game competes for.
func (g *Game) ScoreKey() string {
	return ScoreKey(g.mode.Family, g.Size())
}

// Reset starts a fresh session.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	size := g.settings.GridSize
	if cfg.GridSize != 0 {
		size = cfg.GridSize
	}
	if !IsSupportedSize(size) {
		size = 4
	}
	seed := cfg.Seed

	g.daily = nil
	if g.mode.ID == ModeDaily {
		d := DailyFor(g.now())
		g.daily = &d
		size = d.GridSize
		seed = d.Seed
		g.mode.TargetScore = d.TargetScore
	}

	timer := g.settings.TimerSeconds
	if cfg.TimerSeconds > 0 {
		timer = cfg.TimerSeconds
	}
	g.mode = g.mode.WithTimer(timer)

	g.rng = rand.New(rand.NewSource(seed))
	g.session = MustSession(g.sessionConfig(size), g.rng)

	g.resetRuntime(cfg)
}

func (g *Game) sessionConfig(size int) SessionConfig {
	return SessionConfig{
		Size:         size,
		WinThreshold: g.settings.WinThreshold,
		Spawn4Prob:   g.settings.Spawn4Prob,
	}
}

func (g *Game) resetRuntime(cfg core.RuntimeConfig) {
	g.tick = 0
	g.tickRate = cfg.TickRate
	if g.tickRate <= 0 {
		g.tickRate = 60
	}
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.paused = false
	g.keepPlaying = false
	g.undoUsed = false
	g.ended = false
	g.timeUp = false
	g.timerTicks = g.mode.TimerSeconds * g.tickRate
	g.lastMerges = nil
	g.lastSpawned = nil
	g.clearAnimation()
	g.checkScreenSize()
}

// Restore continues a previously saved game. It must follow Reset so the
// screen and tick settings are known.
func (g *Game) Restore(st ResumeState) error {
	s, err := RestoreSession(g.sessionConfig(st.Size), st.SavedState, g.rng)
	if err != nil {
		return err
	}
	g.session = s
	g.keepPlaying = st.KeepPlaying
	g.undoUsed = st.UndoUsed
	g.ended = s.Over()
	return nil
}

// ResumeState returns the state to persist for later resumption.
func (g *Game) ResumeState() ResumeState {
	return ResumeState{
		SavedState:  g.session.State(),
		KeepPlaying: g.keepPlaying,
		UndoUsed:    g.undoUsed,
	}
}

// Session exposes the underlying session, mostly for tests.
func (g *Game) Session() *Session {
	return g.session
}

// checkScreenSize checks if the screen is large enough.
func (g *Game) checkScreenSize() {
	boardW, boardH := boardDims(g.Size())
	g.tooSmall = g.screenW < boardW+2 || g.screenH < boardH+hudHeight+2
}

// Resize adapts to a new terminal size without touching the board.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	g.checkScreenSize()
}

// awaitingContinue is true while the win overlay waits for the player.
func (g *Game) awaitingContinue() bool {
	return g.session.Won() && !g.keepPlaying && !g.session.Over()
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.session.Over() {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	if g.animating {
		g.updateAnimation()
	}

	if g.awaitingContinue() {
		if in.Has(core.ActionConfirm) {
			g.keepPlaying = true
		}
		return core.StepResult{State: g.State()}
	}

	if g.session.Over() {
		// A board that ran out of moves can still be taken back.
		if in.Has(core.ActionUndo) && !g.timeUp {
			g.undo()
		}
		return core.StepResult{State: g.State()}
	}

	if g.mode.Timed() {
		g.timerTicks--
		if g.timerTicks <= 0 {
			g.timerTicks = 0
			g.timeUp = true
			g.session.ForceOver()
			g.finish(EndTimeUp)
			return core.StepResult{State: g.State()}
		}
	}

	// One turn at a time: input is ignored until the last slide finishes.
	if g.animating && g.animationPhase == PhaseSlide {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionUndo) {
		g.undo()
		return core.StepResult{State: g.State()}
	}

	dir, ok := directionFromInput(in)
	if !ok {
		return core.StepResult{State: g.State()}
	}
	moved := g.move(dir)
	return core.StepResult{State: g.State(), Moved: moved}
}

// directionFromInput maps the first directional action in the frame.
func directionFromInput(in core.InputFrame) (Direction, bool) {
	switch {
	case in.Has(core.ActionUp):
		return DirUp, true
	case in.Has(core.ActionDown):
		return DirDown, true
	case in.Has(core.ActionLeft):
		return DirLeft, true
	case in.Has(core.ActionRight):
		return DirRight, true
	}
	return 0, false
}

func (g *Game) move(dir Direction) bool {
	turn := g.session.Move(dir)
	if !turn.Moved {
		return false
	}

	g.lastMerges = turn.Merges
	g.lastSpawned = turn.Spawned
	g.startSlideAnimation(turn.Moves, turn.Spawned)
	if g.session.Score() > g.best {
		g.best = g.session.Score()
	}

	g.emit(TurnEvent{
		Mode:    g.mode.ID,
		Size:    g.session.Size(),
		Score:   g.session.Score(),
		MaxTile: g.session.MaxTile(),
		Merges:  turn.Merges,
		State:   g.session.State(),
	})

	if turn.NewlyWon {
		g.emit(WinEvent{
			Mode:        g.mode.ID,
			Size:        g.session.Size(),
			Score:       g.session.Score(),
			UndoAllowed: g.mode.AllowUndo,
			UndoUsed:    g.undoUsed,
		})
		g.completeDaily()
	}
	if turn.Over {
		g.finish(EndNoMoves)
	}
	return true
}

func (g *Game) undo() {
	if !g.mode.AllowUndo || !g.session.Undo() {
		return
	}
	g.undoUsed = true
	g.ended = false
	g.lastMerges = nil
	g.lastSpawned = nil
	g.clearAnimation()
	g.emit(UndoEvent{Mode: g.mode.ID, State: g.session.State()})
}

// finish reports the end of the game once.
func (g *Game) finish(reason EndReason) {
	if g.ended {
		return
	}
	g.ended = true
	g.emit(GameOverEvent{
		Mode:     g.mode.ID,
		Family:   g.mode.Family,
		Size:     g.session.Size(),
		Score:    g.session.Score(),
		MaxTile:  g.session.MaxTile(),
		Won:      g.session.Won(),
		UndoUsed: g.undoUsed,
		Reason:   reason,
		Daily:    g.daily,
	})
	g.completeDaily()
}

func (g *Game) completeDaily() {
	if g.daily == nil {
		return
	}
	g.emit(DailyCompleteEvent{Daily: *g.daily, Score: g.session.Score()})
}

func (g *Game) emit(e Event) {
	for _, l := range g.listeners {
		l.OnGameEvent(e)
	}
}

// TimeLeft returns the whole seconds left on the countdown.
func (g *Game) TimeLeft() int {
	if !g.mode.Timed() {
		return 0
	}
	return (g.timerTicks + g.tickRate - 1) / g.tickRate
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.session.Score(),
		GameOver: g.session.Over(),
		Paused:   g.paused || g.tooSmall,
		Won:      g.session.Won(),
	}
}
