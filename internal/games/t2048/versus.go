package t2048

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/multiplayer"
)

// VersusGameID is the game id used for head-to-head lobbies.
const VersusGameID = "versus"

// VersusSnapshot is the state broadcast to both players every tick.
type VersusSnapshot struct {
	Size     int
	Boards   [2][][]int
	Scores   [2]int
	Over     [2]bool
	TimeLeft int
	Finished bool
}

// IsGameSnapshot implements multiplayer.GameSnapshot.
func (VersusSnapshot) IsGameSnapshot() {}

// Versus is a timed race between two players on identically seeded boards.
// The higher score when time runs out wins.
type Versus struct {
	settings   Settings
	timer      int
	tickRate   int
	tick       uint64
	players    [2]*Session
	timerTicks int
	finished   bool
}

// NewVersus creates a head-to-head game. timerSeconds <= 0 uses the default.
func NewVersus(settings Settings, timerSeconds int) *Versus {
	if timerSeconds <= 0 {
		timerSeconds = DefaultTimerSeconds
	}
	return &Versus{settings: settings, timer: timerSeconds}
}

// Reset starts both boards from the same seed.
func (v *Versus) Reset(cfg core.RuntimeConfig) {
	size := v.settings.GridSize
	if cfg.GridSize != 0 {
		size = cfg.GridSize
	}
	if !IsSupportedSize(size) {
		size = 4
	}
	if cfg.TimerSeconds > 0 {
		v.timer = cfg.TimerSeconds
	}
	v.tickRate = cfg.TickRate
	if v.tickRate <= 0 {
		v.tickRate = 60
	}

	sc := SessionConfig{
		Size:         size,
		WinThreshold: v.settings.WinThreshold,
		Spawn4Prob:   v.settings.Spawn4Prob,
	}
	for i := range v.players {
		v.players[i] = MustSession(sc, rand.New(rand.NewSource(cfg.Seed)))
	}
	v.tick = 0
	v.timerTicks = v.timer * v.tickRate
	v.finished = false
}

func seat(id core.PlayerID) int {
	return int(id) - 1
}

// StepMulti applies each player's move and runs the shared clock.
func (v *Versus) StepMulti(in core.MultiInputFrame) core.StepResult {
	if v.finished {
		return core.StepResult{State: v.state()}
	}
	v.tick++

	moved := false
	for _, id := range []core.PlayerID{core.Player1, core.Player2} {
		dir, ok := directionFromInput(in.Player(id))
		if !ok {
			continue
		}
		if v.players[seat(id)].Move(dir).Moved {
			moved = true
		}
	}

	v.timerTicks--
	if v.timerTicks <= 0 {
		v.timerTicks = 0
		v.players[0].ForceOver()
		v.players[1].ForceOver()
	}
	if v.players[0].Over() && v.players[1].Over() {
		v.finished = true
	}
	return core.StepResult{State: v.state(), Moved: moved}
}

func (v *Versus) state() core.GameState {
	return core.GameState{
		Score:    max(v.players[0].Score(), v.players[1].Score()),
		GameOver: v.finished,
	}
}

// Snapshot implements multiplayer.OnlineGame.
func (v *Versus) Snapshot() multiplayer.GameSnapshot {
	snap := VersusSnapshot{
		Size:     v.players[0].Size(),
		TimeLeft: (v.timerTicks + v.tickRate - 1) / v.tickRate,
		Finished: v.finished,
	}
	for i, p := range v.players {
		snap.Boards[i] = p.grid.Values()
		snap.Scores[i] = p.Score()
		snap.Over[i] = p.Over()
	}
	return snap
}

// IsGameOver reports whether the match has been decided.
func (v *Versus) IsGameOver() bool {
	return v.finished
}

// Winner returns the player with the higher score, or 0 on a draw or while
// the match is still running.
func (v *Versus) Winner() core.PlayerID {
	if !v.finished {
		return 0
	}
	switch {
	case v.Score1() > v.Score2():
		return core.Player1
	case v.Score2() > v.Score1():
		return core.Player2
	}
	return 0
}

// Score1 returns Player 1's score.
func (v *Versus) Score1() int { return v.players[0].Score() }

// Score2 returns Player 2's score.
func (v *Versus) Score2() int { return v.players[1].Score() }

// RenderVersus draws a snapshot from the point of view of side. The
// opponent's board is drawn alongside when the screen is wide enough,
// otherwise only their score is shown.
func RenderVersus(dst *core.Screen, snap VersusSnapshot, side core.PlayerID) {
	dst.Clear()
	me, them := seat(side), seat(side.Other())
	if me < 0 || me > 1 {
		me, them = 0, 1
	}

	boardW, boardH := boardDims(snap.Size)
	w := dst.Width()

	title := fmt.Sprintf("MergeGrid %dx%d  Head to Head", snap.Size, snap.Size)
	dst.DrawTextColored((w-len(title))/2, 0, title, core.ColorBrightCyan)

	clock := fmt.Sprintf("Time: %ds", snap.TimeLeft)
	clockColor := core.ColorGray
	if snap.TimeLeft <= 10 {
		clockColor = core.ColorBrightRed
	}
	dst.DrawTextColored((w-len(clock))/2, 1, clock, clockColor)

	y := hudHeight + 1
	myGrid := MustGrid(snap.Boards[me])
	theirGrid := MustGrid(snap.Boards[them])

	if w >= boardW*2+4 {
		leftX := (w - boardW*2 - 4) / 2
		rightX := leftX + boardW + 4
		dst.DrawTextColored(leftX, 2, fmt.Sprintf("You: %d", snap.Scores[me]), core.ColorBrightGreen)
		dst.DrawTextColored(rightX, 2, fmt.Sprintf("Opponent: %d", snap.Scores[them]), core.ColorBrightRed)
		drawBoard(dst, myGrid, leftX, y, nil)
		drawBoard(dst, theirGrid, rightX, y, nil)
	} else {
		x := (w - boardW) / 2
		dst.DrawTextColored(x, 2, fmt.Sprintf("You: %d", snap.Scores[me]), core.ColorBrightGreen)
		opp := fmt.Sprintf("Opponent: %d (max %d)", snap.Scores[them], theirGrid.MaxTile())
		dst.DrawTextColored(x+boardW-len(opp), 2, opp, core.ColorBrightRed)
		drawBoard(dst, myGrid, x, y, nil)
	}

	if snap.Over[me] && !snap.Finished {
		msg := "No moves left, waiting for the clock"
		dst.DrawTextColored((w-len(msg))/2, y+boardH+1, msg, core.ColorYellow)
	}
}
