package t2048

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/mergegrid/internal/core"
)

var testCfg = core.RuntimeConfig{
	ScreenW:  80,
	ScreenH:  24,
	TickRate: 60,
	Seed:     42,
}

type recorder struct {
	events []Event
}

func (r *recorder) OnGameEvent(e Event) { r.events = append(r.events, e) }

// eventsOf returns the recorded events of type T in order.
func eventsOf[T Event](r *recorder) []T {
	var out []T
	for _, e := range r.events {
		if ev, ok := e.(T); ok {
			out = append(out, ev)
		}
	}
	return out
}

func newTestGame(t *testing.T, id ModeID, cfg core.RuntimeConfig, rows [][]int) (*Game, *recorder) {
	t.Helper()
	g := New(MustMode(id), DefaultSettings())
	g.SetClock(func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) })
	g.Reset(cfg)
	if rows != nil {
		err := g.Restore(ResumeState{SavedState: SavedState{Grid: rows, Size: len(rows)}})
		require.NoError(t, err)
	}
	rec := &recorder{}
	g.Subscribe(rec)
	return g, rec
}

func press(g *Game, actions ...core.Action) core.StepResult {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return g.Step(in)
}

// settle steps until move animations have finished.
func settle(g *Game) {
	for i := 0; i < slideAnimationDuration+popAnimationDuration+2; i++ {
		g.Step(core.NewInputFrame())
	}
}

func TestDeterministicSpawn(t *testing.T) {
	cfg := testCfg
	cfg.Seed = 12345

	play := func() Snapshot {
		g := New(MustMode(ModeClassic), DefaultSettings())
		g.Reset(cfg)
		for _, a := range []core.Action{core.ActionLeft, core.ActionUp, core.ActionRight, core.ActionDown} {
			press(g, a)
			settle(g)
		}
		return g.Snapshot()
	}

	assert.Equal(t, play(), play(), "same seed should produce the same game")
}

func TestResetUsesGridSize(t *testing.T) {
	for _, size := range SupportedSizes {
		cfg := testCfg
		cfg.GridSize = size
		g, _ := newTestGame(t, ModeClassic, cfg, nil)
		assert.Equal(t, size, g.Size())
		assert.False(t, g.State().Paused, "size %d should fit an 80x24 screen", size)
	}
}

func TestMoveEmitsTurnEvent(t *testing.T) {
	g, rec := newTestGame(t, ModeClassic, testCfg, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	res := press(g, core.ActionLeft)
	require.True(t, res.Moved)
	assert.Equal(t, 4, res.State.Score)

	require.Len(t, rec.events, 1)
	turn, ok := rec.events[0].(TurnEvent)
	require.True(t, ok, "event = %T, want TurnEvent", rec.events[0])
	assert.Equal(t, ModeClassic, turn.Mode)
	assert.Equal(t, 4, turn.Size)
	assert.Equal(t, 4, turn.Score)
	assert.Equal(t, []MergeEvent{{Value: 4, At: Pos{0, 0}}}, turn.Merges)
}

func TestInputIgnoredWhileSliding(t *testing.T) {
	g, _ := newTestGame(t, ModeClassic, testCfg, [][]int{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	require.True(t, press(g, core.ActionLeft).Moved)
	assert.False(t, press(g, core.ActionRight).Moved, "a move during the slide animation should be ignored")
	settle(g)
	assert.True(t, press(g, core.ActionRight).Moved)
}

func TestWinWaitsForContinue(t *testing.T) {
	g, rec := newTestGame(t, ModeClassic, testCfg, [][]int{
		{1024, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	press(g, core.ActionLeft)
	require.True(t, g.State().Won, "merging two 1024s should win")
	assert.Len(t, eventsOf[WinEvent](rec), 1)
	settle(g)

	assert.False(t, press(g, core.ActionDown).Moved, "moves should wait for the player to continue")
	assert.Equal(t, StateWon, g.Snapshot().State)

	press(g, core.ActionConfirm)
	assert.True(t, press(g, core.ActionDown).Moved)
	assert.True(t, g.ResumeState().KeepPlaying)
}

func TestUndoInClassic(t *testing.T) {
	start := [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	g, rec := newTestGame(t, ModeClassic, testCfg, start)

	press(g, core.ActionLeft)
	settle(g)
	press(g, core.ActionUndo)

	assert.Equal(t, start, g.Session().Grid().Values())
	assert.Zero(t, g.State().Score)
	assert.True(t, g.ResumeState().UndoUsed)
	assert.Len(t, eventsOf[UndoEvent](rec), 1)
}

func TestGameOverAndUndo(t *testing.T) {
	g, rec := newTestGame(t, ModeClassic, testCfg, [][]int{
		{2, 4, 2},
		{4, 2, 32},
		{0, 8, 16},
	})

	press(g, core.ActionLeft)
	require.True(t, g.State().GameOver, "board should be locked:\n%v", g.Session().Grid())

	over := eventsOf[GameOverEvent](rec)
	require.Len(t, over, 1)
	assert.Equal(t, EndNoMoves, over[0].Reason)
	assert.Equal(t, 3, over[0].Size)
	assert.Equal(t, FamilyClassic, over[0].Family)

	settle(g)
	press(g, core.ActionUndo)
	assert.False(t, g.State().GameOver, "undo should reopen a game that ran out of moves")
}

func TestTimeAttackCountdown(t *testing.T) {
	cfg := testCfg
	cfg.TickRate = 10
	cfg.TimerSeconds = 2
	g, rec := newTestGame(t, ModeTimeAttack, cfg, nil)

	require.Equal(t, 2, g.TimeLeft())

	for i := 0; i < 19; i++ {
		g.Step(core.NewInputFrame())
	}
	require.False(t, g.State().GameOver, "game ended before the timer ran out")
	assert.Equal(t, 1, g.TimeLeft())

	g.Step(core.NewInputFrame())
	require.True(t, g.State().GameOver, "game should end when the timer runs out")
	assert.Equal(t, StateTimeUp, g.Snapshot().State)

	g.Step(core.NewInputFrame())
	var reasons []EndReason
	for _, ev := range eventsOf[GameOverEvent](rec) {
		reasons = append(reasons, ev.Reason)
	}
	assert.Equal(t, []EndReason{EndTimeUp}, reasons)

	press(g, core.ActionUndo)
	assert.True(t, g.State().GameOver, "undo must not revive a game that timed out")
}

func TestPauseStopsTimer(t *testing.T) {
	cfg := testCfg
	cfg.TickRate = 10
	cfg.TimerSeconds = 1
	g, _ := newTestGame(t, ModeTimeAttack, cfg, nil)

	press(g, core.ActionPause)
	for i := 0; i < 50; i++ {
		g.Step(core.NewInputFrame())
	}
	assert.False(t, g.State().GameOver, "timer should not run while paused")
	assert.True(t, g.State().Paused)
}

func TestDailyUsesChallenge(t *testing.T) {
	g, _ := newTestGame(t, ModeDaily, testCfg, nil)

	d := g.Daily()
	require.NotNil(t, d, "daily game should expose its challenge")
	assert.Equal(t, "2026-01-01", d.Date)
	assert.Equal(t, 3, d.GridSize)
	assert.Equal(t, 5000, d.TargetScore)
	assert.Equal(t, 3, g.Size())
	assert.Equal(t, "classic_3x3", g.ScoreKey())

	other, _ := newTestGame(t, ModeDaily, core.RuntimeConfig{ScreenW: 80, ScreenH: 24, Seed: 7}, nil)
	assert.Equal(t, g.Session().State(), other.Session().State(), "every daily player should get the same opening board")
}

func TestDailyDisallowsUndo(t *testing.T) {
	g, _ := newTestGame(t, ModeDaily, testCfg, [][]int{
		{2, 2, 0},
		{0, 0, 0},
		{0, 0, 0},
	})

	press(g, core.ActionLeft)
	settle(g)
	press(g, core.ActionUndo)

	assert.Equal(t, 4, g.State().Score, "undo should be ignored in daily mode")
	assert.False(t, g.Snapshot().CanUndo)
}

func TestDailyCompletesOnWin(t *testing.T) {
	g, rec := newTestGame(t, ModeDaily, testCfg, [][]int{
		{1024, 1024, 0},
		{0, 0, 0},
		{0, 0, 0},
	})

	press(g, core.ActionLeft)

	done := eventsOf[DailyCompleteEvent](rec)
	require.Len(t, done, 1)
	assert.Equal(t, "2026-01-01", done[0].Daily.Date)
	assert.Equal(t, 2048, done[0].Score)
}

func TestDailyOffersNoRestart(t *testing.T) {
	daily, _ := newTestGame(t, ModeDaily, testCfg, nil)
	assert.NotContains(t, daily.Controls(), "Restart")

	classic, _ := newTestGame(t, ModeClassic, testCfg, nil)
	assert.Contains(t, classic.Controls(), "R: Restart")
	assert.Contains(t, classic.Controls(), "U: Undo")
}

func TestScreenTooSmall(t *testing.T) {
	cfg := testCfg
	cfg.ScreenW = 20
	cfg.ScreenH = 10
	g, _ := newTestGame(t, ModeClassic, cfg, nil)

	assert.True(t, g.State().Paused, "a small screen should pause the game")
	assert.Equal(t, StatePausedSmall, g.Snapshot().State)
	assert.False(t, press(g, core.ActionLeft).Moved)
}

func TestRender(t *testing.T) {
	g, _ := newTestGame(t, ModeClassic, testCfg, [][]int{
		{2048, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 4},
	})
	g.SetBest(9000)

	screen := core.NewScreen(testCfg.ScreenW, testCfg.ScreenH)
	g.Render(screen)
	out := screen.String()

	for _, want := range []string{"MergeGrid 4x4", "Score: 0", "Best: 9000", "2048", "┌"} {
		assert.Contains(t, out, want)
	}
}

func TestSnapshot(t *testing.T) {
	g, _ := newTestGame(t, ModeClassic, testCfg, nil)

	snap := g.Snapshot()
	assert.Equal(t, ModeClassic, snap.Mode)
	assert.Equal(t, 4, snap.Size)
	assert.Len(t, snap.Board, 4)
	assert.Equal(t, StatePlaying, snap.State)
	assert.Contains(t, []int{2, 4}, snap.MaxTile)
}
