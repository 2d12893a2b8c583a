package t2048

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/mergegrid/internal/core"
)

func newTestVersus(t *testing.T, timer int) *Versus {
	t.Helper()
	v := NewVersus(DefaultSettings(), timer)
	v.Reset(core.RuntimeConfig{TickRate: 10, Seed: 7, GridSize: 4})
	return v
}

func frame(p1, p2 core.Action) core.MultiInputFrame {
	in := core.NewMultiInputFrame()
	for id, a := range map[core.PlayerID]core.Action{core.Player1: p1, core.Player2: p2} {
		if a == core.ActionNone {
			continue
		}
		f := core.NewInputFrame()
		f.Set(a)
		in.SetPlayer(id, f)
	}
	return in
}

func TestVersusSameSeedSameBoards(t *testing.T) {
	v := newTestVersus(t, 30)
	snap := v.Snapshot().(VersusSnapshot)

	assert.Equal(t, snap.Boards[0], snap.Boards[1], "boards differ at start")
	assert.Equal(t, 4, snap.Size)
	assert.Equal(t, 30, snap.TimeLeft)

	// Identical inputs keep the boards in lockstep.
	for _, a := range []core.Action{core.ActionLeft, core.ActionUp, core.ActionRight, core.ActionDown} {
		v.StepMulti(frame(a, a))
	}
	snap = v.Snapshot().(VersusSnapshot)
	assert.Equal(t, snap.Boards[0], snap.Boards[1], "same inputs on same seed")
	assert.Equal(t, snap.Scores[0], snap.Scores[1])
}

func TestVersusPlayersMoveIndependently(t *testing.T) {
	v := newTestVersus(t, 30)
	before := v.Snapshot().(VersusSnapshot)

	// At least one of the four directions moves a two-tile board.
	for _, a := range []core.Action{core.ActionLeft, core.ActionRight, core.ActionUp, core.ActionDown} {
		if v.StepMulti(frame(a, core.ActionNone)).Moved {
			break
		}
	}

	after := v.Snapshot().(VersusSnapshot)
	assert.NotEqual(t, before.Boards[0], after.Boards[0], "player 1 board should have changed")
	assert.Equal(t, before.Boards[1], after.Boards[1], "player 2 board should not change without input")
}

func TestVersusTimerEndsMatch(t *testing.T) {
	v := newTestVersus(t, 1)

	for i := 0; i < 9; i++ {
		require.False(t, v.StepMulti(core.MultiInputFrame{}).State.GameOver, "match ended early at step %d", i)
	}
	assert.Zero(t, v.Winner(), "no winner while the match runs")

	res := v.StepMulti(core.MultiInputFrame{})
	require.True(t, res.State.GameOver)
	require.True(t, v.IsGameOver())
	assert.Zero(t, v.Winner(), "equal scores should draw")

	snap := v.Snapshot().(VersusSnapshot)
	assert.True(t, snap.Finished)
	assert.True(t, snap.Over[0])
	assert.True(t, snap.Over[1])
	assert.Zero(t, snap.TimeLeft)

	assert.False(t, v.StepMulti(frame(core.ActionLeft, core.ActionLeft)).Moved, "moves after the match should be ignored")
}

func TestVersusWinner(t *testing.T) {
	v := newTestVersus(t, 60)
	v.players[0] = restored(t, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 0)
	v.players[1] = restored(t, [][]int{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 0)

	v.StepMulti(frame(core.ActionLeft, core.ActionRight))
	v.players[0].ForceOver()
	v.players[1].ForceOver()
	v.StepMulti(core.MultiInputFrame{})

	require.True(t, v.IsGameOver(), "match should end once both boards are over")
	assert.Equal(t, 4, v.Score1())
	assert.Zero(t, v.Score2())
	assert.Equal(t, core.Player1, v.Winner())
}

func TestRenderVersus(t *testing.T) {
	v := newTestVersus(t, 60)
	snap := v.Snapshot().(VersusSnapshot)

	wide := core.NewScreen(100, 24)
	RenderVersus(wide, snap, core.Player2)
	out := wide.String()
	for _, want := range []string{"Head to Head", "You: 0", "Opponent: 0", "Time: 60s"} {
		assert.Contains(t, out, want)
	}

	narrow := core.NewScreen(40, 24)
	RenderVersus(narrow, snap, core.Player1)
	assert.Contains(t, narrow.String(), "(max ", "narrow render should summarise the opponent board")
}
