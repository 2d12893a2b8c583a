package tui

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/mergegrid/internal/config"
	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func openProfile(t *testing.T) *storage.Profile {
	t.Helper()
	return openStore(t).Profile("alice")
}

func newTestGame(id t2048.ModeID) *t2048.Game {
	g := t2048.New(t2048.MustMode(id), t2048.DefaultSettings())
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 7})
	return g
}

func TestRecorderSavesAndClearsResume(t *testing.T) {
	profile := openProfile(t)
	game := newTestGame(t2048.ModeClassic)
	rec := NewRecorder(profile, game, nil)
	mode := game.Mode()

	rec.OnGameEvent(t2048.TurnEvent{Mode: mode.ID, Size: 4})

	st, ok := LoadResume(profile, mode, 4)
	require.True(t, ok, "expected a saved game after a turn")
	assert.Equal(t, game.Session().Score(), st.Score)
	assert.Equal(t, 4, st.Size)

	_, ok = LoadResume(profile, mode, 5)
	assert.False(t, ok, "a 4x4 save must not resume a 5x5 game")

	rec.OnGameEvent(t2048.GameOverEvent{Mode: mode.ID, Family: mode.Family, Size: 4, Score: 120, MaxTile: 32})
	_, ok = LoadResume(profile, mode, 4)
	assert.False(t, ok, "game over should clear the saved game")
}

func TestRecorderScoresOncePerGame(t *testing.T) {
	profile := openProfile(t)
	game := newTestGame(t2048.ModeClassic)
	rec := NewRecorder(profile, game, nil)
	over := func(score int) t2048.GameOverEvent {
		return t2048.GameOverEvent{Family: t2048.FamilyClassic, Size: 4, Score: score, MaxTile: 64}
	}

	rec.OnGameEvent(over(300))
	rec.OnGameEvent(over(500))

	best, err := profile.BestScore("classic_4x4")
	require.NoError(t, err)
	assert.Equal(t, 300, best, "second game over ignored")

	rec.Rearm()
	rec.OnGameEvent(over(500))
	best, _ = profile.BestScore("classic_4x4")
	assert.Equal(t, 500, best)
}

func TestRecorderTimeAttackNeverPersists(t *testing.T) {
	profile := openProfile(t)
	game := newTestGame(t2048.ModeTimeAttack)
	rec := NewRecorder(profile, game, nil)

	rec.OnGameEvent(t2048.TurnEvent{Mode: t2048.ModeTimeAttack, Size: 4})
	_, ok := LoadResume(profile, t2048.MustMode(t2048.ModeClassic), 4)
	assert.False(t, ok, "time attack must not write the classic save slot")
	_, ok = LoadResume(profile, game.Mode(), 4)
	assert.False(t, ok, "time attack has no saved games")

	rec.OnGameEvent(t2048.GameOverEvent{Family: t2048.FamilyTimeAttack, Size: 4, Score: 64})
	best, _ := profile.BestScore("timeattack_4x4")
	assert.Equal(t, 64, best)
}

func TestRecorderDailyCompletion(t *testing.T) {
	profile := openProfile(t)
	game := newTestGame(t2048.ModeDaily)
	rec := NewRecorder(profile, game, nil)

	rec.OnGameEvent(t2048.DailyCompleteEvent{Daily: t2048.Daily{Date: "2026-10-18", GridSize: 5}, Score: 900})

	r, err := profile.DailyCompleted("2026-10-18")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 900, r.Score)
	assert.Equal(t, 5, r.GridSize)
}

func TestRecorderAbandonScoresUnfinishedGame(t *testing.T) {
	profile := openProfile(t)
	game := newTestGame(t2048.ModeClassic)
	rec := NewRecorder(profile, game, nil)

	frame := core.NewInputFrame()
	for _, a := range []core.Action{core.ActionLeft, core.ActionUp, core.ActionRight, core.ActionDown} {
		frame.Clear()
		frame.Set(a)
		game.Step(frame)
	}
	rec.OnGameEvent(t2048.TurnEvent{})
	score := game.Session().Score()

	rec.Abandon()

	_, ok := LoadResume(profile, game.Mode(), 4)
	assert.False(t, ok, "Abandon should drop the saved game")
	if score > 0 {
		best, _ := profile.BestScore("classic_4x4")
		assert.Equal(t, score, best, "abandoned score")
	}
}

func TestRecorderWithoutProfile(t *testing.T) {
	game := newTestGame(t2048.ModeClassic)
	rec := NewRecorder(nil, game, nil)

	assert.NotPanics(t, func() {
		rec.OnGameEvent(t2048.TurnEvent{})
		rec.OnGameEvent(t2048.GameOverEvent{Score: 10})
		rec.Abandon()
	})

	_, ok := LoadResume(nil, game.Mode(), 4)
	assert.False(t, ok)
}

func TestDailyResult(t *testing.T) {
	profile := openProfile(t)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	r, err := DailyResult(profile, now)
	require.NoError(t, err)
	require.Nil(t, r, "nothing recorded yet")

	d := t2048.DailyFor(now)
	require.NoError(t, profile.CompleteDaily(d.Date, d.GridSize, 640))

	r, err = DailyResult(profile, now.Add(6*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, r, "later that day")
	assert.Equal(t, 640, r.Score)

	r, err = DailyResult(profile, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, r, "tomorrow's challenge should be open")

	r, err = DailyResult(nil, now)
	assert.NoError(t, err)
	assert.Nil(t, r)
}

func TestNewModelRefusesCompletedDaily(t *testing.T) {
	env := NewEnv("alice", openStore(t), config.DefaultConfig(), nil, log.New(io.Discard))
	rc := core.RuntimeConfig{ScreenW: 80, ScreenH: 30, TickRate: 60}
	daily := GameOptions{Mode: t2048.ModeDaily, Fresh: true}

	_, err := NewModel(env, daily, rc)
	require.NoError(t, err, "first attempt of the day")

	d := t2048.DailyFor(time.Now())
	require.NoError(t, env.Profile.CompleteDaily(d.Date, d.GridSize, 300))

	_, err = NewModel(env, daily, rc)
	assert.ErrorIs(t, err, ErrDailyCompleted)

	_, err = NewModel(env, GameOptions{Mode: t2048.ModeClassic}, rc)
	assert.NoError(t, err, "classic should still start")
}
