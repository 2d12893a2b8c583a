package tui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/mergegrid/internal/config"
	"github.com/vovakirdan/mergegrid/internal/core"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/storage"
)

var sessionCfg = core.RuntimeConfig{ScreenW: 80, ScreenH: 30, TickRate: 60}

func newTestSession(t *testing.T) SessionModel {
	t.Helper()
	env := NewEnv("tester", nil, config.DefaultConfig(), nil, log.New(io.Discard))
	return NewSessionModel(env, sessionCfg, nil)
}

// newStoredSession is newTestSession backed by a temporary database.
func newStoredSession(t *testing.T) (SessionModel, *storage.Profile) {
	t.Helper()
	env := NewEnv("tester", openStore(t), config.DefaultConfig(), nil, log.New(io.Discard))
	return NewSessionModel(env, sessionCfg, nil), env.Profile
}

func press(t *testing.T, m SessionModel, msgs ...tea.Msg) SessionModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(SessionModel)
		require.True(t, ok, "Update returned %T", next)
	}
	return m
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func TestSessionMenuHidesVersusOffline(t *testing.T) {
	m := newTestSession(t)
	for _, item := range m.menu.items {
		assert.NotEqual(t, t2048.ModeVersus, item.Mode, "head to head needs the SSH server")
	}
}

func TestSessionScoreboardAndBack(t *testing.T) {
	m := press(t, newTestSession(t), keyTab)
	require.Equal(t, screenScoreboard, m.screen)

	m = press(t, m, keyEsc)
	assert.Equal(t, screenMenu, m.screen)
	assert.False(t, m.quitting, "backing out of the scoreboard must not end the session")
}

func TestSessionAchievementsAndBack(t *testing.T) {
	m := press(t, newTestSession(t), runeKey("t"))
	require.Equal(t, screenAchievements, m.screen)

	m = press(t, m, runeKey("b"))
	assert.Equal(t, screenMenu, m.screen)
}

func TestSessionStartsClassicFromOptions(t *testing.T) {
	m := press(t, newTestSession(t), keyEnter)
	require.Equal(t, screenOptions, m.screen)

	// Grid row, then the start row.
	m = press(t, m, keyDown, keyEnter)
	require.Equal(t, screenGame, m.screen)
	require.NotNil(t, m.game)
	assert.Equal(t, t2048.ModeClassic, m.game.Game().Mode().ID)
	assert.Equal(t, 4, m.game.Game().Size(), "the configured size")

	m = press(t, m, runeKey("b"))
	assert.Equal(t, screenMenu, m.screen)
	assert.Nil(t, m.game)
}

func TestSessionDailySkipsOptions(t *testing.T) {
	m := press(t, newTestSession(t), keyDown, keyDown, keyEnter)
	require.Equal(t, screenGame, m.screen)

	g := m.game.Game()
	require.NotNil(t, g.Daily(), "daily game should carry its challenge")
	assert.Equal(t, g.Daily().GridSize, g.Size())
}

func TestSessionDailyOnceADay(t *testing.T) {
	m, profile := newStoredSession(t)
	d := t2048.DailyFor(time.Now())
	require.NoError(t, profile.CompleteDaily(d.Date, d.GridSize, 1200))

	m = press(t, m, keyDown, keyDown, keyEnter)
	assert.Equal(t, screenMenu, m.screen, "a completed challenge must not start")
	assert.Nil(t, m.game)
	assert.NotEmpty(t, m.menu.Notice())
	assert.Contains(t, m.View(), "Come back tomorrow")
}

func TestSessionDailyIgnoresRestart(t *testing.T) {
	m, _ := newStoredSession(t)
	m = press(t, m, keyDown, keyDown, keyEnter)
	require.Equal(t, screenGame, m.screen)
	before := m.game.Game().Session()

	m = press(t, m, runeKey("r"), TickMsg{})

	assert.Same(t, before, m.game.Game().Session(), "restart dealt a new daily board")
}

func TestSessionIgnoresStrayTicks(t *testing.T) {
	m := newTestSession(t)
	next, cmd := m.Update(TickMsg{})
	assert.Nil(t, cmd, "ticks outside a game should not schedule more ticks")
	assert.Equal(t, screenMenu, next.(SessionModel).screen)
}

func TestSessionQuit(t *testing.T) {
	m := press(t, newTestSession(t), runeKey("q"))
	assert.True(t, m.quitting)
	assert.Empty(t, m.View(), "quitting session should render nothing")
}
