package leaderboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/mergegrid/internal/config"
	"github.com/vovakirdan/mergegrid/internal/games/t2048"
)

type submission struct {
	board  string
	player string
	score  int
}

type recorder struct {
	mu   sync.Mutex
	got  []submission
	fail bool
}

func (r *recorder) Submit(_ context.Context, board, player string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("unreachable")
	}
	r.got = append(r.got, submission{board, player, score})
	return nil
}

func (r *recorder) Top(context.Context, string, int) ([]Entry, error) { return nil, nil }
func (r *recorder) Close() error                                      { return nil }

func TestBoardNames(t *testing.T) {
	assert.Equal(t, "classic_4x4", Board(t2048.FamilyClassic, 4))
	assert.Equal(t, "timeattack_6x6", Board(t2048.FamilyTimeAttack, 6))
	assert.Equal(t, "daily_2026-02-11", DailyBoard("2026-02-11"))
}

func TestRedisKeys(t *testing.T) {
	r := NewRedis(config.LeaderboardConfig{Addr: "localhost:6379", KeyPrefix: "mergegrid"})
	defer r.Close()
	assert.Equal(t, "mergegrid:leaderboard:classic_4x4", r.Key("classic_4x4"))

	r = NewRedis(config.LeaderboardConfig{Addr: "localhost:6379", KeyPrefix: "mg:"})
	defer r.Close()
	assert.Equal(t, "mg:leaderboard:daily_2026-01-01", r.Key("daily_2026-01-01"))

	r = NewRedis(config.LeaderboardConfig{Addr: "localhost:6379"})
	defer r.Close()
	assert.Equal(t, "leaderboard:classic_3x3", r.Key("classic_3x3"))
}

func TestNewDisabledIsNop(t *testing.T) {
	sub := New(config.LeaderboardConfig{Enabled: false, Addr: "localhost:6379"})
	require.IsType(t, Nop{}, sub)
	assert.NoError(t, sub.Submit(context.Background(), "classic_4x4", "p", 10))
	top, err := sub.Top(context.Background(), "classic_4x4", 5)
	assert.NoError(t, err)
	assert.Empty(t, top)

	_, ok := New(config.LeaderboardConfig{Enabled: true, Addr: "localhost:6379"}).(*Redis)
	assert.True(t, ok)
}

func TestListenerSubmitsOnGameOver(t *testing.T) {
	rec := &recorder{}
	l := NewListener(rec, "", time.Second)

	l.OnGameEvent(t2048.TurnEvent{Score: 100})
	l.OnGameEvent(t2048.GameOverEvent{Family: t2048.FamilyClassic, Size: 4, Score: 0})
	l.OnGameEvent(t2048.GameOverEvent{Family: t2048.FamilyClassic, Size: 4, Score: 512})
	l.OnGameEvent(t2048.GameOverEvent{
		Family: t2048.FamilyClassic,
		Size:   5,
		Score:  3000,
		Daily:  &t2048.Daily{Date: "2026-01-03", GridSize: 5},
	})
	l.Wait()

	assert.ElementsMatch(t, []submission{
		{"classic_4x4", "anonymous", 512},
		{"classic_5x5", "anonymous", 3000},
		{"daily_2026-01-03", "anonymous", 3000},
	}, rec.got)
}

func TestListenerSwallowsErrors(t *testing.T) {
	rec := &recorder{fail: true}
	l := NewListener(rec, "zoe", 0)

	assert.NotPanics(t, func() {
		l.OnGameEvent(t2048.GameOverEvent{Family: t2048.FamilyTimeAttack, Size: 4, Score: 64})
		l.Wait()
	})
	assert.Empty(t, rec.got)
}
