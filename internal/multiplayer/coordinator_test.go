package multiplayer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/mergegrid/internal/core"
)

type stubSnapshot struct{ tick int }

func (stubSnapshot) IsGameSnapshot() {}

// stubGame ends after a fixed number of ticks; Player1 scores one point per
// tick in which it pressed a direction.
type stubGame struct {
	cfg    core.RuntimeConfig
	length int
	tick   int
	score1 int
}

func (g *stubGame) Reset(cfg core.RuntimeConfig) { g.cfg = cfg }

func (g *stubGame) StepMulti(in core.MultiInputFrame) core.StepResult {
	g.tick++
	if in.Player1().Has(core.ActionLeft) {
		g.score1++
	}
	return core.StepResult{}
}

func (g *stubGame) Snapshot() GameSnapshot { return stubSnapshot{tick: g.tick} }
func (g *stubGame) IsGameOver() bool       { return g.tick >= g.length }
func (g *stubGame) Score1() int            { return g.score1 }
func (g *stubGame) Score2() int            { return 0 }

func (g *stubGame) Winner() PlayerID {
	if g.score1 > 0 {
		return Player1
	}
	return 0
}

type chanSaver struct {
	results chan MatchResultData
}

func (s *chanSaver) SaveMatchResult(r MatchResultData) error {
	s.results <- r
	return nil
}

type testServer struct {
	coord    *Coordinator
	sessions *SessionRegistry
	configs  chan core.RuntimeConfig
}

func newTestServer(t *testing.T, length int) *testServer {
	t.Helper()
	ts := &testServer{
		sessions: NewSessionRegistry(),
		configs:  make(chan core.RuntimeConfig, 4),
	}
	factory := func(gameID string, cfg core.RuntimeConfig) (OnlineGame, error) {
		if gameID != "versus" {
			return nil, errors.New("unknown game")
		}
		ts.configs <- cfg
		g := &stubGame{length: length}
		g.Reset(cfg)
		return g, nil
	}
	ts.coord = NewCoordinator(CoordinatorConfig{
		LobbyTimeout: time.Minute,
		TickRate:     200,
	}, factory, ts.sessions)
	ts.coord.Start()
	t.Cleanup(ts.coord.Stop)
	return ts
}

func (ts *testServer) connect(t *testing.T, name string) *ChannelSession {
	t.Helper()
	s := NewChannelSession(NewSessionID(), name, 512)
	ts.sessions.Register(s)
	t.Cleanup(s.Close)
	return s
}

// next skips events until one of type T arrives.
func next[T SessionEvent](t *testing.T, s *ChannelSession) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-s.Events():
			if v, ok := e.(T); ok {
				return v
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestJoinCodes(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code := generateJoinCode()
		require.True(t, ValidCode(code), "bad code %q", code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190, "codes should rarely repeat")

	assert.Equal(t, "ABC234", NormalizeCode("  abc234 "))
	assert.False(t, ValidCode("ABC23"))
	assert.False(t, ValidCode("ABC0O1"), "0, O and 1 are not in the alphabet")
}

func TestLobbyToMatch(t *testing.T) {
	ts := newTestServer(t, 100)
	saver := &chanSaver{results: make(chan MatchResultData, 1)}
	ts.coord.SetResultSaver(saver)

	host := ts.connect(t, "alice")
	guest := ts.connect(t, "bob")
	settings := LobbySettings{GridSize: 5, TimerSeconds: 30}

	ts.coord.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "versus", Settings: settings})
	created := next[LobbyCreatedEvent](t, host)
	require.True(t, ValidCode(created.Code))
	assert.Equal(t, settings, created.Settings)

	lobby, ok := ts.coord.GetLobby(created.Code)
	require.True(t, ok)
	assert.Equal(t, host.ID(), lobby.Host.ID())

	ts.coord.Send(JoinLobbyMsg{SessionID: guest.ID(), Code: " " + created.Code})

	hostJoined := next[LobbyJoinedEvent](t, host)
	guestJoined := next[LobbyJoinedEvent](t, guest)
	assert.Equal(t, Player1, hostJoined.Side)
	assert.Equal(t, Player2, guestJoined.Side)
	assert.Equal(t, guest.ID(), hostJoined.OpponentID)
	assert.Equal(t, "bob", hostJoined.OpponentName)
	assert.Equal(t, "alice", guestJoined.OpponentName)
	assert.Equal(t, settings, guestJoined.Settings)

	started := next[MatchStartedEvent](t, host)
	assert.Equal(t, Player1, started.Side)
	assert.Equal(t, settings, started.Settings)
	assert.Equal(t, Player2, next[MatchStartedEvent](t, guest).Side)

	cfg := <-ts.configs
	assert.Equal(t, 5, cfg.GridSize)
	assert.Equal(t, 30, cfg.TimerSeconds)

	input := core.NewInputFrame()
	input.Set(core.ActionLeft)
	ts.coord.Send(PlayerInputMsg{MatchID: started.MatchID, Player: Player1, Input: input})

	ended := next[MatchEndedEvent](t, guest)
	assert.Equal(t, MatchEndReasonCompleted, ended.Reason)
	assert.Equal(t, Player1, ended.Winner)
	assert.Equal(t, 1, ended.Score1)

	select {
	case res := <-saver.results:
		assert.Equal(t, string(started.MatchID), res.MatchID)
		assert.Equal(t, 5, res.GridSize)
		assert.Equal(t, string(host.ID()), res.WinnerSession)
		assert.Equal(t, "Match completed", res.EndReason)
	case <-time.After(2 * time.Second):
		t.Fatal("match result was not saved")
	}

	assert.Equal(t, 0, ts.coord.LobbyCount())
	assert.Eventually(t, func() bool { return ts.coord.MatchCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestRematch(t *testing.T) {
	ts := newTestServer(t, 5)
	host := ts.connect(t, "alice")
	guest := ts.connect(t, "bob")
	settings := LobbySettings{GridSize: 3, TimerSeconds: 60}

	ts.coord.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "versus", Settings: settings})
	code := next[LobbyCreatedEvent](t, host).Code
	ts.coord.Send(JoinLobbyMsg{SessionID: guest.ID(), Code: code})
	first := next[MatchStartedEvent](t, host)
	next[MatchEndedEvent](t, host)
	next[MatchEndedEvent](t, guest)

	ts.coord.Send(ReadyForRematchMsg{SessionID: host.ID(), MatchID: first.MatchID})
	pending := next[RematchPendingEvent](t, guest)
	assert.Equal(t, code, pending.Code)

	ts.coord.Send(ReadyForRematchMsg{SessionID: guest.ID(), MatchID: first.MatchID})
	second := next[MatchStartedEvent](t, host)
	assert.NotEqual(t, first.MatchID, second.MatchID)
	assert.Equal(t, Player1, second.Side, "sides are kept for the rematch")
	assert.Equal(t, settings, second.Settings)
	assert.Equal(t, Player2, next[MatchStartedEvent](t, guest).Side)
}

func TestLobbyErrors(t *testing.T) {
	ts := newTestServer(t, 5)
	host := ts.connect(t, "alice")
	guest := ts.connect(t, "bob")

	ts.coord.Send(JoinLobbyMsg{SessionID: guest.ID(), Code: "ZZZZZZ"})
	assert.Equal(t, "Lobby not found", next[LobbyErrorEvent](t, guest).Message)

	ts.coord.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "versus"})
	code := next[LobbyCreatedEvent](t, host).Code

	ts.coord.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "versus"})
	assert.Equal(t, "Already in a lobby", next[LobbyErrorEvent](t, host).Message)

	ts.coord.Send(ReadyForRematchMsg{SessionID: guest.ID(), MatchID: "missing"})
	assert.Equal(t, "Rematch no longer available", next[LobbyErrorEvent](t, guest).Message)

	ts.coord.Send(SessionDisconnectedMsg{SessionID: host.ID()})
	assert.Eventually(t, func() bool {
		_, ok := ts.coord.GetLobby(code)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestUnknownGame(t *testing.T) {
	ts := newTestServer(t, 5)
	host := ts.connect(t, "alice")
	guest := ts.connect(t, "bob")

	ts.coord.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "tetris"})
	code := next[LobbyCreatedEvent](t, host).Code
	ts.coord.Send(JoinLobbyMsg{SessionID: guest.ID(), Code: code})

	assert.Equal(t, "Failed to create game", next[LobbyErrorEvent](t, guest).Message)
	assert.Equal(t, 0, ts.coord.MatchCount())
}

func TestDisconnectForfeits(t *testing.T) {
	ts := newTestServer(t, 1_000_000)
	host := ts.connect(t, "alice")
	guest := ts.connect(t, "bob")

	ts.coord.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "versus"})
	code := next[LobbyCreatedEvent](t, host).Code
	ts.coord.Send(JoinLobbyMsg{SessionID: guest.ID(), Code: code})
	next[MatchStartedEvent](t, host)

	guest.Close()

	ended := next[MatchEndedEvent](t, host)
	assert.Equal(t, MatchEndReasonDisconnect, ended.Reason)
	assert.Equal(t, Player1, ended.Winner)
}

func TestCleanupExpired(t *testing.T) {
	ts := newTestServer(t, 5)
	host := ts.connect(t, "alice")

	ts.coord.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "versus"})
	next[LobbyCreatedEvent](t, host)

	ts.coord.cleanupExpired(time.Now().Add(2 * time.Minute))
	assert.Equal(t, "Lobby expired", next[LobbyErrorEvent](t, host).Message)
	assert.Equal(t, 0, ts.coord.LobbyCount())
}
