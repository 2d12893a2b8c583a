package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergegrid/internal/games/t2048"
)

const defaultTimeout = 2 * time.Second

// Listener submits finished games without blocking play.
// Failures are logged and dropped.
type Listener struct {
	sub     Submitter
	player  string
	timeout time.Duration
	logger  *log.Logger
	wg      sync.WaitGroup
}

// NewListener returns a listener submitting scores for player.
func NewListener(sub Submitter, player string, timeout time.Duration) *Listener {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if player == "" {
		player = "anonymous"
	}
	return &Listener{sub: sub, player: player, timeout: timeout, logger: log.Default()}
}

// SetLogger replaces the logger used for failed submissions.
func (l *Listener) SetLogger(logger *log.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// OnGameEvent implements t2048.Listener.
func (l *Listener) OnGameEvent(e t2048.Event) {
	over, ok := e.(t2048.GameOverEvent)
	if !ok || over.Score <= 0 {
		return
	}
	boards := []string{Board(over.Family, over.Size)}
	if over.Daily != nil {
		boards = append(boards, DailyBoard(over.Daily.Date))
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		for _, board := range boards {
			if err := l.sub.Submit(ctx, board, l.player, over.Score); err != nil {
				l.logger.Warn("leaderboard submit failed", "board", board, "err", err)
			}
		}
	}()
}

// Wait blocks until pending submissions finish.
func (l *Listener) Wait() {
	l.wg.Wait()
}

var _ t2048.Listener = (*Listener)(nil)
