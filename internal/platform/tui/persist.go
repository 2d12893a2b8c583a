package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergegrid/internal/games/t2048"
	"github.com/vovakirdan/mergegrid/internal/storage"
)

// Recorder writes a solo game's progress to the player's profile:
// the resume snapshot after every turn, the score when the game ends and
// daily completions. Storage errors are logged, never returned to play.
type Recorder struct {
	profile *storage.Profile
	game    *t2048.Game
	logger  *log.Logger
	scored  bool
}

// NewRecorder returns a recorder for game. A nil profile records nothing.
func NewRecorder(profile *storage.Profile, game *t2048.Game, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{profile: profile, game: game, logger: logger}
}

// OnGameEvent implements t2048.Listener.
func (r *Recorder) OnGameEvent(e t2048.Event) {
	if r.profile == nil {
		return
	}
	mode := r.game.Mode()

	switch ev := e.(type) {
	case t2048.TurnEvent, t2048.UndoEvent:
		if mode.Persist {
			r.saveResume()
		}
	case t2048.GameOverEvent:
		r.saveScore(ev.Family, ev.Size, ev.Score, ev.MaxTile)
		if mode.Persist {
			r.clearResume()
		}
	case t2048.DailyCompleteEvent:
		if err := r.profile.CompleteDaily(ev.Daily.Date, ev.Daily.GridSize, ev.Score); err != nil {
			r.logger.Warn("cannot record daily challenge", "date", ev.Daily.Date, "err", err)
		}
	}
}

// Abandon records the score of a game left before it ended and drops its
// resume snapshot. Used when the player restarts.
func (r *Recorder) Abandon() {
	if r.profile == nil {
		return
	}
	if !r.scored {
		s := r.game.Session()
		mode := r.game.Mode()
		r.saveScore(mode.Family, s.Size(), s.Score(), s.MaxTile())
	}
	if r.game.Mode().Persist {
		r.clearResume()
	}
	r.scored = false
}

// Rearm allows the next game over to be scored again.
func (r *Recorder) Rearm() {
	r.scored = false
}

func (r *Recorder) saveScore(family t2048.Family, size, score, maxTile int) {
	if r.scored || score <= 0 {
		return
	}
	r.scored = true
	key := t2048.ScoreKey(family, size)
	if _, err := r.profile.SaveScore(key, score, maxTile); err != nil {
		r.logger.Warn("cannot save score", "key", key, "err", err)
	}
}

func (r *Recorder) saveResume() {
	key := t2048.ResumeKey(r.game.Mode().Family, r.game.Size())
	if err := r.profile.SaveResume(key, r.game.ResumeState()); err != nil {
		r.logger.Warn("cannot save game", "slot", key, "err", err)
	}
}

func (r *Recorder) clearResume() {
	key := t2048.ResumeKey(r.game.Mode().Family, r.game.Size())
	if err := r.profile.ClearResume(key); err != nil {
		r.logger.Warn("cannot clear saved game", "slot", key, "err", err)
	}
}

// LoadResume returns the saved game for mode and size, if any.
func LoadResume(profile *storage.Profile, mode t2048.Mode, size int) (t2048.ResumeState, bool) {
	var st t2048.ResumeState
	if profile == nil || !mode.Persist {
		return st, false
	}
	ok, err := profile.LoadResume(t2048.ResumeKey(mode.Family, size), &st)
	if err != nil || !ok || st.Size != size || st.Over {
		return t2048.ResumeState{}, false
	}
	return st, true
}

// ErrDailyCompleted is returned when today's challenge was already played.
var ErrDailyCompleted = errors.New("today's challenge is already completed, come back tomorrow")

// DailyResult returns the player's recorded result for the challenge of the
// day containing now, or nil if it has not been played. A nil profile has
// no results.
func DailyResult(profile *storage.Profile, now time.Time) (*storage.DailyResult, error) {
	if profile == nil {
		return nil, nil
	}
	return profile.DailyCompleted(t2048.DailyFor(now).Date)
}

var _ t2048.Listener = (*Recorder)(nil)
