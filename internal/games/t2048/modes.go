package t2048

import "fmt"

// ModeID names a game mode.
type ModeID string

const (
	ModeClassic    ModeID = "classic"
	ModeTimeAttack ModeID = "timeattack"
	ModeDaily      ModeID = "daily"
	ModeVersus     ModeID = "versus"
)

// Family groups modes that share best-score and resume records.
type Family string

const (
	FamilyClassic    Family = "classic"
	FamilyTimeAttack Family = "timeattack"
)

// DefaultTimerSeconds is the countdown used by timed modes unless overridden.
const DefaultTimerSeconds = 60

// TimerChoices are the countdown lengths offered when hosting a versus match.
var TimerChoices = []int{30, 60, 90, 120}

// Mode describes how the orchestration layer drives a session. The engine
// itself never looks at it.
type Mode struct {
	ID           ModeID
	Title        string
	TimerSeconds int  // 0 means untimed
	TargetScore  int  // 0 means no target
	AllowUndo    bool
	Persist      bool // keep a resume snapshot between runs
	Family       Family
}

// Timed reports whether the mode runs against a countdown.
func (m Mode) Timed() bool { return m.TimerSeconds > 0 }

var modes = map[ModeID]Mode{
	ModeClassic: {
		ID:        ModeClassic,
		Title:     "Classic",
		AllowUndo: true,
		Persist:   true,
		Family:    FamilyClassic,
	},
	ModeTimeAttack: {
		ID:           ModeTimeAttack,
		Title:        "Time Attack",
		TimerSeconds: DefaultTimerSeconds,
		AllowUndo:    true,
		Family:       FamilyTimeAttack,
	},
	ModeDaily: {
		ID:     ModeDaily,
		Title:  "Daily Challenge",
		Family: FamilyClassic,
	},
	ModeVersus: {
		ID:           ModeVersus,
		Title:        "Head to Head",
		TimerSeconds: DefaultTimerSeconds,
		Family:       FamilyTimeAttack,
	},
}

// ModeIDs lists modes in menu order.
var ModeIDs = []ModeID{ModeClassic, ModeTimeAttack, ModeDaily, ModeVersus}

// LookupMode returns the descriptor for id.
func LookupMode(id ModeID) (Mode, error) {
	m, ok := modes[id]
	if !ok {
		return Mode{}, fmt.Errorf("t2048: unknown mode %q", id)
	}
	return m, nil
}

// MustMode is LookupMode for built-in ids.
func MustMode(id ModeID) Mode {
	m, err := LookupMode(id)
	if err != nil {
		panic(err)
	}
	return m
}

// WithTimer returns a copy of m using the given countdown. Non-positive
// values keep the mode default; untimed modes stay untimed.
func (m Mode) WithTimer(seconds int) Mode {
	if m.Timed() && seconds > 0 {
		m.TimerSeconds = seconds
	}
	return m
}

// ScoreKey names the best-score record for a mode family and grid size.
func ScoreKey(family Family, size int) string {
	return fmt.Sprintf("%s_%dx%d", family, size, size)
}

// ResumeKey names the resume snapshot for a mode family and grid size.
func ResumeKey(family Family, size int) string {
	return "resume_" + ScoreKey(family, size)
}
