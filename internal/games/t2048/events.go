package t2048

// EndReason says why a game finished.
type EndReason string

const (
	EndNoMoves EndReason = "no_moves"
	EndTimeUp  EndReason = "time_up"
)

// Event is delivered to listeners after the game has applied a change.
type Event interface {
	isEvent()
}

// TurnEvent follows every accepted move.
type TurnEvent struct {
	Mode    ModeID
	Size    int
	Score   int
	MaxTile int
	Merges  []MergeEvent
	State   SavedState
}

// WinEvent is sent the first time the win tile appears.
type WinEvent struct {
	Mode        ModeID
	Size        int
	Score       int
	UndoAllowed bool
	UndoUsed    bool
}

// GameOverEvent is sent once when a game ends.
type GameOverEvent struct {
	Mode     ModeID
	Family   Family
	Size     int
	Score    int
	MaxTile  int
	Won      bool
	UndoUsed bool
	Reason   EndReason
	Daily    *Daily // set for daily challenge games
}

// DailyCompleteEvent is sent when a daily challenge game is won or ends.
// It can follow a win and later a game over for the same date.
type DailyCompleteEvent struct {
	Daily Daily
	Score int
}

// UndoEvent follows a successful undo.
type UndoEvent struct {
	Mode  ModeID
	State SavedState
}

func (TurnEvent) isEvent()     {}
func (WinEvent) isEvent()      {}
func (GameOverEvent) isEvent() {}
func (UndoEvent) isEvent()     {}

func (DailyCompleteEvent) isEvent() {}

// Listener receives game events. Listeners cannot change game state.
type Listener interface {
	OnGameEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// OnGameEvent calls f(e).
func (f ListenerFunc) OnGameEvent(e Event) { f(e) }
