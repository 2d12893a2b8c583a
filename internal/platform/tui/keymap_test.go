package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/vovakirdan/mergegrid/internal/core"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		name   string
		msg    tea.KeyMsg
		action core.Action
		quit   bool
	}{
		{"arrow up", tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp, false},
		{"w", runeKey("w"), core.ActionUp, false},
		{"j", runeKey("j"), core.ActionDown, false},
		{"arrow left", tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft, false},
		{"l", runeKey("l"), core.ActionRight, false},
		{"undo", runeKey("u"), core.ActionUndo, false},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, core.ActionConfirm, false},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack, false},
		{"pause", runeKey("p"), core.ActionPause, false},
		{"restart", runeKey("r"), core.ActionRestart, false},
		{"q", runeKey("q"), core.ActionQuit, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{"unbound", runeKey("x"), core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, quit := km.MapKey(tt.msg)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.quit, quit)
		})
	}
}

func TestMapKeyToFrame(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()

	assert.False(t, km.MapKeyToFrame(runeKey("a"), &frame), "a should not quit")
	km.MapKeyToFrame(runeKey("u"), &frame)
	km.MapKeyToFrame(runeKey("x"), &frame)

	assert.True(t, frame.Has(core.ActionLeft))
	assert.True(t, frame.Has(core.ActionUndo))
	assert.False(t, frame.Has(core.ActionNone), "unbound keys should not be recorded")
	assert.True(t, km.MapKeyToFrame(runeKey("q"), &frame), "q should quit")
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		msg  tea.KeyMsg
		want MenuAction
	}{
		{tea.KeyMsg{Type: tea.KeyDown}, MenuActionDown},
		{runeKey("k"), MenuActionUp},
		{runeKey("h"), MenuActionLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, MenuActionRight},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{runeKey("b"), MenuActionBack},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionScoreboard},
		{runeKey("t"), MenuActionAchievements},
		{runeKey("q"), MenuActionQuit},
		{runeKey("z"), MenuActionNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, km.MapKeyToMenuAction(tt.msg), "key %q", tt.msg.String())
	}
}
