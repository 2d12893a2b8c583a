package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/mergegrid/internal/core"
)

type stubGame struct {
	id    string
	title string
	state core.GameState
}

func (g *stubGame) ID() string               { return g.id }
func (g *stubGame) Title() string            { return g.title }
func (g *stubGame) Reset(core.RuntimeConfig) { g.state = core.GameState{} }
func (g *stubGame) Render(*core.Screen)      {}
func (g *stubGame) State() core.GameState    { return g.state }
func (g *stubGame) Step(core.InputFrame) core.StepResult {
	g.state.Score++
	return core.StepResult{State: g.state, Moved: true}
}

func stubFactory(id, title string) Factory {
	return func() Game { return &stubGame{id: id, title: title} }
}

func TestRegisterCreateAndList(t *testing.T) {
	Register("test_zen", stubFactory("test_zen", "Zen"))
	Register("test_blitz", stubFactory("test_blitz", "Blitz"))

	assert.True(t, Exists("test_zen"))
	assert.False(t, Exists("test_missing"))

	g, err := Create("test_blitz")
	require.NoError(t, err)
	assert.Equal(t, "Blitz", g.Title())

	// Every Create returns a fresh instance.
	g.Step(core.NewInputFrame())
	again, err := Create("test_blitz")
	require.NoError(t, err)
	assert.Equal(t, 0, again.State().Score)

	var ids []string
	for _, info := range List() {
		ids = append(ids, info.ID)
	}
	assert.IsIncreasing(t, ids)
	assert.Contains(t, List(), GameInfo{ID: "test_zen", Title: "Zen"})
}

func TestCreateUnknown(t *testing.T) {
	_, err := Create("test_nope")
	assert.ErrorContains(t, err, `unknown mode "test_nope"`)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("test_dup", stubFactory("test_dup", "Dup"))
	assert.Panics(t, func() {
		Register("test_dup", stubFactory("test_dup", "Dup"))
	})
}
