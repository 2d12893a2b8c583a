package t2048

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMoveSingleRow(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		dir      Direction
		expected []int
		score    int
		merges   []MergeEvent
		moved    bool
	}{
		{
			name:     "simple merge",
			input:    []int{2, 2, 0, 0},
			dir:      DirLeft,
			expected: []int{4, 0, 0, 0},
			score:    4,
			merges:   []MergeEvent{{Value: 4, At: Pos{0, 0}}},
			moved:    true,
		},
		{
			name:     "merge across gap",
			input:    []int{2, 0, 0, 2},
			dir:      DirLeft,
			expected: []int{4, 0, 0, 0},
			score:    4,
			merges:   []MergeEvent{{Value: 4, At: Pos{0, 0}}},
			moved:    true,
		},
		{
			name:     "no merge possible",
			input:    []int{2, 4, 2, 0},
			dir:      DirLeft,
			expected: []int{2, 4, 2, 0},
			moved:    false,
		},
		{
			name:     "chain merges pairwise",
			input:    []int{4, 4, 4, 4},
			dir:      DirLeft,
			expected: []int{8, 8, 0, 0},
			score:    16,
			merges:   []MergeEvent{{Value: 8, At: Pos{0, 0}}, {Value: 8, At: Pos{0, 1}}},
			moved:    true,
		},
		{
			name:     "merged tile does not merge again",
			input:    []int{2, 2, 4, 0},
			dir:      DirLeft,
			expected: []int{4, 4, 0, 0},
			score:    4,
			merges:   []MergeEvent{{Value: 4, At: Pos{0, 0}}},
			moved:    true,
		},
		{
			name:     "merge with trailing tile",
			input:    []int{2, 2, 2, 0},
			dir:      DirLeft,
			expected: []int{4, 2, 0, 0},
			score:    4,
			merges:   []MergeEvent{{Value: 4, At: Pos{0, 0}}},
			moved:    true,
		},
		{
			name:     "right merges nearest the wall first",
			input:    []int{2, 2, 2, 0},
			dir:      DirRight,
			expected: []int{0, 0, 2, 4},
			score:    4,
			merges:   []MergeEvent{{Value: 4, At: Pos{0, 3}}},
			moved:    true,
		},
		{
			name:     "slide only",
			input:    []int{0, 4, 0, 0},
			dir:      DirLeft,
			expected: []int{4, 0, 0, 0},
			moved:    true,
		},
		{
			name:     "empty row",
			input:    []int{0, 0, 0, 0},
			dir:      DirRight,
			expected: []int{0, 0, 0, 0},
			moved:    false,
		},
		{
			name:     "vertical move on a row is a no-op",
			input:    []int{2, 2, 0, 0},
			dir:      DirUp,
			expected: []int{2, 2, 0, 0},
			moved:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := MustGrid([][]int{tt.input})
			out := ApplyMove(g, tt.dir, DefaultWinThreshold)

			assert.Equal(t, tt.expected, out.Grid.Values()[0])
			assert.Equal(t, tt.moved, out.Moved)
			assert.Equal(t, tt.score, out.ScoreDelta)
			if len(tt.merges) == 0 {
				assert.Empty(t, out.Merges)
			} else {
				assert.Equal(t, tt.merges, out.Merges)
			}
		})
	}
}

func TestApplyMoveColumn(t *testing.T) {
	g := MustGrid([][]int{{2}, {2}, {4}, {0}})

	up := ApplyMove(g, DirUp, DefaultWinThreshold)
	assert.Equal(t, [][]int{{4}, {4}, {0}, {0}}, up.Grid.Values())
	assert.Equal(t, 4, up.ScoreDelta)

	down := ApplyMove(g, DirDown, DefaultWinThreshold)
	assert.Equal(t, [][]int{{0}, {0}, {4}, {4}}, down.Grid.Values())
	require.Len(t, down.Merges, 1)
	assert.Equal(t, Pos{2, 0}, down.Merges[0].At)
}

func TestApplyMoveBoard(t *testing.T) {
	board := MustGrid([][]int{
		{2, 2, 0, 0},
		{4, 0, 4, 0},
		{2, 2, 2, 2},
		{0, 0, 0, 2},
	})

	tests := []struct {
		dir      Direction
		expected [][]int
		score    int
	}{
		{
			dir: DirLeft,
			expected: [][]int{
				{4, 0, 0, 0},
				{8, 0, 0, 0},
				{4, 4, 0, 0},
				{2, 0, 0, 0},
			},
			score: 20,
		},
		{
			dir: DirRight,
			expected: [][]int{
				{0, 0, 0, 4},
				{0, 0, 0, 8},
				{0, 0, 4, 4},
				{0, 0, 0, 2},
			},
			score: 20,
		},
		{
			dir: DirUp,
			expected: [][]int{
				{2, 4, 4, 4},
				{4, 0, 2, 0},
				{2, 0, 0, 0},
				{0, 0, 0, 0},
			},
			score: 8,
		},
		{
			dir: DirDown,
			expected: [][]int{
				{0, 0, 0, 0},
				{2, 0, 0, 0},
				{4, 0, 4, 0},
				{2, 4, 2, 4},
			},
			score: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			out := ApplyMove(board, tt.dir, DefaultWinThreshold)
			assert.Equal(t, tt.expected, out.Grid.Values())
			assert.Equal(t, tt.score, out.ScoreDelta)
			assert.True(t, out.Moved)
		})
	}

	assert.Equal(t, 2, board.At(Pos{0, 0}), "input grid modified")
	assert.Equal(t, 2, board.At(Pos{2, 3}), "input grid modified")
}

func TestApplyMoveNoOpReturnsInput(t *testing.T) {
	g := MustGrid([][]int{
		{2, 4, 8},
		{0, 0, 0},
		{0, 0, 0},
	})
	out := ApplyMove(g, DirUp, DefaultWinThreshold)
	require.False(t, out.Moved, "a top row of distinct tiles cannot move up")
	assert.Zero(t, out.ScoreDelta)
	assert.Empty(t, out.Merges)
	assert.True(t, out.Grid.Equal(g))
	assert.Same(t, &g.cells[0][0], &out.Grid.cells[0][0], "no-op move should hand back the input grid itself")
}

func TestApplyMoveWinThreshold(t *testing.T) {
	tests := []struct {
		name string
		row  []int
		want bool
	}{
		{"creates 2048", []int{1024, 1024, 0, 0}, true},
		{"creates 1024", []int{512, 512, 0, 0}, false},
		{"creates 4096", []int{2048, 2048, 0, 0}, false},
		{"slides 2048", []int{0, 2048, 0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyMove(MustGrid([][]int{tt.row}), DirLeft, DefaultWinThreshold)
			assert.Equal(t, tt.want, out.ThresholdReached)
		})
	}
}

func TestApplyMoveTileMoves(t *testing.T) {
	out := ApplyMove(MustGrid([][]int{{2, 0, 2, 4}}), DirLeft, DefaultWinThreshold)

	want := []TileMove{
		{From: Pos{0, 2}, To: Pos{0, 0}, Value: 2, Merged: true},
		{From: Pos{0, 3}, To: Pos{0, 1}, Value: 4},
	}
	assert.Equal(t, want, out.Moves)
}

// Merging preserves the value total and removes one tile per merge.
func TestApplyMoveConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := []int{0, 0, 0, 2, 2, 4, 4, 8, 16}

	for i := 0; i < 300; i++ {
		size := SupportedSizes[rng.Intn(len(SupportedSizes))]
		g := NewGrid(size)
		for r := range size {
			for c := range size {
				g.Set(Pos{r, c}, values[rng.Intn(len(values))])
			}
		}
		dir := Directions[rng.Intn(len(Directions))]

		out := ApplyMove(g, dir, DefaultWinThreshold)

		sumBefore, tilesBefore := totals(g)
		sumAfter, tilesAfter := totals(out.Grid)
		require.Equal(t, sumBefore, sumAfter, "move %v changed the total\n%v", dir, g)
		require.Equal(t, tilesBefore-len(out.Merges), tilesAfter, "move %v", dir)

		gained := 0
		seen := make(map[Pos]bool)
		for _, m := range out.Merges {
			gained += m.Value
			require.False(t, seen[m.At], "cell %v merged twice in one move", m.At)
			seen[m.At] = true
		}
		require.Equal(t, gained, out.ScoreDelta)
		require.NotEqual(t, out.Moved, out.Grid.Equal(g), "moved flag disagrees with the grid")
	}
}

func totals(g Grid) (sum, tiles int) {
	for _, row := range g.Values() {
		for _, v := range row {
			sum += v
			if v != 0 {
				tiles++
			}
		}
	}
	return sum, tiles
}

func TestMovesAvailable(t *testing.T) {
	full := MustGrid([][]int{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	})
	assert.False(t, MovesAvailable(full), "checkerboard with no equal neighbours")
	assert.True(t, IsGameOver(full))

	horizontal := full.Clone()
	horizontal.Set(Pos{1, 1}, 4)
	assert.True(t, MovesAvailable(horizontal), "horizontal pair")

	vertical := full.Clone()
	vertical.Set(Pos{3, 3}, 4)
	assert.True(t, MovesAvailable(vertical), "vertical pair")

	withHole := full.Clone()
	withHole.Set(Pos{2, 2}, 0)
	assert.True(t, MovesAvailable(withHole), "empty cell")
}

func TestMovesAvailableAgreesWithApplyMove(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		g := NewGrid(3)
		for r := range 3 {
			for c := range 3 {
				g.Set(Pos{r, c}, 1<<(1+rng.Intn(4)))
			}
		}
		anyMove := false
		for _, d := range Directions {
			if ApplyMove(g, d, DefaultWinThreshold).Moved {
				anyMove = true
			}
		}
		require.Equal(t, anyMove, MovesAvailable(g), "\n%v", g)
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range Directions {
		got, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	got, err := ParseDirection(" Left ")
	require.NoError(t, err)
	assert.Equal(t, DirLeft, got)

	_, err = ParseDirection("diagonal")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestDirectionVectors(t *testing.T) {
	tests := []struct {
		dir        Direction
		dRow, dCol int
	}{
		{DirUp, -1, 0},
		{DirDown, 1, 0},
		{DirLeft, 0, -1},
		{DirRight, 0, 1},
	}
	for _, tt := range tests {
		r, c := tt.dir.Vector()
		assert.Equal(t, tt.dRow, r, "%v row", tt.dir)
		assert.Equal(t, tt.dCol, c, "%v col", tt.dir)
	}
}
