package t2048

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridFromRows(t *testing.T) {
	g, err := GridFromRows([][]int{{2, 0}, {0, 4}})
	require.NoError(t, err)
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 2, g.Cols())

	for _, rows := range [][][]int{
		nil,
		{{}},
		{{2, 0}, {0}},
		{{6}},
		{{1}},
		{{-2}},
	} {
		_, err := GridFromRows(rows)
		assert.ErrorIs(t, err, ErrInvalidGrid, "GridFromRows(%v)", rows)
	}
}

func TestGridFromRowsCopies(t *testing.T) {
	rows := [][]int{{2, 0}, {0, 0}}
	g := MustGrid(rows)
	rows[0][0] = 8
	assert.Equal(t, 2, g.At(Pos{0, 0}), "grid should not alias the input rows")
}

func TestEmptyCells(t *testing.T) {
	g := MustGrid([][]int{
		{2, 0, 8, 0},
		{0, 64, 0, 256},
		{512, 0, 2048, 0},
		{0, 16, 0, 64},
	})

	cells := g.EmptyCells()
	require.Len(t, cells, 8)
	assert.Equal(t, Pos{0, 1}, cells[0], "row-major order")
	assert.Equal(t, Pos{3, 2}, cells[7], "row-major order")
	assert.True(t, g.HasEmptyCell())
}

func TestIsWithinBounds(t *testing.T) {
	g := NewGridRect(2, 3)
	tests := []struct {
		row, col int
		want     bool
	}{
		{0, 0, true},
		{1, 2, true},
		{2, 0, false},
		{0, 3, false},
		{-1, 0, false},
		{0, -1, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.IsWithinBounds(tt.row, tt.col), "IsWithinBounds(%d, %d)", tt.row, tt.col)
	}
}

func TestMaxTile(t *testing.T) {
	g := MustGrid([][]int{
		{2, 4, 8, 16},
		{32, 64, 128, 256},
		{512, 1024, 2048, 4},
		{8, 16, 32, 64},
	})
	assert.Equal(t, 2048, g.MaxTile())
}

func TestCloneIsDeep(t *testing.T) {
	g := MustGrid([][]int{{2, 4}, {8, 16}})
	c := g.Clone()
	c.Set(Pos{0, 0}, 32)

	assert.Equal(t, 2, g.At(Pos{0, 0}), "Clone should not share cells")
	assert.False(t, g.Equal(c))
	assert.True(t, g.Equal(g.Clone()))
	assert.False(t, g.Equal(NewGridRect(2, 3)), "different shapes")
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, v := range []int{1, 2, 4, 2048, 1 << 20} {
		assert.True(t, IsPowerOfTwo(v), "IsPowerOfTwo(%d)", v)
	}
	for _, v := range []int{0, -2, 3, 6, 2047} {
		assert.False(t, IsPowerOfTwo(v), "IsPowerOfTwo(%d)", v)
	}
}
