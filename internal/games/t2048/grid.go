package t2048

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGrid is returned when a grid cannot be built from raw values.
var ErrInvalidGrid = errors.New("t2048: invalid grid")

// Pos addresses a cell by row and column.
type Pos struct {
	Row int
	Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Grid is a rows x cols matrix of tile values. Zero marks an empty cell,
// any other value is a power of two >= 2.
type Grid struct {
	rows  int
	cols  int
	cells [][]int
}

// NewGrid returns an empty size x size grid.
func NewGrid(size int) Grid {
	return NewGridRect(size, size)
}

// NewGridRect returns an empty rows x cols grid.
func NewGridRect(rows, cols int) Grid {
	cells := make([][]int, rows)
	for r := range cells {
		cells[r] = make([]int, cols)
	}
	return Grid{rows: rows, cols: cols, cells: cells}
}

// GridFromRows copies raw values into a grid, checking shape and values.
func GridFromRows(rows [][]int) (Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Grid{}, fmt.Errorf("%w: empty", ErrInvalidGrid)
	}
	g := NewGridRect(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != g.cols {
			return Grid{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidGrid, r, len(row), g.cols)
		}
		for c, v := range row {
			if v != 0 && (v < 2 || !IsPowerOfTwo(v)) {
				return Grid{}, fmt.Errorf("%w: value %d at %v", ErrInvalidGrid, v, Pos{r, c})
			}
			g.cells[r][c] = v
		}
	}
	return g, nil
}

// MustGrid is GridFromRows for literals known to be valid.
func MustGrid(rows [][]int) Grid {
	g, err := GridFromRows(rows)
	if err != nil {
		panic(err)
	}
	return g
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g Grid) Cols() int { return g.cols }

// Size returns the edge length of a square grid.
func (g Grid) Size() int { return g.rows }

// IsWithinBounds reports whether (row, col) addresses a cell.
func (g Grid) IsWithinBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// At returns the value at p.
func (g Grid) At(p Pos) int {
	return g.cells[p.Row][p.Col]
}

// Set stores v at p.
func (g Grid) Set(p Pos, v int) {
	g.cells[p.Row][p.Col] = v
}

// EmptyCells lists empty positions in row-major order.
func (g Grid) EmptyCells() []Pos {
	var empty []Pos
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r][c] == 0 {
				empty = append(empty, Pos{r, c})
			}
		}
	}
	return empty
}

// HasEmptyCell reports whether at least one cell is empty.
func (g Grid) HasEmptyCell() bool {
	for _, row := range g.cells {
		for _, v := range row {
			if v == 0 {
				return true
			}
		}
	}
	return false
}

// MaxTile returns the highest tile value on the grid.
func (g Grid) MaxTile() int {
	maxVal := 0
	for _, row := range g.cells {
		for _, v := range row {
			maxVal = max(maxVal, v)
		}
	}
	return maxVal
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := NewGridRect(g.rows, g.cols)
	for r := range g.cells {
		copy(out.cells[r], g.cells[r])
	}
	return out
}

// Values returns a deep copy of the cell values.
func (g Grid) Values() [][]int {
	return g.Clone().cells
}

// Equal reports whether both grids have the same shape and values.
func (g Grid) Equal(other Grid) bool {
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for r := range g.cells {
		for c := range g.cells[r] {
			if g.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}

func (g Grid) String() string {
	var sb strings.Builder
	for r, row := range g.cells {
		if r > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprint(&sb, row)
	}
	return sb.String()
}
