package t2048

import (
	"errors"
	"fmt"
	"strings"
)

// Direction represents a move direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// DefaultWinThreshold is the tile value that wins a game.
const DefaultWinThreshold = 2048

// ErrInvalidDirection is returned by ParseDirection for unknown names.
var ErrInvalidDirection = errors.New("t2048: invalid direction")

// Directions lists every direction in a fixed order.
var Directions = [...]Direction{DirUp, DirDown, DirLeft, DirRight}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// Vector returns the (row, col) step for the direction.
func (d Direction) Vector() (dRow, dCol int) {
	switch d {
	case DirUp:
		return -1, 0
	case DirDown:
		return 1, 0
	case DirLeft:
		return 0, -1
	case DirRight:
		return 0, 1
	}
	return 0, 0
}

// ParseDirection maps a direction name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// MergeEvent records one merge: the resulting value and where it landed.
type MergeEvent struct {
	Value int
	At    Pos
}

// TileMove records a tile leaving its cell during a move.
type TileMove struct {
	From   Pos
	To     Pos
	Value  int  // value before merging
	Merged bool // the tile merged into the one at To
}

// MoveOutcome is the result of ApplyMove. It holds values only; applying it
// to a session is the caller's job.
type MoveOutcome struct {
	Moved            bool
	Grid             Grid
	ScoreDelta       int
	Merges           []MergeEvent
	Moves            []TileMove
	ThresholdReached bool
}

// traversal returns row and column visiting orders so that tiles nearest the
// destination edge are processed first.
func traversal(g Grid, dRow, dCol int) (rows, cols []int) {
	rows = make([]int, g.rows)
	cols = make([]int, g.cols)
	for i := range rows {
		rows[i] = i
		if dRow == 1 {
			rows[i] = g.rows - 1 - i
		}
	}
	for i := range cols {
		cols[i] = i
		if dCol == 1 {
			cols[i] = g.cols - 1 - i
		}
	}
	return rows, cols
}

// findFarthest walks from p in the move direction until the next step would
// leave the grid or hit an occupied cell. It returns the last empty cell
// reached and the blocking position after it.
func findFarthest(g Grid, p Pos, dRow, dCol int) (farthest, next Pos) {
	next = p
	for {
		farthest = next
		next = Pos{farthest.Row + dRow, farthest.Col + dCol}
		if !g.IsWithinBounds(next.Row, next.Col) || g.At(next) != 0 {
			return farthest, next
		}
	}
}

// ApplyMove slides every tile toward dir, merging equal neighbours at most
// once per tile. The input grid is never modified. When nothing moves the
// outcome carries the input grid itself.
func ApplyMove(g Grid, dir Direction, winThreshold int) MoveOutcome {
	dRow, dCol := dir.Vector()
	work := g.Clone()
	merged := make([][]bool, g.rows)
	for r := range merged {
		merged[r] = make([]bool, g.cols)
	}

	out := MoveOutcome{}
	rows, cols := traversal(g, dRow, dCol)
	for _, r := range rows {
		for _, c := range cols {
			cell := Pos{r, c}
			value := work.At(cell)
			if value == 0 {
				continue
			}

			farthest, next := findFarthest(work, cell, dRow, dCol)
			if work.IsWithinBounds(next.Row, next.Col) && work.At(next) == value && !merged[next.Row][next.Col] {
				sum := value * 2
				work.Set(next, sum)
				work.Set(cell, 0)
				merged[next.Row][next.Col] = true
				out.ScoreDelta += sum
				out.Merges = append(out.Merges, MergeEvent{Value: sum, At: next})
				out.Moves = append(out.Moves, TileMove{From: cell, To: next, Value: value, Merged: true})
				out.Moved = true
				if sum == winThreshold {
					out.ThresholdReached = true
				}
				continue
			}

			if farthest != cell {
				work.Set(farthest, value)
				work.Set(cell, 0)
				out.Moves = append(out.Moves, TileMove{From: cell, To: farthest, Value: value})
				out.Moved = true
			}
		}
	}

	if !out.Moved {
		return MoveOutcome{Grid: g}
	}
	out.Grid = work
	return out
}

// HasPossibleMerge reports whether two orthogonal neighbours share a value.
// Only right and bottom neighbours are checked; that covers every pair.
func HasPossibleMerge(g Grid) bool {
	for r := range g.rows {
		for c := range g.cols {
			v := g.cells[r][c]
			if v == 0 {
				continue
			}
			if c+1 < g.cols && g.cells[r][c+1] == v {
				return true
			}
			if r+1 < g.rows && g.cells[r+1][c] == v {
				return true
			}
		}
	}
	return false
}

// MovesAvailable reports whether any direction would change the grid.
func MovesAvailable(g Grid) bool {
	return g.HasEmptyCell() || HasPossibleMerge(g)
}

// IsGameOver reports whether no move can change the grid.
func IsGameOver(g Grid) bool {
	return !MovesAvailable(g)
}
