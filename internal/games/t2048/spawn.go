package t2048

// DefaultSpawn4Prob is the chance a new tile is a 4 rather than a 2.
const DefaultSpawn4Prob = 0.1

// RandomSource supplies randomness for tile placement. *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// Tile is a placed tile.
type Tile struct {
	At    Pos
	Value int
}

// SpawnTile places a 2 or 4 on a uniformly chosen empty cell of g.
// It returns false when the grid is full.
func SpawnTile(g Grid, rnd RandomSource, spawn4Prob float64) (Tile, bool) {
	empty := g.EmptyCells()
	if len(empty) == 0 {
		return Tile{}, false
	}

	cell := empty[rnd.Intn(len(empty))]
	value := 2
	if rnd.Float64() < spawn4Prob {
		value = 4
	}
	g.Set(cell, value)
	return Tile{At: cell, Value: value}, true
}
