// Package achievements tracks milestone unlocks from game events.
package achievements

import "fmt"

// ID identifies an achievement. IDs are stored, so they never change.
type ID string

const (
	FirstWin     ID = "first_win"
	Score5K      ID = "score_5k"
	Score10K     ID = "score_10k"
	Score50K     ID = "score_50k"
	Tile4096     ID = "tile_4096"
	Tile8192     ID = "tile_8192"
	Win3x3       ID = "win_3x3"
	Win5x5       ID = "win_5x5"
	Win6x6       ID = "win_6x6"
	Win8x8       ID = "win_8x8"
	AllGrids     ID = "all_grids"
	SpeedDemon   ID = "speed_demon"
	DailyFirst   ID = "daily_first"
	DailyStreak7 ID = "daily_streak_7"
	NoUndo       ID = "no_undo"
)

// Achievement is one catalogue entry.
type Achievement struct {
	ID          ID
	Title       string
	Description string
}

// Catalogue lists every achievement in display order.
var Catalogue = []Achievement{
	{FirstWin, "First Victory", "Reach 2048 for the first time"},
	{Score5K, "Getting Started", "Score 5,000 points"},
	{Score10K, "Score Master", "Score 10,000 points"},
	{Score50K, "Legend", "Score 50,000 points"},
	{Tile4096, "Beyond 2048", "Create a 4096 tile"},
	{Tile8192, "Tile Titan", "Create an 8192 tile"},
	{Win3x3, "Small but Mighty", "Win on the 3x3 grid"},
	{Win5x5, "Explorer", "Win on the 5x5 grid"},
	{Win6x6, "Ambitious", "Win on the 6x6 grid"},
	{Win8x8, "Grandmaster", "Win on the 8x8 grid"},
	{AllGrids, "Grid Collector", "Win on every grid size"},
	{SpeedDemon, "Speed Demon", "Score 2048 or more in Time Attack"},
	{DailyFirst, "Daily Player", "Complete a daily challenge"},
	{DailyStreak7, "Weekly Warrior", "Complete 7 daily challenges"},
	{NoUndo, "Purist", "Win without using undo"},
}

// Lookup returns the catalogue entry for id.
func Lookup(id ID) (Achievement, bool) {
	for _, a := range Catalogue {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// sizeWins maps grid sizes to their win achievement. 4x4 is covered by
// FirstWin.
var sizeWins = map[int]ID{
	3: Win3x3,
	5: Win5x5,
	6: Win6x6,
	8: Win8x8,
}

// scoreMilestones are checked after every move.
var scoreMilestones = []struct {
	score int
	id    ID
}{
	{5000, Score5K},
	{10000, Score10K},
	{50000, Score50K},
}

// tileMilestones are checked against the largest tile after every move.
var tileMilestones = []struct {
	tile int
	id   ID
}{
	{4096, Tile4096},
	{8192, Tile8192},
}

const (
	speedDemonScore   = 2048
	weeklyWarriorDays = 7
)

func (a Achievement) String() string {
	return fmt.Sprintf("%s: %s", a.Title, a.Description)
}
