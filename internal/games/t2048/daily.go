package t2048

import "time"

// dailySizes is indexed by the date hash.
var dailySizes = [...]int{3, 4, 5, 6, 8}

// dailyTargets is the score to beat per grid size.
var dailyTargets = map[int]int{
	3: 5000,
	4: 10000,
	5: 15000,
	6: 20000,
	8: 30000,
}

// Daily is the challenge shared by every player on one UTC date.
type Daily struct {
	Date        string // YYYY-MM-DD
	GridSize    int
	TargetScore int
	Seed        int64
}

// DailyFor returns the challenge for the UTC date of t.
func DailyFor(t time.Time) Daily {
	date := t.UTC().Format(time.DateOnly)
	h := dateHash(date)
	size := dailySizes[h%len(dailySizes)]
	return Daily{
		Date:        date,
		GridSize:    size,
		TargetScore: dailyTargets[size],
		Seed:        int64(h),
	}
}

// dateHash is the 31-multiplier string hash over 32-bit signed integers,
// made non-negative.
func dateHash(s string) int {
	var h int32
	for _, c := range s {
		h = h<<5 - h + int32(c)
	}
	v := int(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Reached reports whether score meets the daily target.
func (d Daily) Reached(score int) bool {
	return score >= d.TargetScore
}
