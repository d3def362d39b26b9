package achievements

// Levels is the ascending threshold table for streak achievements
// (Fibonacci).
var Levels = []int{3, 5, 8, 13, 21, 34}

// FirstLevel is the value at which a streak achievement first completes.
func FirstLevel() int { return Levels[0] }

// MaxLevel is the top threshold value.
func MaxLevel() int { return Levels[len(Levels)-1] }

// LevelFor returns the number of thresholds less than or equal to v,
// scanning ascending and stopping at the first threshold above v.
func LevelFor(v int) int {
	level := 0
	for _, t := range Levels {
		if v < t {
			break
		}
		level++
	}
	return level
}

// NextThreshold returns the smallest threshold above v, or the largest
// threshold when v already meets or exceeds all of them.
func NextThreshold(v int) int {
	for _, t := range Levels {
		if t > v {
			return t
		}
	}
	return MaxLevel()
}
