package dataset

import "math"

// Improvement returns the relative error reduction from before to after in
// percent: (before - after) / before * 100.
// It returns NaN when before is zero or either value is NaN; callers skip
// such entries instead of plotting them.
func Improvement(before, after float64) float64 {
	if before == 0 || math.IsNaN(before) || math.IsNaN(after) {
		return math.NaN()
	}
	return (before - after) / before * 100
}

// Improved classifies an improvement. Zero counts as improved.
func Improved(pct float64) bool {
	return pct >= 0
}
