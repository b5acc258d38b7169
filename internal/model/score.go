package model

import "math"

// Score bounds and the fallback used when no usable model exists.
const (
	MinScore     = 0.0
	MaxScore     = 5.0
	DefaultScore = 2.5
)

// Clamp bounds a score to [MinScore, MaxScore].
func Clamp(score float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, score))
}

// Round2 rounds a score to two decimals for reporting.
func Round2(score float64) float64 {
	return math.Round(score*100) / 100
}
