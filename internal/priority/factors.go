package priority

import (
	"math"
)

// Score bounds shared by the factor scorers.
const (
	MinScore        = 0.0
	MaxScore        = 10.0
	MaxOverdueScore = 15.0
)

// UrgencyScore maps the number of days until the due date onto a score.
// Overdue work climbs above MaxScore up to MaxOverdueScore. Within each band
// the score falls linearly from the band's first day to its last, and work
// due more than 30 days out decays logarithmically without reaching zero.
func UrgencyScore(daysUntilDue int) float64 {
	d := float64(daysUntilDue)
	switch {
	case daysUntilDue < 0:
		return math.Min(MaxOverdueScore, MaxScore+0.5*-d)
	case daysUntilDue == 0:
		return 10.0
	case daysUntilDue <= 3:
		return 9.0
	case daysUntilDue <= 7:
		return interpolate(d, 4, 7, 8.75, 7.0)
	case daysUntilDue <= 14:
		return interpolate(d, 8, 14, 6.5, 5.1)
	case daysUntilDue <= 30:
		return interpolate(d, 15, 30, 4.5, 3.6)
	default:
		return math.Max(1.0, 3.0-math.Log10(d-29))
	}
}

// ImportanceScore returns the user supplied importance bounded to 1..10.
func ImportanceScore(importance int) float64 {
	return clamp(float64(importance), 1, MaxScore)
}

// EffortScore rewards short tasks. Non-positive estimates get a neutral 5.
func EffortScore(hours float64) float64 {
	switch {
	case hours <= 0 || math.IsNaN(hours):
		return 5.0
	case hours < 1:
		return 10.0
	case hours < 2:
		return 9.0
	case hours < 4:
		return 8.0 - 0.75*(hours-2)
	case hours < 8:
		return 6.0 - 0.25*(hours-4)
	default:
		return math.Max(1.0, 5.0-math.Log10(hours-7))
	}
}

// DependencyScore rewards tasks that other tasks are waiting on.
func DependencyScore(blocks int) float64 {
	switch {
	case blocks >= 3:
		return 10.0
	case blocks == 2:
		return 8.0
	case blocks == 1:
		return 6.0
	default:
		return 3.0
	}
}

// interpolate maps x in [x0, x1] linearly onto [y0, y1].
func interpolate(x, x0, x1, y0, y1 float64) float64 {
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
