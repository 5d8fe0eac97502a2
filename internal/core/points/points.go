package points

import (
	"fmt"
	"math"
)

// MatchPoints is the total on offer to both sides in a Super League fixture.
const MatchPoints = 30

// BattingPoints maps a run-rate percentage to a 0–5 bracket.
// Brackets are half-open on the left; exactly 100 scores nothing.
func BattingPoints(percent float64) int {
	switch {
	case percent > 50 && percent <= 60:
		return 1
	case percent > 60 && percent <= 70:
		return 2
	case percent > 70 && percent <= 80:
		return 3
	case percent > 80 && percent <= 90:
		return 4
	case percent > 90 && percent < 100:
		return 5
	default:
		return 0
	}
}

// BowlingPoints maps wickets taken to a 0–5 bracket. Order matters:
// the first matching case wins.
func BowlingPoints(wickets int) int {
	switch {
	case wickets >= 7:
		return 5
	case wickets == 6:
		return 4
	case wickets == 5:
		return 3
	case wickets >= 3:
		return 2
	case wickets >= 1:
		return 1
	default:
		return 0
	}
}

// TotalPoints sums any number of brackets.
func TotalPoints(brackets ...int) int {
	total := 0
	for _, b := range brackets {
		total += b
	}
	return total
}

// Round2 rounds half away from zero to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func BallsFromOvers(overs, balls int) int {
	return overs*6 + balls
}

// FormatOver renders a ball count as "<overs>.<balls>".
func FormatOver(balls int) string {
	return fmt.Sprintf("%d.%d", balls/6, balls%6)
}

// FormatOverRange renders an inclusive ball interval, e.g. "10.1 - 14.3".
func FormatOverRange(start, end int) string {
	return FormatOver(start) + " - " + FormatOver(end)
}
