package scenario

import (
	"math"

	"github.com/charleschow/superleague-points/internal/core/points"
)

// battingThresholds are the percentages the chasing side's rate must
// strictly exceed to earn brackets 1..5.
var battingThresholds = [...]float64{50, 60, 70, 80, 90}

// WinningThreshold is one over-range during which finishing the chase
// would leave the opponent's batting bracket, and so our points, fixed.
type WinningThreshold struct {
	StartBall             int    `json:"start_ball"`
	EndBall               int    `json:"end_ball"`
	OverRange             string `json:"over_range"`
	OpponentBattingPoints int    `json:"opponent_batting_points"`
	OpponentBowlingPoints int    `json:"opponent_bowling_points"`
	OurPoints             int    `json:"our_points"`
}

// rateCurve evaluates the first-innings run rate as a percentage of the
// rate the chase would need to finish at a given ball.
type rateCurve struct {
	target int
	rr1    float64
}

func newRateCurve(firstRuns, firstOvers int) rateCurve {
	return rateCurve{
		target: firstRuns + 1,
		rr1:    points.Round2(float64(firstRuns) / float64(firstOvers)),
	}
}

// percentAt rounds twice (required rate, then percentage) to match how
// the published tables are built. Zero balls or a zero first-innings rate
// yield 0.
func (c rateCurve) percentAt(balls int) float64 {
	if balls <= 0 || c.rr1 <= 0 {
		return 0
	}
	rr2 := points.Round2(float64(c.target) / (float64(balls) / 6))
	if rr2 <= 0 {
		return 0
	}
	return points.Round2(c.rr1 / rr2 * 100)
}

// estimate inverts the unrounded curve. It is only a starting point.
func (c rateCurve) estimate(p float64) int {
	if c.rr1 <= 0 {
		return -1
	}
	return int(math.Floor(p * 6 * float64(c.target) / (c.rr1 * 100)))
}

// boundary returns the smallest ball in [from, to] whose percentage
// strictly exceeds p. percentAt is non-decreasing in balls, so a walk
// from the estimate finds it exactly.
func (c rateCurve) boundary(p float64, from, to int) (int, bool) {
	b := min(max(c.estimate(p), from), to)

	if c.percentAt(b) > p {
		for b > from && c.percentAt(b-1) > p {
			b--
		}
		return b, true
	}
	for b < to {
		b++
		if c.percentAt(b) > p {
			return b, true
		}
	}
	return 0, false
}

// GenerateWinning lists, from the current ball to the end of the innings,
// the over-ranges in which a successful chase would award the chasing side
// each batting bracket, with our resulting share of the match points.
func GenerateWinning(ms MatchState) []WinningThreshold {
	rows := make([]WinningThreshold, 0, len(battingThresholds))
	if ms.FirstOvers <= 0 {
		return rows
	}

	maxBalls := ms.MaxBalls()
	current := ms.CurrentBalls()
	if current >= maxBalls {
		return rows
	}

	curve := newRateCurve(ms.FirstRuns, ms.FirstOvers)
	bowling := points.BowlingPoints(ms.PlannedWickets)

	var (
		starts    [len(battingThresholds)]int
		reachable [len(battingThresholds)]bool
	)
	for i, p := range battingThresholds {
		starts[i], reachable[i] = curve.boundary(p, current, maxBalls)
	}

	for i := range battingThresholds {
		if !reachable[i] {
			continue
		}
		end := maxBalls
		for j := i + 1; j < len(battingThresholds); j++ {
			if reachable[j] {
				end = starts[j] - 1
				break
			}
		}
		// Several brackets can open on the same ball; only the highest survives.
		if end < starts[i] {
			continue
		}

		batting := i + 1
		rows = append(rows, WinningThreshold{
			StartBall:             starts[i],
			EndBall:               end,
			OverRange:             points.FormatOverRange(starts[i], end),
			OpponentBattingPoints: batting,
			OpponentBowlingPoints: bowling,
			OurPoints:             points.MatchPoints - points.TotalPoints(batting, bowling),
		})
	}
	return rows
}
