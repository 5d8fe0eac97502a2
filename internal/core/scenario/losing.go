package scenario

import "github.com/charleschow/superleague-points/internal/core/points"

const NoteThresholdChange = "Threshold change"

// LosingThreshold is one run-range over which a chase that stops short
// keeps the same batting bracket and total.
type LosingThreshold struct {
	StartRun      int    `json:"start_run"`
	EndRun        int    `json:"end_run"`
	BattingPoints int    `json:"batting_points"`
	TotalPoints   int    `json:"total_points"`
	Note          string `json:"note"`
}

// GenerateLosing sweeps every run total from the chasing side's current
// score up to the first-innings total and closes a range whenever the
// points total changes.
func GenerateLosing(ms MatchState) []LosingThreshold {
	rows := make([]LosingThreshold, 0)
	target := ms.FirstRuns
	if target <= 0 {
		return rows
	}

	bowling := points.BowlingPoints(ms.FirstWickets)
	prev := -1

	for runs := ms.SecondRuns; runs <= target; runs++ {
		percent := float64(runs) / float64(target) * 100
		batting := points.BattingPoints(percent)
		total := points.TotalPoints(batting, bowling)

		if total == prev {
			continue
		}
		if n := len(rows); n > 0 {
			rows[n-1].EndRun = runs - 1
		}
		rows = append(rows, LosingThreshold{
			StartRun:      runs,
			BattingPoints: batting,
			TotalPoints:   total,
			Note:          NoteThresholdChange,
		})
		prev = total
	}

	if n := len(rows); n > 0 {
		rows[n-1].EndRun = target
	}
	return rows
}
