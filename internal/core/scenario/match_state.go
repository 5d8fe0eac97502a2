package scenario

import (
	"errors"
	"fmt"

	"github.com/charleschow/superleague-points/internal/core/points"
)

// ErrInvalidState is wrapped by Validate for any out-of-range field.
var ErrInvalidState = errors.New("invalid match state")

// MatchState is the per-call input to both generators. All counts are
// plain integers; the generators never mutate it.
type MatchState struct {
	FirstRuns    int `json:"first_runs" yaml:"first_runs"`
	FirstOvers   int `json:"first_overs" yaml:"first_overs"`
	FirstWickets int `json:"first_wickets" yaml:"first_wickets"`

	SecondRuns    int `json:"second_runs" yaml:"second_runs"`
	SecondWickets int `json:"second_wickets" yaml:"second_wickets"`
	SecondOvers   int `json:"second_overs" yaml:"second_overs"`
	SecondBalls   int `json:"second_balls" yaml:"second_balls"` // 0..5

	// PlannedWickets is how many wickets the chasing side expects to lose.
	// Only the winning table reads it.
	PlannedWickets int `json:"planned_wickets" yaml:"planned_wickets"`
}

// CurrentBalls is the chasing side's progress in legal deliveries.
func (ms MatchState) CurrentBalls() int {
	return points.BallsFromOvers(ms.SecondOvers, ms.SecondBalls)
}

// MaxBalls is the length of the innings in deliveries.
func (ms MatchState) MaxBalls() int {
	return ms.FirstOvers * 6
}

// Validate checks the shape of the input for callers that accept it from
// users. The generators do not call it and tolerate any values.
func (ms MatchState) Validate() error {
	fields := []struct {
		name string
		val  int
	}{
		{"first_runs", ms.FirstRuns},
		{"first_overs", ms.FirstOvers},
		{"first_wickets", ms.FirstWickets},
		{"second_runs", ms.SecondRuns},
		{"second_wickets", ms.SecondWickets},
		{"second_overs", ms.SecondOvers},
		{"second_balls", ms.SecondBalls},
		{"planned_wickets", ms.PlannedWickets},
	}
	for _, f := range fields {
		if f.val < 0 {
			return fmt.Errorf("%s must not be negative (got %d): %w", f.name, f.val, ErrInvalidState)
		}
	}
	if ms.FirstOvers == 0 {
		return fmt.Errorf("first_overs must be positive: %w", ErrInvalidState)
	}
	if ms.SecondBalls > 5 {
		return fmt.Errorf("second_balls must be 0..5 (got %d): %w", ms.SecondBalls, ErrInvalidState)
	}
	return nil
}
