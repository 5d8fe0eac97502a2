package events

import (
	"time"

	"github.com/charleschow/superleague-points/internal/core/scenario"
)

// ScenarioComputedEvent is published after the API computes a scenario.
// Source identifies the surface ("http", "preset:<name>").
type ScenarioComputedEvent struct {
	Source   string          `json:"source"`
	Batting  string          `json:"batting_first,omitempty"`
	Chasing  string          `json:"chasing,omitempty"`
	Result   scenario.Result `json:"result"`
	Duration time.Duration   `json:"duration_ns"`
}
