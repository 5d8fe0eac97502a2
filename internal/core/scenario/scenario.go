package scenario

import (
	"fmt"
	"strings"

	"github.com/charleschow/superleague-points/internal/core/points"
)

type Kind string

const (
	KindWinning Kind = "winning"
	KindLosing  Kind = "losing"
	KindBoth    Kind = "both"
)

// ParseKind accepts the scenario names case-insensitively; empty means both.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindWinning:
		return KindWinning, nil
	case KindLosing:
		return KindLosing, nil
	case KindBoth, "":
		return KindBoth, nil
	default:
		return "", fmt.Errorf("unknown scenario %q: %w", s, ErrInvalidState)
	}
}

func (k Kind) IncludesWinning() bool { return k == KindWinning || k == KindBoth }
func (k Kind) IncludesLosing() bool  { return k == KindLosing || k == KindBoth }

// WinningInfo describes the constant bowling bracket behind every winning row.
type WinningInfo struct {
	PlannedWickets        int `json:"planned_wickets"`
	OpponentBowlingPoints int `json:"opponent_bowling_points"`
}

// LosingInfo describes the constant bowling bracket behind every losing row.
type LosingInfo struct {
	Wickets       int `json:"wickets"`
	BowlingPoints int `json:"bowling_points"`
}

// Result bundles the tables requested for one MatchState. A table that
// was not requested is nil and encodes as null; a requested table with no
// reachable rows is empty and encodes as [].
type Result struct {
	Kind  Kind       `json:"scenario"`
	State MatchState `json:"state"`

	WinningInfo *WinningInfo       `json:"winning_info,omitempty"`
	Winning     []WinningThreshold `json:"winning"`

	LosingInfo *LosingInfo       `json:"losing_info,omitempty"`
	Losing     []LosingThreshold `json:"losing"`
}

// Rows is the number of threshold records across both tables.
func (r Result) Rows() int {
	return len(r.Winning) + len(r.Losing)
}

// Generate runs the generators selected by kind.
func Generate(kind Kind, ms MatchState) Result {
	res := Result{Kind: kind, State: ms}
	if kind.IncludesWinning() {
		res.WinningInfo = &WinningInfo{
			PlannedWickets:        ms.PlannedWickets,
			OpponentBowlingPoints: points.BowlingPoints(ms.PlannedWickets),
		}
		res.Winning = GenerateWinning(ms)
	}
	if kind.IncludesLosing() {
		res.LosingInfo = &LosingInfo{
			Wickets:       ms.FirstWickets,
			BowlingPoints: points.BowlingPoints(ms.FirstWickets),
		}
		res.Losing = GenerateLosing(ms)
	}
	return res
}
