package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charleschow/superleague-points/internal/core/scenario"
)

const (
	dividerHeavy = "========================================================================"
	dividerLight = "------------------------------------------------------------------------"
)

// Render writes the requested tables as plain text.
func Render(w io.Writer, res scenario.Result, teams Teams) error {
	var b strings.Builder

	if !teams.empty() {
		fmt.Fprintf(&b, "  %s chasing %s\n", orDash(HeaderName(teams.Chasing)), orDash(HeaderName(teams.Batting)))
	}
	st := res.State
	fmt.Fprintf(&b, "    %-30s%d in %d overs (%d wkts)\n", "First innings:", st.FirstRuns, st.FirstOvers, st.FirstWickets)
	fmt.Fprintf(&b, "    %-30s%d/%d after %d.%d overs\n", "Chase:", st.SecondRuns, st.SecondWickets, st.SecondOvers, st.SecondBalls)

	if res.Kind.IncludesWinning() {
		writeWinning(&b, res)
	}
	if res.Kind.IncludesLosing() {
		writeLosing(&b, res)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeWinning(b *strings.Builder, res scenario.Result) {
	fmt.Fprintf(b, "\nWinning Scenario\n%s\n", dividerHeavy)
	if info := res.WinningInfo; info != nil {
		fmt.Fprintf(b, "  Planned Wickets to Lose: %d -> Opponent Bowling Points: %d\n",
			info.PlannedWickets, info.OpponentBowlingPoints)
	}
	fmt.Fprintf(b, "  %-20s%s\n", "Overs Range", "Opponent Batting / Our Points")
	fmt.Fprintf(b, "%s\n", dividerLight)
	if len(res.Winning) == 0 {
		fmt.Fprintf(b, "  %s\n", "(no reachable thresholds)")
	}
	for _, row := range res.Winning {
		fmt.Fprintf(b, "  %-20s%d / %d\n", row.OverRange, row.OpponentBattingPoints, row.OurPoints)
	}
}

func writeLosing(b *strings.Builder, res scenario.Result) {
	fmt.Fprintf(b, "\nLosing Scenario\n%s\n", dividerHeavy)
	if info := res.LosingInfo; info != nil {
		fmt.Fprintf(b, "  First Innings Wickets: %d -> Bowling Points: %d\n",
			info.Wickets, info.BowlingPoints)
	}
	fmt.Fprintf(b, "  %-20s%-28s%s\n", "Runs Range", "Batting / Total Points", "Notes")
	fmt.Fprintf(b, "%s\n", dividerLight)
	if len(res.Losing) == 0 {
		fmt.Fprintf(b, "  %s\n", "(chase already past the total)")
	}
	for _, row := range res.Losing {
		runs := fmt.Sprintf("%d - %d", row.StartRun, row.EndRun)
		pts := fmt.Sprintf("%d / %d", row.BattingPoints, row.TotalPoints)
		fmt.Fprintf(b, "  %-20s%-28s%s\n", runs, pts, row.Note)
	}
}

// RenderJSON writes the result as indented JSON.
func RenderJSON(w io.Writer, res scenario.Result, teams Teams) error {
	out := struct {
		Teams
		scenario.Result
	}{teams, res}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
