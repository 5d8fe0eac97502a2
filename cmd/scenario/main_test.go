package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charleschow/superleague-points/internal/core/scenario"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PRESETS_PATH", "")
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestWinningCommand(t *testing.T) {
	out, err := run(t, "winning",
		"--first-runs", "150", "--first-overs", "20", "--first-wickets", "6",
		"--planned-wickets", "5", "--chasing", "Auckland Aces")
	if err != nil {
		t.Fatalf("winning: %v", err)
	}
	for _, want := range []string{
		"Winning Scenario",
		"Planned Wickets to Lose: 5 -> Opponent Bowling Points: 3",
		"10.1 - 12.0",
		"18.1 - 20.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Losing Scenario") {
		t.Error("winning command printed the losing table")
	}
}

func TestLosingCommandJSON(t *testing.T) {
	out, err := run(t, "losing",
		"--first-runs", "120", "--first-wickets", "4", "--second-runs", "100",
		"--format", "json")
	if err != nil {
		t.Fatalf("losing: %v", err)
	}
	var res scenario.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	want := []scenario.LosingThreshold{
		{StartRun: 100, EndRun: 108, BattingPoints: 4, TotalPoints: 6, Note: scenario.NoteThresholdChange},
		{StartRun: 109, EndRun: 119, BattingPoints: 5, TotalPoints: 7, Note: scenario.NoteThresholdChange},
		{StartRun: 120, EndRun: 120, BattingPoints: 0, TotalPoints: 2, Note: scenario.NoteThresholdChange},
	}
	if len(res.Losing) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(res.Losing), len(want), res.Losing)
	}
	for i := range want {
		if res.Losing[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, res.Losing[i], want[i])
		}
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing first runs", []string{"both"}},
		{"zero overs", []string{"both", "--first-runs", "150", "--first-overs", "0"}},
		{"balls out of range", []string{"winning", "--first-runs", "150", "--second-balls", "6"}},
		{"unknown format", []string{"losing", "--first-runs", "150", "--format", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPresetCommand(t *testing.T) {
	list, err := run(t, "preset")
	if err != nil {
		t.Fatalf("preset list: %v", err)
	}
	for _, name := range []string{"t20-fresh-chase", "t20-death-overs", "odi-mid-innings"} {
		if !strings.Contains(list, name) {
			t.Errorf("list missing %s:\n%s", name, list)
		}
	}

	out, err := run(t, "preset", "T20-Death-Overs", "--scenario", "losing")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	if !strings.Contains(out, "Losing Scenario") || strings.Contains(out, "Winning Scenario") {
		t.Errorf("scenario override ignored:\n%s", out)
	}

	if _, err := run(t, "preset", "nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestPresetCommandCustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	data := []byte(`matches:
  - name: local-derby
    batting_first: Otago Volts
    chasing: Central Stags
    scenario: losing
    state: {first_runs: 160, first_overs: 20, first_wickets: 9}
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "preset", "local-derby", "--presets", path, "--format", "json")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	var res scenario.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.Kind != scenario.KindLosing || res.LosingInfo == nil || res.LosingInfo.BowlingPoints != 5 {
		t.Errorf("unexpected result: %+v", res)
	}
}
