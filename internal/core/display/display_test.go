package display

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charleschow/superleague-points/internal/core/scenario"
	"github.com/charleschow/superleague-points/internal/events"
)

var deathOvers = scenario.MatchState{
	FirstRuns: 120, FirstOvers: 20, FirstWickets: 4,
	SecondRuns: 100, SecondWickets: 6, SecondOvers: 18, PlannedWickets: 7,
}

func TestRenderBoth(t *testing.T) {
	res := scenario.Generate(scenario.KindBoth, deathOvers)

	var buf bytes.Buffer
	if err := Render(&buf, res, Teams{Batting: "Canterbury Kings", Chasing: "Wellington Firebirds"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Firebirds chasing Kings",
		"Winning Scenario",
		"Planned Wickets to Lose: 7 -> Opponent Bowling Points: 5",
		"Losing Scenario",
		"First Innings Wickets: 4 -> Bowling Points: 2",
		"100 - 108",
		"4 / 6",
		"120 - 120",
		"0 / 2",
		scenario.NoteThresholdChange,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderWinningOnlyEmpty(t *testing.T) {
	ms := scenario.MatchState{FirstRuns: 150, FirstOvers: 20, SecondOvers: 20}
	res := scenario.Generate(scenario.KindWinning, ms)

	var buf bytes.Buffer
	if err := Render(&buf, res, Teams{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "(no reachable thresholds)") {
		t.Errorf("expected empty-table marker:\n%s", out)
	}
	if strings.Contains(out, "Losing Scenario") {
		t.Errorf("losing table should not be rendered:\n%s", out)
	}
	if strings.Contains(out, "chasing") {
		t.Errorf("team header should be omitted without names:\n%s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	res := scenario.Generate(scenario.KindLosing, deathOvers)

	var buf bytes.Buffer
	if err := RenderJSON(&buf, res, Teams{Chasing: "Firebirds"}); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Chasing  string                     `json:"chasing"`
		Scenario string                     `json:"scenario"`
		Losing   []scenario.LosingThreshold `json:"losing"`
		Winning  []any                      `json:"winning"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Chasing != "Firebirds" || decoded.Scenario != "losing" {
		t.Errorf("unexpected header fields: %+v", decoded)
	}
	if len(decoded.Losing) != 3 || decoded.Winning != nil {
		t.Errorf("unexpected tables: %+v", decoded)
	}
}

func TestShortName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Auckland Aces", "Aces"},
		{"Lahore Qalandars CC", "Qalandars"},
		{"Kings", "Kings"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ShortName(tt.in); got != tt.want {
			t.Errorf("ShortName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderHeaderNames(t *testing.T) {
	res := scenario.Generate(scenario.KindLosing, deathOvers)

	tests := []struct {
		name  string
		teams Teams
		want  string
	}{
		{"folded and shortened", Teams{Batting: "  Sagicor   Héroes CC", Chasing: "Auckland Aces"}, "  Aces chasing Heroes\n"},
		{"missing side", Teams{Chasing: "Auckland Aces"}, "  Aces chasing -\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, res, tt.teams); err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Errorf("header = %q, want prefix %q", strings.SplitAfter(buf.String(), "\n")[0], tt.want)
			}
			if strings.ContainsRune(buf.String(), '\u2014') {
				t.Error("output should be plain ASCII")
			}
		})
	}
}

func TestHeaderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Sagicor   Héroes CC", "Heroes"},
		{"Canterbury Kings", "Kings"},
		{"Mumbai XI", "Mumbai"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := HeaderName(tt.in); got != tt.want {
			t.Errorf("HeaderName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTeam(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Canterbury   Kings ", "canterbury kings"},
		{"Sagicor Héroes", "sagicor heroes"},
		{"  Sagicor   Héroes CC", "sagicor heroes cc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTeam(tt.in); got != tt.want {
			t.Errorf("NormalizeTeam(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestObserverThrottlesRepeats(t *testing.T) {
	var buf bytes.Buffer
	obs := NewObserver(&buf)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	obs.now = func() time.Time { return clock }

	bus := events.NewBus()
	obs.Attach(bus)

	evt := events.New(events.EventScenarioComputed, events.ScenarioComputedEvent{
		Source: "http",
		Result: scenario.Generate(scenario.KindLosing, deathOvers),
	})

	bus.Publish(evt)
	first := buf.Len()
	if first == 0 {
		t.Fatal("first event should be printed")
	}

	clock = clock.Add(5 * time.Second)
	bus.Publish(evt)
	if buf.Len() != first {
		t.Error("repeat inside throttle window should be suppressed")
	}

	clock = clock.Add(repeatDisplayThrottle)
	bus.Publish(evt)
	if buf.Len() == first {
		t.Error("repeat after throttle window should be printed")
	}
}

func TestObserverMatchesNormalisedTeams(t *testing.T) {
	var buf bytes.Buffer
	obs := NewObserver(&buf)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	obs.now = func() time.Time { return clock }

	publish := func(batting string) {
		obs.OnEvent(events.New(events.EventScenarioComputed, events.ScenarioComputedEvent{
			Batting: batting,
			Result:  scenario.Generate(scenario.KindLosing, deathOvers),
		}))
	}

	publish("Sagicor Héroes CC")
	first := buf.Len()
	publish("  sagicor   heroes cc")
	if buf.Len() != first {
		t.Error("same team typed differently should be throttled")
	}
	publish("Canterbury Kings")
	if buf.Len() == first {
		t.Error("a different team should be printed")
	}
}

func TestObserverPrunesExpiredKeys(t *testing.T) {
	obs := NewObserver(&bytes.Buffer{})
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	obs.now = func() time.Time { return clock }

	for i := 0; i < 50; i++ {
		ms := deathOvers
		ms.SecondRuns = i
		obs.OnEvent(events.New(events.EventScenarioComputed, events.ScenarioComputedEvent{
			Result: scenario.Generate(scenario.KindLosing, ms),
		}))
	}
	if n := len(obs.lastSeen); n != 50 {
		t.Fatalf("lastSeen = %d, want 50 inside the window", n)
	}

	clock = clock.Add(repeatDisplayThrottle)
	obs.OnEvent(events.New(events.EventScenarioComputed, events.ScenarioComputedEvent{
		Result: scenario.Generate(scenario.KindWinning, deathOvers),
	}))
	if n := len(obs.lastSeen); n != 1 {
		t.Errorf("lastSeen = %d after the window, want 1", n)
	}
}
