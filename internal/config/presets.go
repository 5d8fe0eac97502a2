package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/superleague-points/internal/core/display"
	"github.com/charleschow/superleague-points/internal/core/scenario"
)

//go:embed presets.yaml
var defaultPresetsData []byte

// Preset is a named match situation that can be computed without
// re-entering every field.
type Preset struct {
	Name     string              `yaml:"name" json:"name"`
	Batting  string              `yaml:"batting_first" json:"batting_first,omitempty"`
	Chasing  string              `yaml:"chasing" json:"chasing,omitempty"`
	Scenario string              `yaml:"scenario" json:"scenario,omitempty"`
	State    scenario.MatchState `yaml:"state" json:"state"`
}

type Presets struct {
	Matches []Preset `yaml:"matches"`
}

// LoadPresets reads presets from path, or the embedded defaults when path
// is empty. Every preset must have a unique name, a valid scenario and a
// valid state.
func LoadPresets(path string) (Presets, error) {
	data := defaultPresetsData
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Presets{}, fmt.Errorf("read presets: %w", err)
		}
	}
	return ParsePresets(data)
}

func ParsePresets(data []byte) (Presets, error) {
	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Presets{}, fmt.Errorf("parse presets: %w", err)
	}

	seen := make(map[string]bool, len(p.Matches))
	for i, m := range p.Matches {
		if m.Name == "" {
			return Presets{}, fmt.Errorf("preset #%d: missing name", i+1)
		}
		key := display.NormalizeTeam(m.Name)
		if seen[key] {
			return Presets{}, fmt.Errorf("preset %q: duplicate name", m.Name)
		}
		seen[key] = true

		if _, err := scenario.ParseKind(m.Scenario); err != nil {
			return Presets{}, fmt.Errorf("preset %q: %w", m.Name, err)
		}
		if err := m.State.Validate(); err != nil {
			return Presets{}, fmt.Errorf("preset %q: %w", m.Name, err)
		}
	}
	return p, nil
}

// ByName looks a preset up ignoring case, accents and extra whitespace.
func (p Presets) ByName(name string) (Preset, bool) {
	key := display.NormalizeTeam(name)
	for _, m := range p.Matches {
		if display.NormalizeTeam(m.Name) == key {
			return m, true
		}
	}
	return Preset{}, false
}

// Kind is the preset's scenario, defaulting to both.
func (m Preset) Kind() scenario.Kind {
	k, _ := scenario.ParseKind(m.Scenario)
	return k
}
