package display

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Teams names the two sides for table headers. Either may be empty.
type Teams struct {
	Batting string `json:"batting_first,omitempty"`
	Chasing string `json:"chasing,omitempty"`
}

func (t Teams) empty() bool { return t.Batting == "" && t.Chasing == "" }

var teamSuffixes = map[string]bool{
	"CC": true, "XI": true, "CCC": true, "SC": true, "FC": true,
}

// ShortName drops club suffixes and keeps the last word, e.g.
// "Auckland Aces" -> "Aces", "Lahore Qalandars CC" -> "Qalandars".
func ShortName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return name
	}
	last := parts[len(parts)-1]
	if len(parts) > 1 && teamSuffixes[strings.ToUpper(last)] {
		return parts[len(parts)-2]
	}
	return last
}

// HeaderName is the form used in table headers: diacritics folded,
// whitespace collapsed, then shortened, e.g. "  Sagicor   Héroes CC" -> "Heroes".
func HeaderName(name string) string {
	return ShortName(fold(name))
}

// NormalizeTeam is the comparison key for team and preset names: folded
// and lowercased, so names typed in different forms compare equal.
func NormalizeTeam(s string) string {
	return strings.ToLower(fold(s))
}

// fold strips combining accents and collapses runs of whitespace.
func fold(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
