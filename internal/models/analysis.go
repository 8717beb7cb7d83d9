package models

import (
	"fmt"
	"strings"
)

// Unknown is the sentinel every unvalidated or unmatched tag value collapses to.
const Unknown = "Unknown"

// Analysis is a validated tag set. Every string field except TagString is a vocabulary member or [Unknown].
type Analysis struct {
	Mood      string `json:"mood" yaml:"mood"`
	SubGenre  string `json:"sub_genre" yaml:"sub_genre"`
	MainGenre string `json:"main_genre" yaml:"main_genre"`
	Situation string `json:"situation" yaml:"situation"`
	Year      int    `json:"year,omitempty" yaml:"year,omitempty"`
	TagString string `json:"tag_string,omitempty" yaml:"tag_string,omitempty"`
}

// UnknownAnalysis returns an Analysis with every dimension set to [Unknown].
func UnknownAnalysis() Analysis {
	return Analysis{Mood: Unknown, SubGenre: Unknown, MainGenre: Unknown, Situation: Unknown}
}

// Known reports whether v carries a real vocabulary value.
func Known(v string) bool {
	return v != "" && v != Unknown
}

// Genre picks the genre written into the document: the main genre, else the sub-genre, else "".
func (a Analysis) Genre() string {
	switch {
	case Known(a.MainGenre):
		return a.MainGenre
	case Known(a.SubGenre):
		return a.SubGenre
	default:
		return ""
	}
}

// IsEmpty reports whether no dimension is known and no year is set.
func (a Analysis) IsEmpty() bool {
	return !Known(a.Mood) && !Known(a.SubGenre) && !Known(a.MainGenre) && !Known(a.Situation) && a.Year == 0
}

// Merge overlays the known dimensions and year of newer onto a.
func (a Analysis) Merge(newer Analysis) Analysis {
	pick := func(old, v string) string {
		if Known(v) || old == "" {
			return v
		}
		return old
	}

	out := Analysis{
		Mood:      pick(a.Mood, newer.Mood),
		SubGenre:  pick(a.SubGenre, newer.SubGenre),
		MainGenre: pick(a.MainGenre, newer.MainGenre),
		Situation: pick(a.Situation, newer.Situation),
		Year:      a.Year,
		TagString: a.TagString,
	}
	if newer.Year != 0 {
		out.Year = newer.Year
	}
	if newer.TagString != "" {
		out.TagString = newer.TagString
	}
	return out
}

// Mode selects which gap a tagging job fills.
type Mode int

const (
	ModeFull Mode = iota
	ModeMissingGenre
	ModeMissingYear
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeMissingGenre:
		return "genre"
	case ModeMissingYear:
		return "year"
	default:
		return "unknown"
	}
}

// ParseMode accepts the CLI spellings of a [Mode].
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return ModeFull, nil
	case "genre", "missing-genre", "missing_genre":
		return ModeMissingGenre, nil
	case "year", "missing-year", "missing_year":
		return ModeMissingYear, nil
	default:
		return ModeFull, fmt.Errorf("unknown mode %q (want full, genre or year)", s)
	}
}

// MarshalText encodes the mode by name in JSON and YAML reports.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText is the inverse of [Mode.MarshalText].
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Resolves reports whether a validated result fills the gap this mode targets.
func (m Mode) Resolves(a Analysis) bool {
	switch m {
	case ModeMissingGenre:
		return a.Genre() != ""
	case ModeMissingYear:
		return a.Year != 0
	default:
		return !a.IsEmpty()
	}
}

// Covers reports whether a cached analysis lets a job of this mode skip the tagging service.
// Full jobs need a known mood, sub-genre or situation; a cached genre or year alone does not cover them.
func (m Mode) Covers(a Analysis) bool {
	if m == ModeFull {
		return Known(a.Mood) || Known(a.SubGenre) || Known(a.Situation)
	}
	return m.Resolves(a)
}

// Strategy is an opaque policy hint for the tagging service.
type Strategy int

const (
	StrategyStandard Strategy = iota
	// StrategyAuthoritative asks the service for its slower, more reliable resolution path.
	StrategyAuthoritative
)

func (s Strategy) String() string {
	if s == StrategyAuthoritative {
		return "authoritative"
	}
	return "standard"
}

func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ParseStrategy is the inverse of [Strategy.String]; anything unrecognised is standard.
func ParseStrategy(s string) Strategy {
	if strings.EqualFold(s, "authoritative") {
		return StrategyAuthoritative
	}
	return StrategyStandard
}
