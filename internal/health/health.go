// Package health scores how complete a collection's metadata is.
package health

import (
	"math"

	"github.com/desertthunder/digger/internal/collection"
	"github.com/desertthunder/digger/internal/dupes"
)

// Field names reported in [Issue.Missing].
const (
	FieldGenre    = "genre"
	FieldYear     = "year"
	FieldKey      = "key"
	FieldAnalysis = "analysis"
	FieldEnergy   = "energy"
)

var fields = []string{FieldGenre, FieldYear, FieldKey, FieldAnalysis, FieldEnergy}

// DuplicatePenalty weighs the duplicate share against completeness.
const DuplicatePenalty = 0.5

// Issue lists the fields a single track lacks.
type Issue struct {
	ID      string   `json:"id" yaml:"id"`
	Artist  string   `json:"artist" yaml:"artist"`
	Name    string   `json:"name" yaml:"name"`
	Missing []string `json:"missing" yaml:"missing"`
}

// Report summarises library health.
type Report struct {
	Tracks           int            `json:"tracks" yaml:"tracks"`
	Missing          map[string]int `json:"missing" yaml:"missing"`
	EnergySources    map[string]int `json:"energy_sources" yaml:"energy_sources"`
	DuplicateGroups  int            `json:"duplicate_groups" yaml:"duplicate_groups"`
	DuplicateMembers int            `json:"duplicate_members" yaml:"duplicate_members"`
	Completeness     float64        `json:"completeness" yaml:"completeness"`
	Score            float64        `json:"score" yaml:"score"`
	Issues           []Issue        `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Compute builds a [Report]. Score is the mean share of present fields as a percentage, less [DuplicatePenalty]
// times the percentage of tracks in a duplicate group, clamped to 0..100. An empty collection scores 0.
func Compute(tracks []*collection.Track, dup dupes.Result) Report {
	r := Report{
		Tracks:           len(tracks),
		Missing:          make(map[string]int, len(fields)),
		EnergySources:    map[string]int{},
		DuplicateGroups:  len(dup.Groups),
		DuplicateMembers: dup.Members(),
	}
	for _, f := range fields {
		r.Missing[f] = 0
	}
	if len(tracks) == 0 {
		return r
	}

	present := 0
	for _, t := range tracks {
		missing := missingFields(t)
		for _, f := range missing {
			r.Missing[f]++
		}
		present += len(fields) - len(missing)

		_, src := t.Energy()
		r.EnergySources[src.String()]++

		if len(missing) > 0 {
			r.Issues = append(r.Issues, Issue{ID: t.ID(), Artist: t.Artist(), Name: t.Name(), Missing: missing})
		}
	}

	n := float64(len(tracks))
	r.Completeness = float64(present) / (n * float64(len(fields)))
	share := float64(r.DuplicateMembers) / n
	r.Score = clamp(r.Completeness*100-DuplicatePenalty*share*100, 0, 100)
	return r
}

func missingFields(t *collection.Track) []string {
	var out []string
	if !t.HasGenre() {
		out = append(out, FieldGenre)
	}
	if !t.HasYear() {
		out = append(out, FieldYear)
	}
	if t.Key() == "" {
		out = append(out, FieldKey)
	}
	if _, ok := t.Analysis(); !ok {
		out = append(out, FieldAnalysis)
	}
	if _, src := t.Energy(); src == collection.EnergyNone {
		out = append(out, FieldEnergy)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
