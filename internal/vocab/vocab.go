// Package vocab holds the closed tag vocabularies and validates untrusted tag values against them.
//
// Matching is case, punctuation and diacritic insensitive. Anything that does not match collapses to [Unknown]; the raw
// value is never passed through.
package vocab

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/shared"
)

// Unknown is the validation fallback.
const Unknown = models.Unknown

// MinYear is the earliest release year accepted from the tagging service.
const MinYear = 1900

// Dimension names one tag vocabulary.
type Dimension int

const (
	Mood Dimension = iota
	SubGenre
	MainGenre
	Situation
)

func (d Dimension) String() string {
	switch d {
	case Mood:
		return "mood"
	case SubGenre:
		return "sub-genre"
	case MainGenre:
		return "main-genre"
	case Situation:
		return "situation"
	default:
		return "unknown"
	}
}

var titler = cases.Title(language.English)

// Title is the display name used for synthesized folders ("Sub-Genre").
func (d Dimension) Title() string {
	return titler.String(d.String())
}

var Moods = []string{
	"Aggressive", "Chill", "Dark", "Dreamy", "Emotional", "Energetic", "Euphoric", "Funky",
	"Groovy", "Happy", "Hypnotic", "Melancholic", "Mysterious", "Romantic", "Uplifting",
}

var SubGenres = []string{
	"Afro House", "Amapiano", "Breaks", "Deep House", "Disco", "Downtempo", "Drum & Bass", "Dubstep",
	"Electro", "Hard Techno", "Jackin House", "Melodic Techno", "Minimal", "Nu Disco", "Organic House",
	"Peak Time Techno", "Progressive House", "Reggaeton", "Tech House", "Trance", "UK Garage",
}

var MainGenres = []string{
	"Ambient", "Disco", "Drum & Bass", "Dubstep", "Electronic", "Funk", "Hip Hop", "House",
	"Latin", "Pop", "R&B", "Rock", "Soul", "Techno", "Trance",
}

var Situations = []string{
	"After Hours", "Background", "Closing", "Dinner", "Lounge", "Party", "Peak Time", "Road Trip",
	"Warm Up", "Workout",
}

var index = map[Dimension]map[string]string{
	Mood:      buildIndex(Moods),
	SubGenre:  buildIndex(SubGenres),
	MainGenre: buildIndex(MainGenres),
	Situation: buildIndex(Situations),
}

func buildIndex(values []string) map[string]string {
	m := make(map[string]string, len(values))
	for _, v := range values {
		m[shared.FoldKey(v)] = v
	}
	return m
}

// Values returns the members of d.
func Values(d Dimension) []string {
	switch d {
	case Mood:
		return Moods
	case SubGenre:
		return SubGenres
	case MainGenre:
		return MainGenres
	case Situation:
		return Situations
	default:
		return nil
	}
}

// Normalize returns the canonical member of d matching raw, or [Unknown].
func Normalize(d Dimension, raw string) string {
	key := shared.FoldKey(raw)
	if key == "" {
		return Unknown
	}
	if v, ok := index[d][key]; ok {
		return v
	}
	return Unknown
}

// Contains reports whether v is a canonical member of d.
func Contains(d Dimension, v string) bool {
	got, ok := index[d][shared.FoldKey(v)]
	return ok && got == v
}

// RawAnalysis is an unvalidated tag set as returned by the tagging service.
type RawAnalysis struct {
	Mood      string
	SubGenre  string
	MainGenre string
	Situation string
	Year      int
}

// Validate is the only path from untrusted tags to a [models.Analysis].
func Validate(raw RawAnalysis) models.Analysis {
	a := models.Analysis{
		Mood:      Normalize(Mood, raw.Mood),
		SubGenre:  Normalize(SubGenre, raw.SubGenre),
		MainGenre: Normalize(MainGenre, raw.MainGenre),
		Situation: Normalize(Situation, raw.Situation),
		Year:      ValidYear(raw.Year),
	}
	a.TagString = TagString(a)
	return a
}

// ValidYear returns y when it lies in [MinYear, next year], else 0.
func ValidYear(y int) int {
	if y < MinYear || y > time.Now().Year()+1 {
		return 0
	}
	return y
}

// Token renders v as a hash tag: "Deep House" becomes "#DeepHouse".
func Token(v string) string {
	var b strings.Builder
	b.WriteByte('#')
	for _, r := range v {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TagString joins the tokens of the known mood, sub-genre and situation, in that order.
func TagString(a models.Analysis) string {
	var tokens []string
	for _, v := range []string{a.Mood, a.SubGenre, a.Situation} {
		if models.Known(v) {
			tokens = append(tokens, Token(v))
		}
	}
	return strings.Join(tokens, " ")
}

// tokenDimensions is the lookup order for hash tokens found in comments.
var tokenDimensions = []Dimension{Mood, SubGenre, Situation}

// MatchToken resolves a hash token ("#deephouse", "DeepHouse") to its dimension and canonical value.
func MatchToken(token string) (Dimension, string, bool) {
	key := shared.FoldKey(strings.TrimPrefix(token, "#"))
	if key == "" {
		return 0, "", false
	}
	for _, d := range tokenDimensions {
		if v, ok := index[d][key]; ok {
			return d, v, true
		}
	}
	return 0, "", false
}
