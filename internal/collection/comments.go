package collection

import (
	"regexp"
	"strings"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/vocab"
)

var hashToken = regexp.MustCompile(`#[\p{L}\p{N}]+`)

// existingAnalysis rebuilds an analysis from hash tokens in comments. At least one token must match a vocabulary;
// the first match per dimension wins.
func existingAnalysis(comments, genre string, year int) (models.Analysis, bool) {
	a := models.UnknownAnalysis()
	matched := false

	for _, tok := range hashToken.FindAllString(comments, -1) {
		dim, v, ok := vocab.MatchToken(tok)
		if !ok {
			continue
		}
		switch dim {
		case vocab.Mood:
			if a.Mood == vocab.Unknown {
				a.Mood = v
			}
		case vocab.SubGenre:
			if a.SubGenre == vocab.Unknown {
				a.SubGenre = v
			}
		case vocab.Situation:
			if a.Situation == vocab.Unknown {
				a.Situation = v
			}
		}
		matched = true
	}
	if !matched {
		return models.Analysis{}, false
	}

	a.MainGenre = vocab.Normalize(vocab.MainGenre, genre)
	a.Year = vocab.ValidYear(year)
	a.TagString = vocab.TagString(a)
	return a, true
}

// appendTags adds the tokens of a's known mood, sub-genre and situation to comments, skipping tokens already present.
func appendTags(comments string, a models.Analysis) string {
	have := make(map[string]struct{})
	for _, tok := range hashToken.FindAllString(comments, -1) {
		have[strings.ToLower(tok)] = struct{}{}
	}

	var add []string
	for _, v := range []string{a.Mood, a.SubGenre, a.Situation} {
		if !models.Known(v) {
			continue
		}
		tok := vocab.Token(v)
		if _, ok := have[strings.ToLower(tok)]; ok {
			continue
		}
		have[strings.ToLower(tok)] = struct{}{}
		add = append(add, tok)
	}
	if len(add) == 0 {
		return comments
	}

	out := strings.TrimRight(comments, " ")
	if out != "" {
		out += " "
	}
	return out + strings.Join(add, " ")
}
