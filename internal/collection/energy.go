package collection

import (
	"math"
	"regexp"
	"strconv"
)

// EnergySource names the step of the fallback chain that produced an energy value.
type EnergySource int

const (
	EnergyNone EnergySource = iota
	EnergyCue
	EnergyComment
	EnergyRating
)

func (s EnergySource) String() string {
	switch s {
	case EnergyCue:
		return "cue"
	case EnergyComment:
		return "comment"
	case EnergyRating:
		return "rating"
	default:
		return "none"
	}
}

var (
	cueEnergy     = regexp.MustCompile(`(?i)\b(?:energy|nrg|e)\s*[:=]?\s*(10|[1-9])\b`)
	commentEnergy = regexp.MustCompile(`(?i)\benergy\s*[:=]?\s*(10|[1-9])\b`)
)

// resolveEnergy walks cue labels, then comments, then the rating. The first step that yields a value wins.
func resolveEnergy(cues []string, comments string, rating int) (int, EnergySource) {
	if e, ok := cueMode(cues); ok {
		return e, EnergyCue
	}
	if m := commentEnergy.FindStringSubmatch(comments); m != nil {
		e, _ := strconv.Atoi(m[1])
		return e, EnergyComment
	}
	if e, ok := ratingEnergy(rating); ok {
		return e, EnergyRating
	}
	return 0, EnergyNone
}

// cueMode returns the most frequent energy value across all cue labels; ties go to the value seen first.
func cueMode(labels []string) (int, bool) {
	counts := make(map[int]int)
	var order []int
	for _, label := range labels {
		for _, m := range cueEnergy.FindAllStringSubmatch(label, -1) {
			e, _ := strconv.Atoi(m[1])
			if counts[e] == 0 {
				order = append(order, e)
			}
			counts[e]++
		}
	}

	best, bestCount := 0, 0
	for _, e := range order {
		if counts[e] > bestCount {
			best, bestCount = e, counts[e]
		}
	}
	return best, bestCount > 0
}

// ratingEnergy rescales a 0-255 rating to 1-5. 0 is unrated.
func ratingEnergy(rating int) (int, bool) {
	if rating <= 0 {
		return 0, false
	}
	e := int(math.Round(float64(rating) / 51))
	return max(1, min(5, e)), true
}
