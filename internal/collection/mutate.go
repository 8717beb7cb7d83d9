package collection

import (
	"strconv"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/vocab"
)

// Apply merges a validated analysis into t under the precedence rules of mode and returns the attributes it changed.
//
//   - [models.ModeMissingGenre] sets Genre from the main genre, falling back to the sub-genre, only when Genre is empty.
//   - [models.ModeMissingYear] sets Year only when it is empty or 0 and the analysis carries a year.
//   - [models.ModeFull] appends new tag tokens to Comments, fills Year and Genre only when empty and records the
//     analysis on the track with the node's resulting genre and year.
//
// Tracks that do not belong to d are ignored.
func (d *Document) Apply(t *Track, a models.Analysis, mode models.Mode) []string {
	if t == nil || d.byID[t.ID()] != t {
		return nil
	}

	var changed []string
	set := func(attr, value string) {
		if t.node.SetAttr(attr, value) {
			changed = append(changed, attr)
		}
	}
	fillGenre := func() {
		if g := a.Genre(); g != "" && !t.HasGenre() {
			set(attrGenre, g)
		}
	}
	fillYear := func() {
		if a.Year != 0 && !t.HasYear() {
			set(attrYear, strconv.Itoa(a.Year))
		}
	}

	switch mode {
	case models.ModeMissingGenre:
		fillGenre()
	case models.ModeMissingYear:
		fillYear()
	case models.ModeFull:
		if merged := appendTags(t.Comments(), a); merged != t.Comments() {
			set(attrComments, merged)
		}
		fillYear()
		fillGenre()

		rec := a
		rec.MainGenre = vocab.Normalize(vocab.MainGenre, t.Genre())
		rec.Year = vocab.ValidYear(t.Year())
		rec.TagString = vocab.TagString(a)
		t.analysis = &rec
	}
	return changed
}
