package collection

import (
	"math"
	"strconv"
	"strings"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/shared"
	"github.com/desertthunder/digger/internal/xmltree"
)

// Track is a read view over a TRACK node owned by a [Document].
type Track struct {
	node     *xmltree.Node
	index    int
	analysis *models.Analysis
}

func newTrack(n *xmltree.Node, index int) *Track {
	t := &Track{node: n, index: index}
	if a, ok := existingAnalysis(t.Comments(), t.Genre(), t.Year()); ok {
		t.analysis = &a
	}
	return t
}

func (t *Track) ID() string       { return t.node.AttrValue(attrTrackID) }
func (t *Track) Name() string     { return t.node.AttrValue(attrName) }
func (t *Track) Artist() string   { return t.node.AttrValue(attrArtist) }
func (t *Track) Album() string    { return t.node.AttrValue(attrAlbum) }
func (t *Track) Genre() string    { return t.node.AttrValue(attrGenre) }
func (t *Track) Tonality() string { return t.node.AttrValue(attrTonality) }
func (t *Track) Comments() string { return t.node.AttrValue(attrComments) }
func (t *Track) Location() string { return t.node.AttrValue(attrLocation) }

// Index is the position of the track in the collection.
func (t *Track) Index() int { return t.index }

// Key is the Camelot key, or "" when the tonality is missing or unrecognised.
func (t *Track) Key() string { return Camelot(t.Tonality()) }

// Bpm is the average tempo.
func (t *Track) Bpm() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(t.node.AttrValue(attrBpm)), 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

// Year is the release year, 0 when absent or not a number.
func (t *Track) Year() int { return t.intAttr(attrYear) }

// TotalTime is the duration in seconds.
func (t *Track) TotalTime() int { return t.intAttr(attrTime) }

func (t *Track) BitRate() int { return t.intAttr(attrBitRate) }

// Rating is the raw 0-255 star rating.
func (t *Track) Rating() int { return t.intAttr(attrRating) }

// HasGenre reports whether the genre attribute holds anything but whitespace.
func (t *Track) HasGenre() bool { return strings.TrimSpace(t.Genre()) != "" }

// HasYear reports whether the year is set to something other than the 0 sentinel.
func (t *Track) HasYear() bool {
	y := strings.TrimSpace(t.node.AttrValue(attrYear))
	return y != "" && y != "0"
}

// Analysis returns the tag set read from comments or recorded by [Document.Apply].
func (t *Track) Analysis() (models.Analysis, bool) {
	if t.analysis == nil {
		return models.Analysis{}, false
	}
	return *t.analysis, true
}

// Energy resolves the 1-10 energy level and where it came from.
func (t *Track) Energy() (int, EnergySource) {
	return resolveEnergy(t.cueLabels(), t.Comments(), t.Rating())
}

// Fingerprint is the duplicate bucket key.
func (t *Track) Fingerprint() string {
	return shared.Fingerprint(t.Artist(), t.Name())
}

func (t *Track) cueLabels() []string {
	var labels []string
	for _, m := range t.node.Elements(elemPositionMark) {
		if name := m.AttrValue(attrName); name != "" {
			labels = append(labels, name)
		}
	}
	return labels
}

func (t *Track) intAttr(name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(t.node.AttrValue(name)))
	if err != nil {
		return 0
	}
	return v
}
