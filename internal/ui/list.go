package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/digger/internal/collection"
)

var _ list.Item = trackItem{}

// trackItem describes an unresolved track for [list.Model].
type trackItem struct {
	id     string
	artist string
	name   string
}

func newTrackItem(id string, t *collection.Track) trackItem {
	if t == nil {
		return trackItem{id: id}
	}
	return trackItem{id: id, artist: t.Artist(), name: t.Name()}
}

func (i trackItem) FilterValue() string { return i.artist + " " + i.name }
func (i trackItem) Title() string {
	switch {
	case i.name == "":
		return "Track " + i.id
	case i.artist == "":
		return i.name
	default:
		return fmt.Sprintf("%s - %s", i.artist, i.name)
	}
}
func (i trackItem) Description() string { return "TrackID " + i.id }
