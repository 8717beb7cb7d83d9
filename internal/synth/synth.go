// Package synth rebuilds the generated playlist folder of a collection from track analyses.
//
// Every pass removes the folders named [Options.RootName] under the playlist ROOT and appends a fresh one:
//
//	<root name>
//	├── Duplicates            (when duplicate ids are given)
//	├── Mood/<value>...
//	├── Sub-Genre/<value>...
//	├── Situation/<value>...
//	└── Saved Selections/<name>...  (when selections are given)
//
// Count and Entries are rewritten for the whole playlist tree afterwards.
package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/digger/internal/collection"
	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/shared"
	"github.com/desertthunder/digger/internal/vocab"
	"github.com/desertthunder/digger/internal/xmltree"
)

const (
	DefaultRootName = "digger"
	DuplicatesName  = "Duplicates"
	SelectionsName  = "Saved Selections"
)

// dimensions are grouped in this order.
var dimensions = []vocab.Dimension{vocab.Mood, vocab.SubGenre, vocab.Situation}

// Options controls one synthesis pass.
type Options struct {
	RootName     string
	DuplicateIDs []string
	Selections   []*models.Selection
}

// Summary describes the folder that was written.
type Summary struct {
	RootName   string         `json:"root_name" yaml:"root_name"`
	Replaced   int            `json:"replaced" yaml:"replaced"`
	Folders    int            `json:"folders" yaml:"folders"`
	Playlists  int            `json:"playlists" yaml:"playlists"`
	Entries    int            `json:"entries" yaml:"entries"`
	Duplicates int            `json:"duplicates" yaml:"duplicates"`
	Dimensions map[string]int `json:"dimensions" yaml:"dimensions"`
	// Missing lists selection ids that are not in the collection.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Synthesize writes the generated folder for tracks into doc and returns what it wrote.
func Synthesize(doc *collection.Document, tracks []*collection.Track, opts Options) (*Summary, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", shared.ErrMissingArgument)
	}
	name := strings.TrimSpace(opts.RootName)
	if name == "" {
		name = DefaultRootName
	}

	root := doc.EnsurePlaylistRoot()
	sum := &Summary{RootName: name, Dimensions: map[string]int{}}

	for _, n := range root.Elements("NODE") {
		if n.AttrValue("Name") == name {
			root.RemoveChild(n)
			sum.Replaced++
		}
	}

	top := collection.NewFolderNode(name)
	root.AppendIndented(top, collection.IndentUnit)
	sum.Folders++

	if len(opts.DuplicateIDs) > 0 {
		ids := dedupe(opts.DuplicateIDs)
		addPlaylist(top, DuplicatesName, ids, sum)
		sum.Duplicates = len(ids)
	}

	groups := group(tracks)
	for _, dim := range dimensions {
		values := groups[dim]
		if len(values) == 0 {
			continue
		}
		folder := collection.NewFolderNode(dim.Title())
		top.AppendIndented(folder, collection.IndentUnit)
		sum.Folders++

		names := make([]string, 0, len(values))
		for v := range values {
			names = append(names, v)
		}
		sort.Strings(names)
		for _, v := range names {
			addPlaylist(folder, v, values[v], sum)
		}
		sum.Dimensions[dim.String()] = len(names)
	}

	if len(opts.Selections) > 0 {
		folder := collection.NewFolderNode(SelectionsName)
		top.AppendIndented(folder, collection.IndentUnit)
		sum.Folders++

		for _, sel := range opts.Selections {
			if sel == nil {
				continue
			}
			found, missing := doc.Resolve(sel.TrackIDs())
			ids := make([]string, len(found))
			for i, t := range found {
				ids[i] = t.ID()
			}
			addPlaylist(folder, sel.Name(), ids, sum)
			sum.Missing = append(sum.Missing, missing...)
		}
	}

	collection.RefreshCounts(root)
	return sum, nil
}

// group maps each dimension to value → track ids in input order. Unknown values are skipped.
func group(tracks []*collection.Track) map[vocab.Dimension]map[string][]string {
	out := map[vocab.Dimension]map[string][]string{}
	for _, t := range tracks {
		a, ok := t.Analysis()
		if !ok {
			continue
		}
		for _, dim := range dimensions {
			v := value(a, dim)
			if !models.Known(v) {
				continue
			}
			if out[dim] == nil {
				out[dim] = map[string][]string{}
			}
			out[dim][v] = append(out[dim][v], t.ID())
		}
	}
	return out
}

func value(a models.Analysis, dim vocab.Dimension) string {
	switch dim {
	case vocab.Mood:
		return a.Mood
	case vocab.SubGenre:
		return a.SubGenre
	case vocab.Situation:
		return a.Situation
	default:
		return ""
	}
}

func addPlaylist(parent *xmltree.Node, name string, ids []string, sum *Summary) {
	pl := collection.NewPlaylistNode(name)
	parent.AppendIndented(pl, collection.IndentUnit)
	for _, id := range ids {
		pl.AppendIndented(collection.NewTrackRef(id), collection.IndentUnit)
	}
	sum.Playlists++
	sum.Entries += len(ids)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
