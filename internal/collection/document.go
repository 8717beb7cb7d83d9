// Package collection models a rekordbox DJ_PLAYLISTS export.
//
// A [Document] owns the parsed tree. [Track] values are read views over TRACK nodes; the only way to change a track is
// [Document.Apply], which writes through to the node so the view and the tree never diverge. [Document.Export]
// normalizes file locations and serializes the tree in its original order.
package collection

import (
	"fmt"
	"os"

	"github.com/desertthunder/digger/internal/shared"
	"github.com/desertthunder/digger/internal/xmltree"
)

// Element and attribute names of the export format.
const (
	elemRoot         = "DJ_PLAYLISTS"
	elemCollection   = "COLLECTION"
	elemTrack        = "TRACK"
	elemPositionMark = "POSITION_MARK"
	elemPlaylists    = "PLAYLISTS"
	elemNode         = "NODE"

	attrTrackID  = "TrackID"
	attrName     = "Name"
	attrArtist   = "Artist"
	attrAlbum    = "Album"
	attrGenre    = "Genre"
	attrTonality = "Tonality"
	attrYear     = "Year"
	attrBpm      = "AverageBpm"
	attrTime     = "TotalTime"
	attrBitRate  = "BitRate"
	attrRating   = "Rating"
	attrComments = "Comments"
	attrLocation = "Location"

	// PlaylistRootName is the name of the top NODE under PLAYLISTS.
	PlaylistRootName = "ROOT"
	// IndentUnit is the per-level indentation rekordbox writes.
	IndentUnit = "  "
)

// Document is a parsed collection.
type Document struct {
	tree       *xmltree.Document
	root       *xmltree.Node
	collection *xmltree.Node
	tracks     []*Track
	byID       map[string]*Track
}

// Parse builds a [Document] from an export. It fails with [shared.ErrMalformedDocument] for invalid XML,
// [shared.ErrStructureMissing] when DJ_PLAYLISTS or COLLECTION is absent, and [shared.ErrInvalidTrack] when a TRACK
// lacks TrackID, Name or Artist or repeats a TrackID.
func Parse(src []byte) (*Document, error) {
	tree, err := xmltree.Parse(src)
	if err != nil {
		return nil, err
	}

	root := tree.Root()
	if root.Name() != elemRoot {
		return nil, fmt.Errorf("%w: root element is <%s>, want <%s>", shared.ErrStructureMissing, root.Name(), elemRoot)
	}

	coll := root.Element(elemCollection)
	if coll == nil {
		return nil, fmt.Errorf("%w: <%s>", shared.ErrStructureMissing, elemCollection)
	}

	d := &Document{tree: tree, root: root, collection: coll, byID: make(map[string]*Track)}
	for i, n := range coll.Elements(elemTrack) {
		for _, attr := range []string{attrTrackID, attrName, attrArtist} {
			if _, ok := n.Attr(attr); !ok {
				return nil, fmt.Errorf("%w: track #%d has no %s", shared.ErrInvalidTrack, i+1, attr)
			}
		}

		t := newTrack(n, i)
		if _, dup := d.byID[t.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate TrackID %q", shared.ErrInvalidTrack, t.ID())
		}
		d.tracks = append(d.tracks, t)
		d.byID[t.ID()] = t
	}

	return d, nil
}

// Load reads and parses the export at path.
func Load(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	return Parse(src)
}

// Tracks returns every track in document order. Callers must not modify the slice.
func (d *Document) Tracks() []*Track { return d.tracks }

// Track looks a track up by TrackID.
func (d *Document) Track(id string) (*Track, bool) {
	t, ok := d.byID[id]
	return t, ok
}

// Resolve maps ids to tracks, keeping order and dropping ids that are not in the collection.
func (d *Document) Resolve(ids []string) (found []*Track, missing []string) {
	for _, id := range ids {
		if t, ok := d.byID[id]; ok {
			found = append(found, t)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// PlaylistRoot returns the ROOT node under PLAYLISTS, or nil when the export has none.
func (d *Document) PlaylistRoot() *xmltree.Node {
	pl := d.root.Element(elemPlaylists)
	if pl == nil {
		return nil
	}
	for _, n := range pl.Elements(elemNode) {
		if n.AttrValue(attrName) == PlaylistRootName {
			return n
		}
	}
	return nil
}

// EnsurePlaylistRoot returns the ROOT node, creating PLAYLISTS and ROOT when the export lacks them.
func (d *Document) EnsurePlaylistRoot() *xmltree.Node {
	if n := d.PlaylistRoot(); n != nil {
		return n
	}

	pl := d.root.Element(elemPlaylists)
	if pl == nil {
		pl = xmltree.NewElement(elemPlaylists)
		d.root.AppendIndented(pl, IndentUnit)
	}

	n := NewFolderNode(PlaylistRootName)
	pl.AppendIndented(n, IndentUnit)
	return n
}

// Bytes serializes the tree as it is, without the location pass.
func (d *Document) Bytes() []byte {
	return d.tree.Bytes()
}

// Export normalizes every track Location and serializes the tree. Exporting twice yields identical bytes.
func (d *Document) Export() []byte {
	for _, t := range d.tracks {
		loc, ok := t.node.Attr(attrLocation)
		if !ok {
			continue
		}
		if norm := NormalizeLocation(loc); norm != loc {
			t.node.SetAttr(attrLocation, norm)
		}
	}
	return d.tree.Bytes()
}

// Save exports the document to path.
func (d *Document) Save(path string) error {
	if err := os.WriteFile(path, d.Export(), 0o644); err != nil {
		return fmt.Errorf("failed to write collection: %w", err)
	}
	return nil
}
