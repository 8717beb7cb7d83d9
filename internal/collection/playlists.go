package collection

import (
	"strconv"

	"github.com/desertthunder/digger/internal/xmltree"
)

// NODE Type values.
const (
	nodeTypeFolder   = "0"
	nodeTypePlaylist = "1"
)

// Playlist is a read-only summary of a folder or playlist NODE.
type Playlist struct {
	Path     []string // names of the enclosing folders below ROOT
	Name     string
	Folder   bool
	Count    int // the Count or Entries attribute as written
	Children int // child NODEs for folders, TRACK refs for playlists
	TrackIDs []string
}

// Consistent reports whether the cached count matches the actual children.
func (p Playlist) Consistent() bool { return p.Count == p.Children }

// Playlists walks the playlist tree below ROOT depth first.
func (d *Document) Playlists() []Playlist {
	root := d.PlaylistRoot()
	if root == nil {
		return nil
	}
	var out []Playlist
	walkPlaylists(root, nil, &out)
	return out
}

func walkPlaylists(n *xmltree.Node, path []string, out *[]Playlist) {
	for _, c := range n.Elements(elemNode) {
		p := Playlist{Path: append([]string(nil), path...), Name: c.AttrValue(attrName)}
		switch c.AttrValue("Type") {
		case nodeTypeFolder:
			p.Folder = true
			p.Count, _ = strconv.Atoi(c.AttrValue("Count"))
			p.Children = len(c.Elements(elemNode))
			*out = append(*out, p)
			walkPlaylists(c, append(path, p.Name), out)
		case nodeTypePlaylist:
			p.Count, _ = strconv.Atoi(c.AttrValue("Entries"))
			for _, ref := range c.Elements(elemTrack) {
				p.TrackIDs = append(p.TrackIDs, ref.AttrValue("Key"))
			}
			p.Children = len(p.TrackIDs)
			*out = append(*out, p)
		}
	}
}

// NewFolderNode builds an empty folder NODE.
func NewFolderNode(name string) *xmltree.Node {
	return xmltree.NewElement(elemNode,
		xmltree.Attr{Name: "Type", Value: nodeTypeFolder},
		xmltree.Attr{Name: attrName, Value: name},
		xmltree.Attr{Name: "Count", Value: "0"},
	)
}

// NewPlaylistNode builds an empty playlist NODE keyed by TrackID.
func NewPlaylistNode(name string) *xmltree.Node {
	return xmltree.NewElement(elemNode,
		xmltree.Attr{Name: attrName, Value: name},
		xmltree.Attr{Name: "Type", Value: nodeTypePlaylist},
		xmltree.Attr{Name: "KeyType", Value: "0"},
		xmltree.Attr{Name: "Entries", Value: "0"},
	)
}

// NewTrackRef builds a playlist entry pointing at a TrackID.
func NewTrackRef(id string) *xmltree.Node {
	return xmltree.NewElement(elemTrack, xmltree.Attr{Name: "Key", Value: id})
}

// IsFolder reports whether n is a folder NODE.
func IsFolder(n *xmltree.Node) bool {
	return n.Name() == elemNode && n.AttrValue("Type") == nodeTypeFolder
}

// RefreshCounts rewrites Count on every folder and Entries on every playlist in the subtree rooted at n so the cached
// values match the actual children.
func RefreshCounts(n *xmltree.Node) {
	n.Walk(func(c *xmltree.Node) bool {
		if c.Name() != elemNode {
			return true
		}
		switch c.AttrValue("Type") {
		case nodeTypeFolder:
			c.SetAttr("Count", strconv.Itoa(len(c.Elements(elemNode))))
		case nodeTypePlaylist:
			c.SetAttr("Entries", strconv.Itoa(len(c.Elements(elemTrack))))
			return false
		}
		return true
	})
}
