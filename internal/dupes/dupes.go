// Package dupes finds duplicate tracks by artist/title fingerprint and duration proximity.
//
// Tracks are bucketed by [shared.Fingerprint]. Within a bucket every pair is compared; a pair is a confirmed duplicate
// when both durations are known and differ by at most [MaxDurationDelta] seconds. A group holds every track that sits
// on either side of a confirmed pair. Confirmation is pairwise, not transitive: A~B and B~C with A!~C still yields one
// group of three.
package dupes

import (
	"sort"

	"github.com/desertthunder/digger/internal/collection"
)

// MaxDurationDelta is the largest duration difference, in seconds, between two copies of a track.
const MaxDurationDelta = 2

// Group is one set of duplicate tracks sharing a fingerprint, in document order.
type Group struct {
	Fingerprint string
	Members     []*collection.Track
}

// IDs returns the member track ids in document order.
func (g Group) IDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID()
	}
	return ids
}

// Result holds every duplicate id and the groups they belong to, ordered by first appearance.
type Result struct {
	IDs    map[string]struct{}
	Groups []Group
}

// Contains reports whether id is a member of any group.
func (r Result) Contains(id string) bool {
	_, ok := r.IDs[id]
	return ok
}

// Sorted returns the duplicate ids grouped by group, then in document order within each group.
func (r Result) Sorted() []string {
	var ids []string
	for _, g := range r.Groups {
		ids = append(ids, g.IDs()...)
	}
	return ids
}

// Members counts tracks that belong to a group.
func (r Result) Members() int { return len(r.IDs) }

// Find groups duplicate tracks. Input order is treated as document order.
func Find(tracks []*collection.Track) Result {
	res := Result{IDs: make(map[string]struct{})}

	buckets := make(map[string][]int)
	var keys []string
	for i, t := range tracks {
		fp := t.Fingerprint()
		if fp == "" {
			continue
		}
		if _, ok := buckets[fp]; !ok {
			keys = append(keys, fp)
		}
		buckets[fp] = append(buckets[fp], i)
	}

	for _, fp := range keys {
		idx := buckets[fp]
		if len(idx) < 2 {
			continue
		}

		confirmed := make(map[int]bool)
		for a := 0; a < len(idx); a++ {
			for b := a + 1; b < len(idx); b++ {
				if sameLength(tracks[idx[a]], tracks[idx[b]]) {
					confirmed[idx[a]] = true
					confirmed[idx[b]] = true
				}
			}
		}
		if len(confirmed) < 2 {
			continue
		}

		g := Group{Fingerprint: fp}
		for _, i := range idx {
			if confirmed[i] {
				g.Members = append(g.Members, tracks[i])
				res.IDs[tracks[i].ID()] = struct{}{}
			}
		}
		res.Groups = append(res.Groups, g)
	}

	sort.SliceStable(res.Groups, func(i, j int) bool {
		return res.Groups[i].Members[0].Index() < res.Groups[j].Members[0].Index()
	})
	return res
}

func sameLength(a, b *collection.Track) bool {
	da, db := a.TotalTime(), b.TotalTime()
	if da <= 0 || db <= 0 {
		return false
	}
	d := da - db
	if d < 0 {
		d = -d
	}
	return d <= MaxDurationDelta
}
