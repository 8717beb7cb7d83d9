package dupes

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/digger/internal/collection"
	tu "github.com/desertthunder/digger/internal/testing"
)

type fakeTrack struct {
	id, artist, name string
	secs             int
}

func tracksFrom(t *testing.T, fakes ...fakeTrack) []*collection.Track {
	t.Helper()

	var b strings.Builder
	b.WriteString("<DJ_PLAYLISTS><COLLECTION>")
	for _, f := range fakes {
		fmt.Fprintf(&b, `<TRACK TrackID="%s" Name="%s" Artist="%s" TotalTime="%d"/>`, f.id, f.name, f.artist, f.secs)
	}
	b.WriteString("</COLLECTION></DJ_PLAYLISTS>")

	doc, err := collection.Parse([]byte(b.String()))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc.Tracks()
}

func TestFind(t *testing.T) {
	t.Run("Duration Window", func(t *testing.T) {
		tracks := tracksFrom(t,
			fakeTrack{"A", "Nova", "Drive", 200},
			fakeTrack{"B", "Nova", "Drive", 201},
			fakeTrack{"C", "Nova", "Drive", 210},
		)

		res := Find(tracks)
		if len(res.Groups) != 1 {
			t.Fatalf("len(Groups) = %d, want 1", len(res.Groups))
		}
		if got := res.Groups[0].IDs(); !slices.Equal(got, []string{"A", "B"}) {
			t.Errorf("members = %v, want [A B]", got)
		}
		if res.Contains("C") {
			t.Error("C should not be a duplicate")
		}
	})

	t.Run("Non Transitive Chain", func(t *testing.T) {
		tracks := tracksFrom(t,
			fakeTrack{"A", "Nova", "Drive", 200},
			fakeTrack{"B", "Nova", "Drive", 202},
			fakeTrack{"C", "Nova", "Drive", 204},
		)

		res := Find(tracks)
		if len(res.Groups) != 1 {
			t.Fatalf("len(Groups) = %d, want 1", len(res.Groups))
		}
		if got := res.Groups[0].IDs(); !slices.Equal(got, []string{"A", "B", "C"}) {
			t.Errorf("members = %v, want [A B C]", got)
		}
	})

	t.Run("Unknown Duration Never Matches", func(t *testing.T) {
		tracks := tracksFrom(t,
			fakeTrack{"A", "Nova", "Drive", 0},
			fakeTrack{"B", "Nova", "Drive", 0},
		)

		if res := Find(tracks); len(res.Groups) != 0 || res.Members() != 0 {
			t.Errorf("expected no groups, got %+v", res.Groups)
		}
	})

	t.Run("Fingerprint Folding", func(t *testing.T) {
		tracks := tracksFrom(t,
			fakeTrack{"1", "Tiësto", "Adagio for Strings", 300},
			fakeTrack{"2", "tiesto", "Adagio For Strings!", 301},
			fakeTrack{"3", "Tiesto", "Adagio for Strings (Remix)", 300},
		)

		res := Find(tracks)
		if len(res.Groups) != 1 || !slices.Equal(res.Groups[0].IDs(), []string{"1", "2"}) {
			t.Errorf("unexpected groups %+v", res.Sorted())
		}
	})

	t.Run("Groups Ordered By First Appearance", func(t *testing.T) {
		tracks := tracksFrom(t,
			fakeTrack{"x1", "Zed", "Last", 100},
			fakeTrack{"a1", "Abe", "First", 100},
			fakeTrack{"a2", "Abe", "First", 100},
			fakeTrack{"x2", "Zed", "Last", 101},
		)

		res := Find(tracks)
		if got := res.Sorted(); !slices.Equal(got, []string{"x1", "x2", "a1", "a2"}) {
			t.Errorf("Sorted() = %v", got)
		}
	})

	t.Run("Sample Collection", func(t *testing.T) {
		doc, err := collection.Parse([]byte(tu.SampleCollection))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		res := Find(doc.Tracks())
		if got := res.Sorted(); !slices.Equal(got, []string{"1", "2"}) {
			t.Errorf("Sorted() = %v, want [1 2]", got)
		}
	})
}
