package health

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/desertthunder/digger/internal/collection"
	"github.com/desertthunder/digger/internal/dupes"
	tu "github.com/desertthunder/digger/internal/testing"
)

func TestCompute(t *testing.T) {
	doc, err := collection.Parse([]byte(tu.SampleCollection))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tracks := doc.Tracks()

	r := Compute(tracks, dupes.Find(tracks))

	want := map[string]int{FieldGenre: 3, FieldYear: 3, FieldKey: 1, FieldAnalysis: 4, FieldEnergy: 2}
	if diff := cmp.Diff(want, r.Missing); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"cue": 1, "comment": 1, "rating": 1, "none": 2}, r.EnergySources); diff != "" {
		t.Errorf("energy sources (-want +got):\n%s", diff)
	}
	if r.DuplicateGroups != 1 || r.DuplicateMembers != 2 {
		t.Errorf("duplicates = %d groups, %d members; want 1 and 2", r.DuplicateGroups, r.DuplicateMembers)
	}
	if math.Abs(r.Completeness-0.48) > 1e-9 {
		t.Errorf("completeness = %f, want 0.48", r.Completeness)
	}
	// 48 - 0.5 * 40
	if math.Abs(r.Score-28) > 1e-9 {
		t.Errorf("score = %f, want 28", r.Score)
	}
	if len(r.Issues) != 5 {
		t.Fatalf("issues = %d, want 5", len(r.Issues))
	}
	if diff := cmp.Diff([]string{FieldGenre, FieldYear, FieldKey, FieldAnalysis, FieldEnergy}, r.Issues[4].Missing); diff != "" {
		t.Errorf("track 5 missing (-want +got):\n%s", diff)
	}
}

func TestCompute_Bounds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{name: "empty collection", src: tu.GeneratedCollection(0), want: 0},
		{
			name: "complete track",
			src: `<DJ_PLAYLISTS><COLLECTION>
<TRACK TrackID="1" Name="A" Artist="B" Genre="House" Year="2020" Tonality="Am" Comments="#Chill Energy 5"/>
</COLLECTION></DJ_PLAYLISTS>`,
			want: 100,
		},
		{
			name: "penalty never goes below zero",
			src: `<DJ_PLAYLISTS><COLLECTION>
<TRACK TrackID="1" Name="A" Artist="B" TotalTime="100"/>
<TRACK TrackID="2" Name="A" Artist="B" TotalTime="100"/>
</COLLECTION></DJ_PLAYLISTS>`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := collection.Parse([]byte(tt.src))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			r := Compute(doc.Tracks(), dupes.Find(doc.Tracks()))
			if math.Abs(r.Score-tt.want) > 1e-9 {
				t.Errorf("score = %f, want %f", r.Score, tt.want)
			}
		})
	}
}
