package models

import (
	"errors"
	"testing"
)

func TestAnalysisGenre(t *testing.T) {
	tests := []struct {
		name string
		a    Analysis
		want string
	}{
		{"main genre wins", Analysis{MainGenre: "House", SubGenre: "Deep House"}, "House"},
		{"falls back to sub-genre", Analysis{MainGenre: Unknown, SubGenre: "Deep House"}, "Deep House"},
		{"nothing known", UnknownAnalysis(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Genre(); got != tt.want {
				t.Errorf("Genre() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModeResolves(t *testing.T) {
	yearOnly := UnknownAnalysis()
	yearOnly.Year = 1999
	genreOnly := UnknownAnalysis()
	genreOnly.SubGenre = "Tech House"

	tests := []struct {
		mode Mode
		a    Analysis
		want bool
	}{
		{ModeFull, UnknownAnalysis(), false},
		{ModeFull, yearOnly, true},
		{ModeMissingGenre, yearOnly, false},
		{ModeMissingGenre, genreOnly, true},
		{ModeMissingYear, genreOnly, false},
		{ModeMissingYear, yearOnly, true},
	}

	for _, tt := range tests {
		if got := tt.mode.Resolves(tt.a); got != tt.want {
			t.Errorf("%s.Resolves(%+v) = %v, want %v", tt.mode, tt.a, got, tt.want)
		}
	}
}

func TestModeCovers(t *testing.T) {
	yearOnly := UnknownAnalysis()
	yearOnly.Year = 2001
	genreOnly := UnknownAnalysis()
	genreOnly.MainGenre = "House"
	tagged := UnknownAnalysis()
	tagged.Situation = "Warm Up"

	tests := []struct {
		mode Mode
		a    Analysis
		want bool
	}{
		{ModeFull, yearOnly, false},
		{ModeFull, genreOnly, false},
		{ModeFull, tagged, true},
		{ModeMissingGenre, genreOnly, true},
		{ModeMissingYear, yearOnly, true},
		{ModeMissingYear, tagged, false},
	}

	for _, tt := range tests {
		if got := tt.mode.Covers(tt.a); got != tt.want {
			t.Errorf("%s.Covers(%+v) = %v, want %v", tt.mode, tt.a, got, tt.want)
		}
	}
}

func TestAnalysisMerge(t *testing.T) {
	full := Analysis{Mood: "Groovy", SubGenre: "Tech House", MainGenre: "House", Situation: "Peak Time", Year: 2016, TagString: "#Groovy #TechHouse #PeakTime"}
	yearOnly := UnknownAnalysis()
	yearOnly.Year = 2001

	t.Run("Keeps Known Fields", func(t *testing.T) {
		want := full
		want.Year = 2001
		if got := full.Merge(yearOnly); got != want {
			t.Errorf("Merge() = %+v, want %+v", got, want)
		}
	})

	t.Run("Newer Known Values Win", func(t *testing.T) {
		newer := UnknownAnalysis()
		newer.Mood = "Chill"
		got := full.Merge(newer)
		if got.Mood != "Chill" || got.SubGenre != "Tech House" || got.Year != 2016 {
			t.Errorf("Merge() = %+v", got)
		}
	})

	t.Run("Into Empty", func(t *testing.T) {
		if got := (Analysis{}).Merge(yearOnly); got != yearOnly {
			t.Errorf("Merge() = %+v, want %+v", got, yearOnly)
		}
	})
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"full": ModeFull, "": ModeFull, "genre": ModeMissingGenre, "Missing-Year": ModeMissingYear} {
		got, err := ParseMode(in)
		if err != nil {
			t.Fatalf("ParseMode(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("ParseMode(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseMode("bogus"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSelection(t *testing.T) {
	s := NewSelection(0, "  Opening set ", []string{"1", "2", "", "1", "3"})
	if s.Name() != "Opening set" {
		t.Errorf("Name() = %q", s.Name())
	}

	ids := s.TrackIDs()
	if len(ids) != 3 || ids[0] != "1" || ids[1] != "2" || ids[2] != "3" {
		t.Errorf("TrackIDs() = %v", ids)
	}

	ids[0] = "mutated"
	if s.TrackIDs()[0] != "1" {
		t.Error("TrackIDs() must return a copy")
	}

	if err := s.Validate(); err == nil {
		t.Error("expected validation error without id")
	}
	s.SetID("abc")
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestTagJobFinish(t *testing.T) {
	j := NewTagJob(1, "collection.xml", ModeMissingYear)
	j.SetID("job")
	if j.Status() != JobStatusRunning {
		t.Fatalf("Status() = %s, want running", j.Status())
	}

	j.Finish(JobStatusFailed, errors.New("boom"))
	if j.CompletedAt() == nil {
		t.Fatal("CompletedAt() should be set")
	}
	if j.ErrorMessage() != "boom" {
		t.Errorf("ErrorMessage() = %q", j.ErrorMessage())
	}
	if j.Duration() < 0 {
		t.Error("Duration() should not be negative")
	}
	if err := j.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestModeText(t *testing.T) {
	for _, m := range []Mode{ModeFull, ModeMissingGenre, ModeMissingYear} {
		b, err := m.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error = %v", err)
		}
		var got Mode
		if err := got.UnmarshalText(b); err != nil || got != m {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", b, got, err, m)
		}
	}

	var m Mode
	if err := m.UnmarshalText([]byte("loudness")); err == nil {
		t.Error("expected error for unknown mode")
	}
}
