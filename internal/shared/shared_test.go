package shared

import "testing"

func TestFoldKey(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "basic normalization", in: "Song Title", want: "songtitle"},
		{name: "extra whitespace", in: "  Song   Title  ", want: "songtitle"},
		{name: "mixed case", in: "SoNg TiTlE", want: "songtitle"},
		{name: "punctuation", in: "Don't Stop (Original Mix)", want: "dontstoporiginalmix"},
		{name: "diacritics", in: "Tiësto", want: "tiesto"},
		{name: "digits kept", in: "Daft Punk - One More Time 2000", want: "daftpunkonemoretime2000"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FoldKey(tt.in); got != tt.want {
				t.Errorf("FoldKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("Bicep", "Glue")
	b := Fingerprint("BICEP ", "glue!")
	if a != b {
		t.Errorf("expected equal fingerprints, got %q and %q", a, b)
	}
	if a != "bicepglue" {
		t.Errorf("Fingerprint() = %q, want %q", a, "bicepglue")
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := MarshalJSON(map[string]int{"a": 1}, false)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("MarshalJSON() = %s", data)
	}

	pretty, err := MarshalJSON(map[string]int{"a": 1}, true)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(pretty) != "{\n  \"a\": 1\n}" {
		t.Errorf("MarshalJSON(pretty) = %s", pretty)
	}
}

func TestParseLogLevel(t *testing.T) {
	if lvl := ParseLogLevel("debug"); lvl.String() != "debug" {
		t.Errorf("expected debug, got %s", lvl)
	}
	if lvl := ParseLogLevel("nonsense"); lvl.String() != "info" {
		t.Errorf("expected info fallback, got %s", lvl)
	}
}
