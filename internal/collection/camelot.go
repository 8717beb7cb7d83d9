package collection

import (
	"regexp"
	"strings"
)

var camelotPattern = regexp.MustCompile(`^(1[0-2]|0?[1-9])([ABab])$`)

// Wheel positions by pitch spelling: minor keys sit on the A ring, major keys on the B ring.
var (
	minorWheel = map[string]string{
		"Ab": "1", "G#": "1", "Eb": "2", "D#": "2", "Bb": "3", "A#": "3", "F": "4", "C": "5", "G": "6",
		"D": "7", "A": "8", "E": "9", "B": "10", "F#": "11", "Gb": "11", "Db": "12", "C#": "12",
	}
	majorWheel = map[string]string{
		"B": "1", "Cb": "1", "F#": "2", "Gb": "2", "Db": "3", "C#": "3", "Ab": "4", "G#": "4", "Eb": "5",
		"D#": "5", "Bb": "6", "A#": "6", "F": "7", "C": "8", "G": "9", "D": "10", "A": "11", "E": "12",
	}
)

// Camelot converts a tonality to Camelot notation. Camelot input is canonicalised ("08a" becomes "8A"); musical
// notation such as "Am", "F#m", "Db" or "A minor" is mapped through the wheel. Anything else returns "".
func Camelot(tonality string) string {
	s := strings.TrimSpace(tonality)
	if s == "" {
		return ""
	}

	if m := camelotPattern.FindStringSubmatch(s); m != nil {
		return strings.TrimPrefix(m[1], "0") + strings.ToUpper(m[2])
	}

	s = strings.NewReplacer("♯", "#", "♭", "b", " ", "").Replace(s)
	if s == "" || !strings.ContainsRune("ABCDEFG", rune(s[0]&^0x20)) {
		return ""
	}

	pitch := string(s[0] &^ 0x20)
	rest := s[1:]
	if rest != "" && (rest[0] == '#' || rest[0] == 'b') {
		pitch += rest[:1]
		rest = rest[1:]
	}

	switch strings.ToLower(rest) {
	case "m", "min", "minor":
		if n, ok := minorWheel[pitch]; ok {
			return n + "A"
		}
	case "", "maj", "major":
		if n, ok := majorWheel[pitch]; ok {
			return n + "B"
		}
	}
	return ""
}
