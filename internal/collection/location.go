package collection

import (
	"net/url"
	"strings"
)

// LocationPrefix is the scheme and host rekordbox writes in front of every track path.
const LocationPrefix = "file://localhost"

// NormalizeLocation decodes a track location, strips the file scheme, re-encodes each path segment and restores
// [LocationPrefix]. Normalizing a normalized value returns it unchanged. Values that do not percent-decode or use
// another scheme are returned as they are.
func NormalizeLocation(loc string) string {
	if loc == "" {
		return loc
	}

	decoded, err := url.PathUnescape(loc)
	if err != nil {
		return loc
	}

	p := decoded
	switch {
	case strings.HasPrefix(p, LocationPrefix):
		p = p[len(LocationPrefix):]
	case strings.HasPrefix(p, "file://"):
		p = p[len("file://"):]
	case strings.Contains(p, "://"):
		return loc
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return LocationPrefix + (&url.URL{Path: p}).EscapedPath()
}
