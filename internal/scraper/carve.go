package scraper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ManifestKind distinguishes the album-level manifest from the photo-level one.
type ManifestKind int

const (
	// AlbumManifest lists the photos of a shared album.
	AlbumManifest ManifestKind = iota
	// PhotoManifest describes a single photo.
	PhotoManifest
)

const (
	albumMarker = "data:[null,[["
	photoMarker = "data:[["
	arrayStart  = "[["
)

// closer is a closing fingerprint and how many of its bytes belong to the array.
type closer struct {
	token string
	keep  int
}

// albumClosers are tried in order. Entries carrying an attribute map end in
// "]]}]]"; a list of bare entries closes straight into the enclosing data
// array, whose own bracket is not kept.
//
// The "]]]" fallback is the first such run, not a balanced match. When there
// is no "]]}]]" and an entry holds a nested array ending in "]]]", the carve
// stops inside that entry and Parse rejects the album.
var albumClosers = []closer{
	{token: "]]}]]", keep: 5},
	{token: "]]]", keep: 2},
}

func (k ManifestKind) String() string {
	if k == AlbumManifest {
		return "album"
	}
	return "photo"
}

// Marker returns the literal that identifies the script holding this manifest.
func (k ManifestKind) Marker() string {
	if k == AlbumManifest {
		return albumMarker
	}
	return photoMarker
}

// Carve extracts the array literal of the given manifest kind from a script
// body. The start is always the first "[["; the end is the first album
// fingerprint after it, or the last "]" of the body for photo manifests.
// Carve never validates the result; Parse does.
func Carve(body string, kind ManifestKind) (string, error) {
	start := strings.Index(body, arrayStart)
	if start < 0 {
		return "", fmt.Errorf("%s manifest: start %q: %w", kind, arrayStart, ErrCarveFailed)
	}
	if kind == PhotoManifest {
		end := strings.LastIndex(body, "]")
		if end < start+len(arrayStart)-1 {
			return "", fmt.Errorf("%s manifest: closing bracket: %w", kind, ErrCarveFailed)
		}
		return body[start : end+1], nil
	}
	rest := body[start:]
	for _, c := range albumClosers {
		if idx := strings.Index(rest, c.token); idx >= 0 {
			return rest[:idx+c.keep], nil
		}
	}
	return "", fmt.Errorf("%s manifest: closing fingerprint: %w", kind, ErrCarveFailed)
}

// Parse decodes carved text into a nested array. Numbers are kept as
// json.Number so timestamps and integers survive exactly.
func Parse(text string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var out []any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after array", ErrManifestParse)
	}
	return out, nil
}

// extractManifest runs locate, carve and parse for one page.
func extractManifest(html string, kind ManifestKind) ([]any, error) {
	body, err := locateManifest(html, kind)
	if err != nil {
		return nil, err
	}
	text, err := Carve(body, kind)
	if err != nil {
		return nil, err
	}
	return Parse(text)
}
