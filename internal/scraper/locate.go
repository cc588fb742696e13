package scraper

import (
	"regexp"
	"strings"
)

// scriptPattern matches inline script elements lazily so adjacent blocks stay separate.
var scriptPattern = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)

// LocateScripts returns the bodies of every <script> element in html, in
// document order. It returns ErrNoScriptBlocks when there are none.
func LocateScripts(html string) ([]string, error) {
	matches := scriptPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return nil, ErrNoScriptBlocks
	}
	bodies := make([]string, 0, len(matches))
	for _, m := range matches {
		bodies = append(bodies, m[1])
	}
	return bodies, nil
}

// LocateMarked returns the first script body containing marker.
func LocateMarked(scripts []string, marker string) (string, bool) {
	for _, body := range scripts {
		if strings.Contains(body, marker) {
			return body, true
		}
	}
	return "", false
}

// locateManifest finds the script holding the manifest of the given kind.
func locateManifest(html string, kind ManifestKind) (string, error) {
	scripts, err := LocateScripts(html)
	if err != nil {
		return "", err
	}
	body, ok := LocateMarked(scripts, kind.Marker())
	if !ok {
		return "", ErrNoMarkedBlock
	}
	return body, nil
}
