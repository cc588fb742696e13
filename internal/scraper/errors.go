package scraper

import "errors"

var (
	// ErrNoScriptBlocks is returned when a page contains no <script> element.
	ErrNoScriptBlocks = errors.New("no script blocks found")
	// ErrNoMarkedBlock is returned when no script carries the manifest marker.
	ErrNoMarkedBlock = errors.New("no script block contains the manifest marker")
	// ErrCarveFailed is returned when the array boundaries cannot be found.
	ErrCarveFailed = errors.New("manifest array boundaries not found")
	// ErrManifestParse is returned when the carved text is not a JSON array.
	ErrManifestParse = errors.New("manifest is not a valid JSON array")
	// ErrDecodeFailed is returned when a photo manifest lacks the image URL or dimensions.
	ErrDecodeFailed = errors.New("photo manifest is missing required fields")
	// ErrMalformedAlbumURL is returned when the album URL lacks a share id or key.
	ErrMalformedAlbumURL = errors.New("album URL must contain share/<id> and key=<key>")
	// ErrUpstream wraps failures to fetch the album page itself.
	ErrUpstream = errors.New("album page unavailable")
	// ErrDestination wraps store and upload failures, which abort an ingestion run.
	ErrDestination = errors.New("destination failure")
)

// IsInputError reports whether err was caused by the caller's request rather
// than the upstream page or a destination.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMalformedAlbumURL)
}

// IsUpstreamError reports whether err came from the album page: it could not
// be fetched or its manifest could not be located or parsed.
func IsUpstreamError(err error) bool {
	for _, target := range []error{ErrUpstream, ErrNoScriptBlocks, ErrNoMarkedBlock, ErrCarveFailed, ErrManifestParse} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
