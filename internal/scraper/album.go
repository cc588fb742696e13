package scraper

import (
	"fmt"
	"regexp"
)

const photoURLFormat = "https://photos.google.com/share/%s/photo/%s?key=%s"

var (
	shareIDPattern  = regexp.MustCompile(`share/([^/?]+)`)
	shareKeyPattern = regexp.MustCompile(`key=([^&]+)`)
)

// ParseAlbumURL extracts the share id and access key from an album URL.
func ParseAlbumURL(albumURL string) (AlbumRef, error) {
	id := shareIDPattern.FindStringSubmatch(albumURL)
	key := shareKeyPattern.FindStringSubmatch(albumURL)
	if id == nil || key == nil {
		return AlbumRef{}, fmt.Errorf("%q: %w", albumURL, ErrMalformedAlbumURL)
	}
	return AlbumRef{ID: id[1], Key: key[1]}, nil
}

// RedactKey masks the access key of an album or photo URL so it can be
// logged or attached to spans.
func RedactKey(rawURL string) string {
	return shareKeyPattern.ReplaceAllString(rawURL, "key=REDACTED")
}

// PhotoURL builds the page URL of one photo in the album.
func (a AlbumRef) PhotoURL(entryID string) string {
	return fmt.Sprintf(photoURLFormat, a.ID, entryID, a.Key)
}

// PhotoURLs derives photo page URLs for every entry, preserving order.
func (a AlbumRef) PhotoURLs(entryIDs []string) []string {
	urls := make([]string, 0, len(entryIDs))
	for _, id := range entryIDs {
		urls = append(urls, a.PhotoURL(id))
	}
	return urls
}
