// Package scraper extracts photo metadata from the manifests Google Photos
// embeds in shared-album pages.
//
// A traversal fetches the album page, locates the inline script carrying the
// album manifest, carves the array literal out of it and parses the photo
// identifiers. Each identifier becomes a photo page URL which is fetched,
// located, carved and decoded into a PhotoRecord. Album-level failures abort
// the traversal; photo-level failures skip the photo.
package scraper
