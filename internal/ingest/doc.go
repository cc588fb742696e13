// Package ingest copies new photos of a shared album into a photo store and
// a blob bucket.
//
// A run loads the links already stored, walks the album skipping those links
// before their pages are fetched, and for every new photo inserts a row,
// uploads a re-encoded image named after the row id, and optionally
// announces the stored photo. Store and upload failures end the run.
package ingest
