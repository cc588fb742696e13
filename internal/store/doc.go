// Package store defines interfaces for persistence dependencies (the photo
// record table and the blob bucket). Implementations live under
// internal/storage; this package must not import database drivers or
// concrete clients.
package store
