// Package storage groups the blob store backends that receive re-encoded
// photos during ingestion. Every backend exposes
//
//	PutObject(ctx, path, contentType, r) (uri, error)
//
// and returns a URI identifying the written object.
package storage
