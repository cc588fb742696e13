package scraper

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
// Non-2xx responses are reported as errors.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Gate reports whether a photo link has already been persisted.
type Gate interface {
	Seen(link string) bool
}

// Sink persists a freshly decoded record. Any error aborts the traversal.
type Sink interface {
	Persist(ctx context.Context, record PhotoRecord) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Hasher computes digests used as cache keys.
type Hasher interface {
	Hash(data []byte) (string, error)
}
