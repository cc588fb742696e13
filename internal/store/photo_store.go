package store

import (
	"context"
	"io"

	"github.com/JakeFAU/photo-album-scraper/internal/scraper"
)

// PhotoStore persists decoded photo records.
type PhotoStore interface {
	// ListLinks returns the link of every stored record.
	ListLinks(ctx context.Context) ([]string, error)
	// InsertPhoto stores a record and returns the identifier assigned to it.
	InsertPhoto(ctx context.Context, record scraper.PhotoRecord) (string, error)
}

// BlobStore uploads binary objects and returns a URI for the written object.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}
