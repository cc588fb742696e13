package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/photo-album-scraper/internal/scraper"
)

// IDGenerator assigns identifiers to inserted records.
type IDGenerator interface {
	NewID() (string, error)
}

// StoredPhoto is a record together with its assigned id.
type StoredPhoto struct {
	ID     string
	Record scraper.PhotoRecord
}

// PhotoStore keeps photo records in insertion order. Links are unique, like
// the UNIQUE constraint on the Postgres table.
type PhotoStore struct {
	mu     sync.RWMutex
	ids    IDGenerator
	photos []StoredPhoto
	links  map[string]struct{}
}

// NewPhotoStore creates an empty store.
func NewPhotoStore(ids IDGenerator) *PhotoStore {
	return &PhotoStore{ids: ids, links: make(map[string]struct{})}
}

// ListLinks returns every stored link in insertion order.
func (s *PhotoStore) ListLinks(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	links := make([]string, 0, len(s.photos))
	for _, p := range s.photos {
		links = append(links, p.Record.Link)
	}
	return links, nil
}

// InsertPhoto stores the record and returns its new id.
func (s *PhotoStore) InsertPhoto(_ context.Context, record scraper.PhotoRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.links[record.Link]; dup {
		return "", fmt.Errorf("photo %s already stored", record.Link)
	}
	id, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("assign photo id: %w", err)
	}
	s.photos = append(s.photos, StoredPhoto{ID: id, Record: record})
	s.links[record.Link] = struct{}{}
	return id, nil
}

// Photos returns a snapshot of the stored records.
func (s *PhotoStore) Photos() []StoredPhoto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]StoredPhoto(nil), s.photos...)
}
