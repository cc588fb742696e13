package cache

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory. Expiry is enforced by Cache
// against its own clock, so go-cache never expires items on its own.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: gocache.New(gocache.NoExpiration, 0)}
}

// Load returns the entry for key.
func (s *MemoryStore) Load(_ context.Context, key string) (Entry, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return Entry{}, ErrNotFound
	}
	entry, ok := v.(Entry)
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Save stores entry under key.
func (s *MemoryStore) Save(_ context.Context, key string, entry Entry) error {
	s.items.Set(key, entry, gocache.NoExpiration)
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}
