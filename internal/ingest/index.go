package ingest

import "sync"

// LinkIndex is the set of links already persisted.
type LinkIndex struct {
	mu    sync.RWMutex
	links map[string]struct{}
}

// NewLinkIndex seeds an index with existing links.
func NewLinkIndex(links []string) *LinkIndex {
	idx := &LinkIndex{links: make(map[string]struct{}, len(links))}
	for _, l := range links {
		idx.links[l] = struct{}{}
	}
	return idx
}

// Seen reports whether link is already persisted.
func (i *LinkIndex) Seen(link string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.links[link]
	return ok
}

// Add records a newly persisted link.
func (i *LinkIndex) Add(link string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.links[link] = struct{}{}
}

// Len returns the number of known links.
func (i *LinkIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.links)
}
