// Package sha256 derives cache keys from album URLs.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher implements scraper.Hasher using SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns the lowercase hex digest of data. The result is 64 characters
// of [0-9a-f], which is safe to use as a file name on every platform.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
