package fs

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hasher computes content digests used to fingerprint rendered hover content.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Digest returns the hex encoded XXHash of s.
func (h *Hasher) Digest(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}
