// Package types - Content hashing
package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash was never computed
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Hex()
}

// MarshalText renders the full hex digest
func (h ContentHash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}
