package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Key builds a namespaced cache key from a prefix and a free-form source
// string such as a URL. The source is hashed so keys stay filesystem and
// redis safe.
func Key(prefix, source string) string {
	return prefix + ":" + Hash([]byte(source))
}
