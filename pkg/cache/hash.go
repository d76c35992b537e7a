package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key builds a namespaced cache key, e.g. Key("pypi", "flask").
// The value part is hashed so arbitrary package names produce safe keys.
func Key(namespace, value string) string {
	return namespace + ":" + Hash([]byte(value))
}
