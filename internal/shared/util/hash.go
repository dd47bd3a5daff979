package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey returns a stable, filesystem-safe hex digest of s.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// OwnerPrefix is the storage key prefix for everything one owner exports.
// Owner ids such as "guest:abc" never appear in keys verbatim.
func OwnerPrefix(owner string) string {
	return HashKey(owner) + "/"
}
