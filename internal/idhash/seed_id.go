package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeSeedID computes a deterministic id for seeded catalog rows.
// Formula: SHA256(kind|index|name), first 16 bytes.
// Returns hex-encoded hash (32 characters), so re-seeding hits the same keys.
func ComputeSeedID(kind string, index int, name string) string {
	data := fmt.Sprintf("%s|%d|%s", kind, index, name)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}
