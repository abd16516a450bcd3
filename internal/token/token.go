// Package token generates and masks the shared API key.
package token //nolint:revive // intentional: does not conflict at import path level

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// KeyBytes is the number of random bytes in a generated API key.
const KeyBytes = 32

// maskVisible is the number of trailing characters Mask leaves readable.
const maskVisible = 4

// Generate creates a new random API key: KeyBytes random bytes encoded as
// lowercase hex.
func Generate() string {
	b := make([]byte, KeyBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand.Read only fails on a broken system.
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// Mask hides a key for display. Keys long enough to stay secret keep their
// last few characters so operators can tell keys apart.
func Mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) < 4*maskVisible {
		return strings.Repeat("*", 8)
	}
	return strings.Repeat("*", 8) + key[len(key)-maskVisible:]
}
