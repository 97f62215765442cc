package id

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

var re = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 mints the public identifier used for loans, payments, farmers and
// produce: 32 lowercase hex characters, 128 bits of randomness, no dashes.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// IsID32 reports whether s has the exact shape NewID32 produces.
func IsID32(s string) bool { return re.MatchString(s) }
