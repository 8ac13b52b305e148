// Package util provides identifier and secret generation for FactVault.
// Blob ids combine a millisecond timestamp with random alphanumeric entropy;
// key secrets come from crypto/rand. All randomness uses crypto/rand, which
// is cryptographically secure.
package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
)

// BlobEntropyLen is the number of random alphanumeric characters appended
// to the timestamp portion of a mock blob id. 9 characters over a 62-symbol
// alphabet (~53 bits) keeps the collision probability negligible for the id
// space in use, even for ids minted within the same millisecond.
const BlobEntropyLen = 9

// alphanumerics is the alphabet for blob id entropy.
const alphanumerics = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewBlobID creates a blob identifier for the mock backend.
// Format: base36(unix milliseconds) + BlobEntropyLen random alphanumerics.
//
// Example output: "lx3k9f2ak3Jd8Qz2p"
func NewBlobID(unixMilli int64) (string, error) {
	suffix, err := RandomAlphanumeric(BlobEntropyLen)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(unixMilli, 36) + suffix, nil
}

// RandomAlphanumeric returns n random characters from [a-zA-Z0-9].
// Uses rejection sampling so every character is uniformly distributed.
func RandomAlphanumeric(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generating random bytes: %w", err)
		}
		for _, b := range buf {
			// Reject values that would bias the modulo. 248 = 62*4.
			if b >= 248 {
				continue
			}
			out = append(out, alphanumerics[int(b)%len(alphanumerics)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// RandomBytes generates n cryptographically random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating random bytes: %w", err)
	}
	return b, nil
}

// RandomHex generates a random hexadecimal string of the specified byte
// length. The returned string is 2*n characters long.
func RandomHex(n int) (string, error) {
	b, err := RandomBytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewKeySecret creates a new API key secret value.
// Format: "fv_" + 48 hex characters (24 random bytes).
func NewKeySecret() (string, error) {
	s, err := RandomHex(24)
	if err != nil {
		return "", err
	}
	return "fv_" + s, nil
}
