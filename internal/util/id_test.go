// Package util provides tests for identifier and secret generation.
package util

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alphanumericPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

func TestNewBlobID_Format(t *testing.T) {
	now := time.Now().UnixMilli()
	id, err := NewBlobID(now)
	require.NoError(t, err)

	assert.True(t, alphanumericPattern.MatchString(id))
	// base36 millisecond timestamps are 8-9 characters for current dates
	assert.GreaterOrEqual(t, len(id), BlobEntropyLen+8)
}

func TestNewBlobID_UniqueWithinSameMillisecond(t *testing.T) {
	now := time.Now().UnixMilli()
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id, err := NewBlobID(now)
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate blob id %q", id)
		seen[id] = true
	}
}

func TestRandomAlphanumeric_LengthAndAlphabet(t *testing.T) {
	for _, n := range []int{1, 9, 32} {
		s, err := RandomAlphanumeric(n)
		require.NoError(t, err)
		assert.Len(t, s, n)
		assert.True(t, alphanumericPattern.MatchString(s))
	}
}

func TestRandomHex_Length(t *testing.T) {
	s, err := RandomHex(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)
}

func TestNewKeySecret_PrefixAndUniqueness(t *testing.T) {
	a, err := NewKeySecret()
	require.NoError(t, err)
	b, err := NewKeySecret()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "fv_"))
	assert.Len(t, a, 3+48)
	assert.NotEqual(t, a, b)
}
