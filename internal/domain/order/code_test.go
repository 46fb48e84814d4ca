package order

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode_Format(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	code := NewCode(now)

	parts := strings.Split(code, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "ORD", parts[0])

	ms, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), ms)

	require.Len(t, parts[2], 4)
	for _, r := range parts[2] {
		assert.Contains(t, "0123456789abcdefghijklmnopqrstuvwxyz", string(r))
	}
}

func TestNewCode_SuffixVaries(t *testing.T) {
	now := time.Now()

	seen := make(map[string]struct{})
	for range 100 {
		seen[NewCode(now)] = struct{}{}
	}
	// 4 random base36 chars give 1.6M combinations; 100 draws colliding
	// down to a single value would mean the suffix is not random.
	assert.Greater(t, len(seen), 1)
}
