// internal/order/claimcode_test.go
package order

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateClaimCode(t *testing.T) {
	code, err := GenerateClaimCode()
	require.NoError(t, err)
	assert.Len(t, code, ClaimCodeLength)
	for _, r := range code {
		assert.Contains(t, claimCodeAlphabet, string(r))
	}

	// The alphabet drops characters that are misread aloud.
	assert.NotContains(t, claimCodeAlphabet, "O")
	assert.NotContains(t, claimCodeAlphabet, "I")
	assert.NotContains(t, claimCodeAlphabet, "0")
	assert.NotContains(t, claimCodeAlphabet, "1")
}

func TestGenerateClaimCodeIsRandom(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateClaimCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
		assert.False(t, strings.ContainsAny(code, "abcdefghijklmnopqrstuvwxyz"))
	}
}
