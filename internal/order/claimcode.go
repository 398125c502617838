// internal/order/claimcode.go
package order

import (
	"crypto/rand"
	"fmt"
)

// ClaimCodeLength is the fixed length of generated claim codes.
const ClaimCodeLength = 10

// Unambiguous uppercase alphanumerics; codes are read aloud at pickup.
const claimCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateClaimCode produces an opaque redemption code. Uniqueness is
// enforced by the order store; callers retry on collision.
func GenerateClaimCode() (string, error) {
	buf := make([]byte, ClaimCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate claim code: %w", err)
	}
	for i, b := range buf {
		buf[i] = claimCodeAlphabet[int(b)%len(claimCodeAlphabet)]
	}
	return string(buf), nil
}
