// internal/auth/staffkey.go
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"

	"golang.org/x/crypto/argon2"

	"bookhaven/internal/httpx"
)

// StaffKeyHeader carries the shared staff key on administrative requests.
const StaffKeyHeader = "X-Staff-Key"

// HashStaffKey derives a salted Argon2id hash of the key. Used by deploy
// tooling to produce the values the service is configured with.
func HashStaffKey(key string) (hash, salt string, err error) {
	rawSalt := make([]byte, 16)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", err
	}

	rawHash := argon2.IDKey([]byte(key), rawSalt, 1, 64*1024, 4, 32)

	return base64.StdEncoding.EncodeToString(rawHash), base64.StdEncoding.EncodeToString(rawSalt), nil
}

// VerifyStaffKey compares a presented key against the configured salted hash.
func VerifyStaffKey(key, salt, hash string) (bool, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	rawHash, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	comparison := argon2.IDKey([]byte(key), rawSalt, 1, 64*1024, 4, 32)

	return subtle.ConstantTimeCompare(rawHash, comparison) == 1, nil
}

// StaffMiddleware gates administrative endpoints (catalog mutation,
// announcements, order status transitions) behind the staff key.
func StaffMiddleware(salt, hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(StaffKeyHeader)
			if key == "" {
				httpx.RespondError(w, http.StatusForbidden, "forbidden", "staff key required")
				return
			}
			ok, err := VerifyStaffKey(key, salt, hash)
			if err != nil || !ok {
				httpx.RespondError(w, http.StatusForbidden, "forbidden", "invalid staff key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
