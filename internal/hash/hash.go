// Package hash turns plaintext secrets into their stored representation.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Password returns the lowercase hex SHA-256 digest of secret. It is
// deterministic and accepts any input, including the empty string.
func Password(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
