package revocation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	return nil
}

// KeyFor hashes a bearer token so raw tokens never reach a store.
func KeyFor(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
