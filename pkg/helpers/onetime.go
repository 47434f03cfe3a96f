package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// one-time token entropy, before hex encoding
const oneTimeTokenBytes = 32

// OneTimeToken is the result of a generation: Raw is the only value ever
// sent to the user (mail/URL); Hash is the only value persisted.
type OneTimeToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

// GenerateOneTimeToken produces a cryptographically random single-use token
// with the given validity window.
func GenerateOneTimeToken(ttl time.Duration) (OneTimeToken, error) {
	b := make([]byte, oneTimeTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return OneTimeToken{}, err
	}
	raw := hex.EncodeToString(b)
	return OneTimeToken{
		Raw:       raw,
		Hash:      HashOneTimeToken(raw),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// HashOneTimeToken digests a raw token for storage or lookup. A fast hash is
// fine here: the raw token already carries full entropy, unlike a password.
func HashOneTimeToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// VerifyOneTimeToken recomputes the digest of a presented token and compares
// it to the stored hash in constant time, requiring the window to be open.
func VerifyOneTimeToken(raw, storedHash string, expiresAt *time.Time, now time.Time) bool {
	if storedHash == "" || expiresAt == nil || now.After(*expiresAt) {
		return false
	}
	presented := HashOneTimeToken(raw)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(storedHash)) == 1
}
