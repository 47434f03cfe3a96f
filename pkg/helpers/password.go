package helpers

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the floor for the configurable hashing cost.
const MinBcryptCost = 10

// PasswordHasher hashes and verifies passwords with bcrypt. The cost is
// process-wide configuration, read-only after startup.
type PasswordHasher struct {
	cost int

	// dummyHash is a hash of a random value generated at startup. Login
	// compares against it when no account matches the email, so the request
	// burns the same bcrypt work either way and response time does not
	// reveal whether the account exists.
	dummyHash string
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	h := &PasswordHasher{cost: cost}

	b := make([]byte, 16)
	_, _ = rand.Read(b)
	dummy, _ := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(b)), cost)
	h.dummyHash = string(dummy)
	return h
}

// Cost returns the configured bcrypt cost.
func (h *PasswordHasher) Cost() int { return h.cost }

// Hash hashes the plain text password. bcrypt embeds a fresh random salt in
// every output, so hashing the same password twice yields different hashes.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a bcrypt hash with a plain password using bcrypt's own
// constant-time comparison.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// DummyVerify performs a bcrypt comparison that always fails, at the same
// cost as a real one.
func (h *PasswordHasher) DummyVerify(plain string) {
	_ = bcrypt.CompareHashAndPassword([]byte(h.dummyHash), []byte(plain))
}
