package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash and must never be serialized into API
// responses; repository lookups leave it empty unless the caller explicitly
// opts in (login, token consumption).
type User struct {
	ID         string
	Email      string
	Password   string
	Name       string
	AvatarURL  string
	Role       Role
	Active     bool
	IsVerified bool

	// Set only on a real password change, never on record creation.
	PasswordChangedAt *time.Time

	// One-time token slots. Only SHA-256 digests are stored; at most one
	// unexpired token per purpose exists, a new generation overwrites the
	// previous one.
	ResetTokenHash       string
	ResetTokenExpiresAt  *time.Time
	VerifyTokenHash      string
	VerifyTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PasswordChangedAfter reports whether the stored password was changed after
// the given token issue time. Both sides are compared at whole-second
// precision so a sub-second store timestamp cannot spuriously reject a token
// minted in the same instant.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}
