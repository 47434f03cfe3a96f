package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
)

// ErrNotFound is returned by lookups when no active record matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository is the credential store adapter. All lookups exclude
// soft-deleted (active = false) records and leave the password hash empty
// unless the method name says otherwise.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// GetByEmailWithPassword is the explicit opt-in used by login; it is the
	// only email lookup that scans the password hash column.
	GetByEmailWithPassword(ctx context.Context, email string) (*entity.User, error)

	// Token-hash lookups require an unexpired slot for the given purpose.
	GetByVerifyTokenHash(ctx context.Context, hash string, now time.Time) (*entity.User, error)
	GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*entity.User, error)

	Update(ctx context.Context, u *entity.User) error

	// UpdateFields writes only the given allow-listed columns. Callers are
	// responsible for never passing password or role keys through here.
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*entity.User, error)

	// SetPassword stores a new hash and stamps password_changed_at, also
	// clearing any outstanding reset token slot.
	SetPassword(ctx context.Context, id, passwordHash string) error

	SetResetToken(ctx context.Context, id, hash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	SetVerifyToken(ctx context.Context, id, hash string, expiresAt time.Time) error
	ClearVerifyToken(ctx context.Context, id string) error

	// SetVerified flips is_verified and clears the verification token slot.
	SetVerified(ctx context.Context, id string) error

	Deactivate(ctx context.Context, id string) error

	// Admin surface.
	List(ctx context.Context) ([]*entity.User, error)
	Delete(ctx context.Context, id string) error
}
