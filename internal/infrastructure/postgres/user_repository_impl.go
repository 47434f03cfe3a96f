package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-auth-service/internal/domain/repository"
)

// baseColumns excludes the password hash; lookups that need it opt in via a
// dedicated method. COALESCE keeps the nullable token digests scannable as
// plain strings.
const baseColumns = `id, email, name, avatar_url, role, active, is_verified,
	password_changed_at,
	COALESCE(reset_token_hash, ''), reset_token_expires_at,
	COALESCE(verify_token_hash, ''), verify_token_expires_at,
	created_at, updated_at`

// updatableColumns is the allow-list honored by UpdateFields. Password and
// role can never be written through that path.
var updatableColumns = map[string]bool{
	"name":       true,
	"email":      true,
	"avatar_url": true,
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row, withPassword bool) (*entity.User, error) {
	u := &entity.User{}
	dest := []any{
		&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Role, &u.Active, &u.IsVerified,
		&u.PasswordChangedAt,
		&u.ResetTokenHash, &u.ResetTokenExpiresAt,
		&u.VerifyTokenHash, &u.VerifyTokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	}
	if withPassword {
		dest = append(dest, &u.Password)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role, is_verified, verify_token_hash, verify_token_expires_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		RETURNING id, active, created_at, updated_at
	`, strings.ToLower(u.Email), u.Password, u.Name, u.Role, u.IsVerified, u.VerifyTokenHash, u.VerifyTokenExpiresAt)

	if err := row.Scan(&u.ID, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+baseColumns+`
		FROM users
		WHERE id = $1 AND active
	`, id)
	return scanUser(row, false)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+baseColumns+`
		FROM users
		WHERE email = $1 AND active
	`, strings.ToLower(email))
	return scanUser(row, false)
}

func (r *UserRepository) GetByEmailWithPassword(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+baseColumns+`, password_hash
		FROM users
		WHERE email = $1 AND active
	`, strings.ToLower(email))
	return scanUser(row, true)
}

func (r *UserRepository) GetByVerifyTokenHash(ctx context.Context, hash string, now time.Time) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+baseColumns+`
		FROM users
		WHERE verify_token_hash = $1 AND verify_token_expires_at >= $2 AND active
	`, hash, now)
	return scanUser(row, false)
}

func (r *UserRepository) GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+baseColumns+`
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires_at >= $2 AND active
	`, hash, now)
	return scanUser(row, false)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, name = $2, avatar_url = $3, updated_at = $4
		WHERE id = $5 AND active
	`, strings.ToLower(u.Email), u.Name, u.AvatarURL, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) (*entity.User, error) {
	set := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for col, v := range fields {
		if !updatableColumns[col] {
			return nil, fmt.Errorf("column %q is not updatable", col)
		}
		if col == "email" {
			if s, ok := v.(string); ok {
				v = strings.ToLower(s)
			}
		}
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, time.Now())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d AND active
		RETURNING %s
	`, strings.Join(set, ", "), len(args), baseColumns), args...)

	u, err := scanUser(row, false)
	if err != nil && isUniqueViolation(err) {
		return nil, repository.ErrDuplicateEmail
	}
	return u, err
}

func (r *UserRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1,
		    password_changed_at = now(),
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    updated_at = now()
		WHERE id = $2 AND active
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, hash string, expiresAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = $1, reset_token_expires_at = $2, updated_at = now()
		WHERE id = $3 AND active
	`, hash, expiresAt, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) SetVerifyToken(ctx context.Context, id, hash string, expiresAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET verify_token_hash = $1, verify_token_expires_at = $2, updated_at = now()
		WHERE id = $3 AND active
	`, hash, expiresAt, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ClearVerifyToken(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET verify_token_hash = NULL, verify_token_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) SetVerified(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET is_verified = true,
		    verify_token_hash = NULL,
		    verify_token_expires_at = NULL,
		    updated_at = now()
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET active = false, updated_at = now()
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+baseColumns+`
		FROM users
		WHERE active
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows, false)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
