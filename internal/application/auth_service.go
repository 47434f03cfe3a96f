package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-auth-service/pkg/apperr"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// Signup registers a new account, issues a session token immediately
// (verification gates nothing by itself) and enqueues the verification
// email. A notification failure does not roll the user record back but is
// surfaced distinctly from a storage failure: the returned user and token
// are valid even when err is ErrNotificationFailed.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.User, string, error) {
	// checked before hashing, so nothing is ever written for a bad confirm
	if in.Password != in.PasswordConfirm {
		return nil, "", apperr.ErrPasswordMismatch
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, "", apperr.Storage(err)
	}

	verify, err := helpers.GenerateOneTimeToken(s.Cfg.VerifyTokenTTL)
	if err != nil {
		return nil, "", apperr.Storage(err)
	}

	u := &entity.User{
		Email:                strings.ToLower(in.Email),
		Name:                 in.Name,
		Password:             hash,
		Role:                 entity.RoleUser,
		IsVerified:           false,
		VerifyTokenHash:      verify.Hash,
		VerifyTokenExpiresAt: &verify.ExpiresAt,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, "", apperr.ErrDuplicateEmail
		}
		return nil, "", apperr.Storage(err)
	}
	u.Password = ""

	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", apperr.Storage(err)
	}

	s.indexUser(ctx, u)

	if err := s.Notifier.SendVerification(ctx, u.Email, u.Name, verify.Raw); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("verification email failed")
		return u, token, apperr.Wrap(apperr.ErrNotificationFailed, err)
	}
	return u, token, nil
}

// Login authenticates by email and password and issues a session token.
// Unknown email and wrong password collapse into the same error kind, and
// the unknown-email path still burns a bcrypt comparison so response timing
// does not reveal whether the account exists.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Repo.GetByEmailWithPassword(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Hasher.DummyVerify(password)
			return nil, "", apperr.ErrInvalidCredentials
		}
		return nil, "", apperr.Storage(err)
	}

	if !s.Hasher.Verify(password, u.Password) {
		return nil, "", apperr.ErrInvalidCredentials
	}
	u.Password = ""

	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", apperr.Storage(err)
	}
	return u, token, nil
}

// ResolveToken is the protect gate: it verifies the session token, loads the
// subject and rejects tokens minted before the last password change.
func (s *Service) ResolveToken(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		if errors.Is(err, helpers.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired
		}
		return nil, apperr.ErrInvalidToken
	}

	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.ErrUserNoLongerExists
		}
		return nil, apperr.Storage(err)
	}

	if u.PasswordChangedAfter(claims.IssuedAtTime()) {
		return nil, apperr.ErrPasswordChangedSince
	}
	return u, nil
}

// VerifyEmail consumes a verification token: the account becomes verified,
// the token slot is cleared (single use) and a welcome email is attempted
// best-effort.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) (*entity.User, error) {
	u, err := s.Repo.GetByVerifyTokenHash(ctx, helpers.HashOneTimeToken(rawToken), time.Now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.ErrInvalidOrExpiredToken
		}
		return nil, apperr.Storage(err)
	}
	if !helpers.VerifyOneTimeToken(rawToken, u.VerifyTokenHash, u.VerifyTokenExpiresAt, time.Now()) {
		return nil, apperr.ErrInvalidOrExpiredToken
	}

	if err := s.Repo.SetVerified(ctx, u.ID); err != nil {
		return nil, apperr.Storage(err)
	}
	u.IsVerified = true
	u.VerifyTokenHash = ""
	u.VerifyTokenExpiresAt = nil

	if err := s.Notifier.SendWelcome(ctx, u.Email, u.Name); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email failed")
	}
	return u, nil
}

// ResendVerification regenerates the verification token for an
// authenticated, still-unverified account; the overwrite invalidates any
// earlier token. Returns true when the account is already verified.
func (s *Service) ResendVerification(ctx context.Context, u *entity.User) (bool, error) {
	if u.IsVerified {
		return true, nil
	}

	verify, err := helpers.GenerateOneTimeToken(s.Cfg.VerifyTokenTTL)
	if err != nil {
		return false, apperr.Storage(err)
	}
	if err := s.Repo.SetVerifyToken(ctx, u.ID, verify.Hash, verify.ExpiresAt); err != nil {
		return false, apperr.Storage(err)
	}

	if err := s.Notifier.SendVerification(ctx, u.Email, u.Name, verify.Raw); err != nil {
		// never-delivered token must not stay valid
		if cerr := s.Repo.ClearVerifyToken(ctx, u.ID); cerr != nil {
			s.Logger.WithError(cerr).WithField("user_id", u.ID).Error("verify token rollback failed")
		}
		return false, apperr.Wrap(apperr.ErrNotificationFailed, err)
	}
	return false, nil
}

// ForgotPassword stores a reset token digest and mails the raw token as a
// URL. If the mail cannot be enqueued the just-written slot is rolled back
// so no undelivered token stays valid.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.ErrUserNotFound
		}
		return apperr.Storage(err)
	}

	reset, err := helpers.GenerateOneTimeToken(s.Cfg.ResetTokenTTL)
	if err != nil {
		return apperr.Storage(err)
	}
	if err := s.Repo.SetResetToken(ctx, u.ID, reset.Hash, reset.ExpiresAt); err != nil {
		return apperr.Storage(err)
	}

	resetURL := s.Cfg.ResetPasswordURL + "?token=" + reset.Raw
	if err := s.Notifier.SendPasswordReset(ctx, u.Email, u.Name, resetURL); err != nil {
		if cerr := s.Repo.ClearResetToken(ctx, u.ID); cerr != nil {
			s.Logger.WithError(cerr).WithField("user_id", u.ID).Error("reset token rollback failed")
		}
		return apperr.Wrap(apperr.ErrNotificationFailed, err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password. SetPassword
// stamps password_changed_at and clears the reset slot, so outstanding
// session tokens die and the reset token cannot be replayed. A fresh session
// token is issued.
func (s *Service) ResetPassword(ctx context.Context, rawToken, password, passwordConfirm string) (*entity.User, string, error) {
	if password != passwordConfirm {
		return nil, "", apperr.ErrPasswordMismatch
	}

	u, err := s.Repo.GetByResetTokenHash(ctx, helpers.HashOneTimeToken(rawToken), time.Now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", apperr.ErrInvalidOrExpiredToken
		}
		return nil, "", apperr.Storage(err)
	}
	if !helpers.VerifyOneTimeToken(rawToken, u.ResetTokenHash, u.ResetTokenExpiresAt, time.Now()) {
		return nil, "", apperr.ErrInvalidOrExpiredToken
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, "", apperr.Storage(err)
	}
	if err := s.Repo.SetPassword(ctx, u.ID, hash); err != nil {
		return nil, "", apperr.Storage(err)
	}
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil

	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", apperr.Storage(err)
	}
	return u, token, nil
}

// UpdatePassword changes the password of an authenticated user after
// re-verifying the current one, then issues a fresh session token (the old
// ones fail the password-changed-since check from now on).
func (s *Service) UpdatePassword(ctx context.Context, u *entity.User, current, password, passwordConfirm string) (string, error) {
	if password != passwordConfirm {
		return "", apperr.ErrPasswordMismatch
	}

	// the context user carries no hash; fetch it explicitly
	withPwd, err := s.Repo.GetByEmailWithPassword(ctx, u.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", apperr.ErrUserNoLongerExists
		}
		return "", apperr.Storage(err)
	}
	if !s.Hasher.Verify(current, withPwd.Password) {
		return "", apperr.ErrIncorrectPassword
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return "", apperr.Storage(err)
	}
	if err := s.Repo.SetPassword(ctx, u.ID, hash); err != nil {
		return "", apperr.Storage(err)
	}

	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return "", apperr.Storage(err)
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("password updated")
	return token, nil
}
