package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-auth-service/pkg/apperr"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

func signup(t *testing.T, svc *Service, email string) (*entity.User, string) {
	t.Helper()
	u, token, err := svc.Signup(context.Background(), SignupInput{
		Name:            "Test User",
		Email:           email,
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	require.NoError(t, err)
	return u, token
}

func TestSignup(t *testing.T) {
	svc, fr, fn := newTestService()
	ctx := context.Background()

	u, token, err := svc.Signup(ctx, SignupInput{
		Name:            "Alice",
		Email:           "Alice@Example.COM",
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", u.Email, "email stored lowercased")
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.False(t, u.IsVerified)
	assert.Empty(t, u.Password, "returned user never carries the hash")
	assert.NotEmpty(t, token)

	stored := fr.raw(u.ID)
	assert.NotEqual(t, "password123", stored.Password)
	assert.Nil(t, stored.PasswordChangedAt, "creation is not a password change")

	// verification email carries the raw token; only its digest is stored
	require.Len(t, fn.verifications, 1)
	sent := fn.lastVerification()
	assert.Equal(t, "alice@example.com", sent.Email)
	assert.NotEqual(t, sent.Token, stored.VerifyTokenHash)
	assert.Equal(t, helpers.HashOneTimeToken(sent.Token), stored.VerifyTokenHash)

	// the issued token already authenticates
	resolved, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, resolved.ID)
}

func TestSignupPasswordMismatch(t *testing.T) {
	svc, fr, _ := newTestService()

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "password123",
		PasswordConfirm: "different456",
	})
	assert.ErrorIs(t, err, apperr.ErrPasswordMismatch)
	assert.Empty(t, fr.users, "nothing written on mismatch")
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	signup(t, svc, "alice@example.com")

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Name:            "Other",
		Email:           "alice@example.com",
		Password:        "password456",
		PasswordConfirm: "password456",
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
}

func TestSignupNotificationFailure(t *testing.T) {
	svc, fr, fn := newTestService()
	fn.failNext = true

	u, token, err := svc.Signup(context.Background(), SignupInput{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	assert.ErrorIs(t, err, apperr.ErrNotificationFailed)
	// the account and the session survive the failed email
	require.NotNil(t, u)
	assert.NotEmpty(t, token)
	assert.NotNil(t, fr.raw(u.ID))
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	created, _ := signup(t, svc, "alice@example.com")
	ctx := context.Background()

	u, token, err := svc.Login(ctx, "ALICE@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.Empty(t, u.Password)
	assert.NotEmpty(t, token)

	resolved, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)
}

func TestLoginFailureIsUniform(t *testing.T) {
	svc, _, _ := newTestService()
	signup(t, svc, "alice@example.com")
	ctx := context.Background()

	_, _, wrongPwd := svc.Login(ctx, "alice@example.com", "wrong")
	_, _, noUser := svc.Login(ctx, "nobody@example.com", "whatever")

	assert.ErrorIs(t, wrongPwd, apperr.ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, apperr.ErrInvalidCredentials)
	assert.Equal(t, wrongPwd.Error(), noUser.Error(), "both paths return the same kind")
}

func TestResolveToken(t *testing.T) {
	svc, fr, _ := newTestService()
	u, token := signup(t, svc, "alice@example.com")
	ctx := context.Background()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ResolveToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, apperr.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		stale := helpers.NewJWTManager(svc.Cfg.JWTSecret, -time.Minute)
		tok, _, err := stale.Generate(u.ID)
		require.NoError(t, err)
		_, rerr := svc.ResolveToken(ctx, tok)
		assert.ErrorIs(t, rerr, apperr.ErrTokenExpired)
	})

	t.Run("deleted subject", func(t *testing.T) {
		require.NoError(t, fr.Deactivate(ctx, u.ID))
		_, err := svc.ResolveToken(ctx, token)
		assert.ErrorIs(t, err, apperr.ErrUserNoLongerExists)
		fr.raw(u.ID).Active = true
	})

	t.Run("password changed after issuance", func(t *testing.T) {
		changed := time.Now().Add(2 * time.Second)
		fr.raw(u.ID).PasswordChangedAt = &changed
		_, err := svc.ResolveToken(ctx, token)
		assert.ErrorIs(t, err, apperr.ErrPasswordChangedSince)
		fr.raw(u.ID).PasswordChangedAt = nil
	})
}

func TestVerifyEmail(t *testing.T) {
	svc, fr, fn := newTestService()
	u, _ := signup(t, svc, "alice@example.com")
	ctx := context.Background()
	raw := fn.lastVerification().Token

	verified, err := svc.VerifyEmail(ctx, raw)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	stored := fr.raw(u.ID)
	assert.True(t, stored.IsVerified)
	assert.Empty(t, stored.VerifyTokenHash, "token slot cleared")
	assert.Len(t, fn.welcomes, 1)

	// single use: the same token must not verify twice
	_, err = svc.VerifyEmail(ctx, raw)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)
}

func TestVerifyEmailBadToken(t *testing.T) {
	svc, _, _ := newTestService()
	signup(t, svc, "alice@example.com")

	_, err := svc.VerifyEmail(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	svc, fr, fn := newTestService()
	u, _ := signup(t, svc, "alice@example.com")
	raw := fn.lastVerification().Token

	past := time.Now().Add(-time.Minute)
	fr.raw(u.ID).VerifyTokenExpiresAt = &past

	_, err := svc.VerifyEmail(context.Background(), raw)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)
	assert.False(t, fr.raw(u.ID).IsVerified)
}

func TestVerifyEmailWelcomeFailureIsBestEffort(t *testing.T) {
	svc, _, fn := newTestService()
	signup(t, svc, "alice@example.com")
	raw := fn.lastVerification().Token

	fn.failNext = true
	verified, err := svc.VerifyEmail(context.Background(), raw)
	require.NoError(t, err, "a lost welcome email does not fail verification")
	assert.True(t, verified.IsVerified)
}

func TestResendVerification(t *testing.T) {
	svc, _, fn := newTestService()
	u, _ := signup(t, svc, "alice@example.com")
	ctx := context.Background()
	firstRaw := fn.lastVerification().Token

	already, err := svc.ResendVerification(ctx, u)
	require.NoError(t, err)
	assert.False(t, already)
	require.Len(t, fn.verifications, 2)

	// the resend overwrites the slot, killing the first token
	secondRaw := fn.lastVerification().Token
	assert.NotEqual(t, firstRaw, secondRaw)
	_, err = svc.VerifyEmail(ctx, firstRaw)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)

	verified, err := svc.VerifyEmail(ctx, secondRaw)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	already, err = svc.ResendVerification(ctx, verified)
	require.NoError(t, err)
	assert.True(t, already, "verified accounts short-circuit")
	assert.Len(t, fn.verifications, 2, "no extra email for a verified account")
}

func TestResendVerificationRollsBackOnSendFailure(t *testing.T) {
	svc, fr, fn := newTestService()
	u, _ := signup(t, svc, "alice@example.com")

	fn.failNext = true
	_, err := svc.ResendVerification(context.Background(), u)
	assert.ErrorIs(t, err, apperr.ErrNotificationFailed)
	assert.Empty(t, fr.raw(u.ID).VerifyTokenHash, "undelivered token must not stay valid")
}

func TestForgotPassword(t *testing.T) {
	svc, fr, fn := newTestService()
	u, _ := signup(t, svc, "alice@example.com")
	ctx := context.Background()

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))

	require.Len(t, fn.resets, 1)
	sent := fn.lastReset()
	raw := strings.TrimPrefix(sent.URL, svc.Cfg.ResetPasswordURL+"?token=")
	assert.NotEmpty(t, raw)

	stored := fr.raw(u.ID)
	assert.Equal(t, helpers.HashOneTimeToken(raw), stored.ResetTokenHash)
	require.NotNil(t, stored.ResetTokenExpiresAt)
	assert.WithinDuration(t, time.Now().Add(svc.Cfg.ResetTokenTTL), *stored.ResetTokenExpiresAt, 5*time.Second)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestForgotPasswordRollsBackOnSendFailure(t *testing.T) {
	svc, fr, fn := newTestService()
	u, _ := signup(t, svc, "alice@example.com")

	fn.failNext = true
	err := svc.ForgotPassword(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotificationFailed)
	assert.Empty(t, fr.raw(u.ID).ResetTokenHash)
}

func resetToken(t *testing.T, svc *Service, fn *fakeNotifier, email string) string {
	t.Helper()
	require.NoError(t, svc.ForgotPassword(context.Background(), email))
	return strings.TrimPrefix(fn.lastReset().URL, svc.Cfg.ResetPasswordURL+"?token=")
}

func TestResetPassword(t *testing.T) {
	svc, fr, fn := newTestService()
	u, _ := signup(t, svc, "alice@example.com")
	ctx := context.Background()
	raw := resetToken(t, svc, fn, "alice@example.com")

	reset, token, err := svc.ResetPassword(ctx, raw, "newpassword456", "newpassword456")
	require.NoError(t, err)
	assert.Equal(t, u.ID, reset.ID)
	assert.NotEmpty(t, token)

	stored := fr.raw(u.ID)
	assert.Empty(t, stored.ResetTokenHash, "slot cleared on use")
	assert.NotNil(t, stored.PasswordChangedAt)

	// old credentials are gone, new ones work
	_, _, err = svc.Login(ctx, "alice@example.com", "password123")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "alice@example.com", "newpassword456")
	assert.NoError(t, err)

	// replay with the consumed token fails
	_, _, err = svc.ResetPassword(ctx, raw, "thirdpassword789", "thirdpassword789")
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)
}

func TestResetPasswordMismatch(t *testing.T) {
	svc, fr, fn := newTestService()
	u, _ := signup(t, svc, "alice@example.com")
	raw := resetToken(t, svc, fn, "alice@example.com")

	_, _, err := svc.ResetPassword(context.Background(), raw, "newpassword456", "different")
	assert.ErrorIs(t, err, apperr.ErrPasswordMismatch)
	assert.NotEmpty(t, fr.raw(u.ID).ResetTokenHash, "token not consumed on mismatch")
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, fr, fn := newTestService()
	u, _ := signup(t, svc, "alice@example.com")
	raw := resetToken(t, svc, fn, "alice@example.com")

	past := time.Now().Add(-time.Minute)
	fr.raw(u.ID).ResetTokenExpiresAt = &past

	_, _, err := svc.ResetPassword(context.Background(), raw, "newpassword456", "newpassword456")
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)
}

func TestUpdatePassword(t *testing.T) {
	svc, fr, _ := newTestService()
	u, _ := signup(t, svc, "alice@example.com")
	ctx := context.Background()

	token, err := svc.UpdatePassword(ctx, u, "password123", "newpassword456", "newpassword456")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotNil(t, fr.raw(u.ID).PasswordChangedAt)

	_, _, err = svc.Login(ctx, "alice@example.com", "newpassword456")
	assert.NoError(t, err)

	// the fresh token still authenticates
	_, err = svc.ResolveToken(ctx, token)
	assert.NoError(t, err)
}

func TestUpdatePasswordWrongCurrent(t *testing.T) {
	svc, fr, _ := newTestService()
	u, _ := signup(t, svc, "alice@example.com")

	_, err := svc.UpdatePassword(context.Background(), u, "wrong", "newpassword456", "newpassword456")
	assert.ErrorIs(t, err, apperr.ErrIncorrectPassword)
	assert.Nil(t, fr.raw(u.ID).PasswordChangedAt)
}

func TestUpdatePasswordMismatch(t *testing.T) {
	svc, _, _ := newTestService()
	u, _ := signup(t, svc, "alice@example.com")

	_, err := svc.UpdatePassword(context.Background(), u, "password123", "newpassword456", "other")
	assert.ErrorIs(t, err, apperr.ErrPasswordMismatch)
}
