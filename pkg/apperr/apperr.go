package apperr

import (
	"fmt"
	"net/http"
)

// Error is an operational error: an expected, client-facing failure carrying
// an HTTP status and a message safe to return to the caller. Anything that is
// not an *Error is treated as an internal fault and never leaves the process
// with its detail attached.
type Error struct {
	Code    string
	Status  int
	Message string
	Err     error // optional cause, operator-facing only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches by code so sentinel comparisons survive Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches a cause to a copy of kind, preserving code/status/message.
func Wrap(kind *Error, cause error) *Error {
	return &Error{Code: kind.Code, Status: kind.Status, Message: kind.Message, Err: cause}
}

var (
	ErrDuplicateEmail        = New("duplicate_email", http.StatusConflict, "email is already registered")
	ErrPasswordMismatch      = New("password_mismatch", http.StatusBadRequest, "passwords are not the same")
	ErrInvalidCredentials    = New("invalid_credentials", http.StatusUnauthorized, "incorrect email or password")
	ErrNotAuthenticated      = New("not_authenticated", http.StatusUnauthorized, "you are not logged in, please log in to get access")
	ErrInvalidToken          = New("invalid_token", http.StatusUnauthorized, "invalid token, please log in again")
	ErrTokenExpired          = New("token_expired", http.StatusUnauthorized, "your token has expired, please log in again")
	ErrUserNoLongerExists    = New("user_gone", http.StatusUnauthorized, "the user belonging to this token no longer exists")
	ErrPasswordChangedSince  = New("password_changed", http.StatusUnauthorized, "password was changed recently, please log in again")
	ErrForbidden             = New("forbidden", http.StatusForbidden, "you do not have permission to perform this action")
	ErrUserNotFound          = New("user_not_found", http.StatusNotFound, "there is no user with that email address")
	ErrInvalidOrExpiredToken = New("invalid_or_expired_token", http.StatusBadRequest, "token is invalid or has expired")
	ErrIncorrectPassword     = New("incorrect_password", http.StatusUnauthorized, "your current password is wrong")
	ErrIllegalFieldUpdate    = New("illegal_field_update", http.StatusBadRequest, "this route is not for password or role updates")
	ErrNotificationFailed    = New("notification_failed", http.StatusBadGateway, "there was an error sending the email, try again later")
	ErrStorage               = New("storage_failure", http.StatusInternalServerError, "something went wrong")
)

// Storage wraps an adapter fault into the catch-all storage kind.
func Storage(cause error) *Error {
	return Wrap(ErrStorage, fmt.Errorf("storage: %w", cause))
}
