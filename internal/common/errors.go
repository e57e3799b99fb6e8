// Package common defines shared constants and sentinel errors used across
// the TechBlog server layers. Callers should use errors.Is to match these
// values; the HTTP layer maps them to response statuses and fixed messages.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Registration errors.
	ErrDuplicateUsername       = errors.New("username already exists")
	ErrDuplicateEmail          = errors.New("user with this email already exists")
	ErrIncompleteAuthorProfile = errors.New("author profile is incomplete")

	// Login errors. A missing account and a wrong password are intentionally
	// indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTemporarilyLocked  = errors.New("too many failed attempts, try again later")
	ErrRoleMismatch       = errors.New("insufficient role")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrAuthorDataMissing   = errors.New("author data missing")

	// Revocation errors.
	ErrUnknownUser = errors.New("unknown user")
)
