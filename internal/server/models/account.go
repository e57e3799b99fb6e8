// Package models defines the persisted entities of the blog platform.
package models

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles. Unknown values are rejected at
// the boundary instead of being stored as free-form strings.
type Role string

const (
	RoleUser   Role = "User"
	RoleAuthor Role = "Author"
	RoleAdmin  Role = "Admin"
)

// ParseRole validates a raw role string against the closed enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser, RoleAuthor, RoleAdmin:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// AuthorProfile is the one-to-one profile attached to accounts with the
// Author role. It is created atomically with its account.
type AuthorProfile struct {
	ID        string
	AccountID string
	FirstName string
	LastName  string
}

// Account holds identity and credential material. PasswordSalt doubles as
// the HMAC key for the stored PasswordHash.
//
// At most one non-expired refresh token exists per account: login and
// refresh both overwrite RefreshToken rather than appending.
type Account struct {
	ID                 string
	Username           string
	Email              string
	PasswordHash       []byte
	PasswordSalt       []byte
	Role               Role
	RefreshToken       string
	RefreshTokenExpiry time.Time
	CreatedAt          time.Time

	// Author is non-nil whenever the account was loaded through a path that
	// eagerly joins the profile (refresh token lookup). For Role == RoleAuthor
	// a nil Author after such a load means the profile row is missing.
	Author *AuthorProfile
}
