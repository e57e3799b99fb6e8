// Package accounts declares the persistence contract for user accounts and
// their author profiles. The account row also stores the single active
// refresh token per account, so this repository doubles as the session store.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/techblog/internal/server/models"
)

// Repository defines account persistence operations.
type Repository interface {
	// Create inserts a new account.
	Create(ctx context.Context, account *models.Account) error

	// CreateAuthorProfile inserts the author profile paired with an account.
	// Callers run it in the same transaction as Create so the pairing is
	// all-or-nothing.
	CreateAuthorProfile(ctx context.Context, profile *models.AuthorProfile) error

	// UsernameExists / EmailExists report whether the uniqueness constraints
	// would be violated. They are advisory pre-checks: a concurrent insert can
	// still lose at commit with a unique violation.
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// FindByUsername looks an account up by exact (case-sensitive) username.
	// Returns common.ErrorNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)

	// FindByRefreshToken resolves the opaque refresh token to its account,
	// eagerly including the author profile. Returns common.ErrorNotFound when
	// no account references the token.
	FindByRefreshToken(ctx context.Context, token string) (*models.Account, error)

	// UpdateRefreshToken replaces the stored refresh token and its expiry
	// (rotation, not append).
	UpdateRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error

	// ClearRefreshToken removes the stored refresh token, revoking refresh
	// capability for the account.
	ClearRefreshToken(ctx context.Context, accountID string) error
}
