// Package loginattempts declares the append-only login audit log consumed by
// the brute-force guard.
package loginattempts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/techblog/internal/server/models"
)

// Repository defines operations over the login attempt log.
type Repository interface {
	// Append records one login evaluation. Rows are never updated.
	Append(ctx context.Context, attempt *models.LoginAttempt) error

	// CountFailedSince counts failed attempts for the username with
	// attempt_time >= since.
	CountFailedSince(ctx context.Context, username string, since time.Time) (int, error)

	// DeleteFailed removes all failed attempts for the username. Called when
	// a success is recorded so the next window calculation starts clean.
	DeleteFailed(ctx context.Context, username string) error
}
