package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/techblog/internal/dbx"
	"github.com/dmitrijs2005/techblog/internal/ids"
	"github.com/dmitrijs2005/techblog/internal/server/config"
	"github.com/dmitrijs2005/techblog/internal/server/models"
	"github.com/dmitrijs2005/techblog/internal/server/repositories/repomanager"
)

// BruteForceGuard decides, from the login attempt log, whether a username is
// temporarily locked out and how long to stall before revealing any login
// outcome. State lives entirely in the database: the lockout expires by
// itself once the oldest failure ages out of the sliding window.
type BruteForceGuard struct {
	db             dbx.DBTX
	repomanager    repomanager.RepositoryManager
	maxAttempts    int
	window         time.Duration
	delayIncrement time.Duration
	now            func() time.Time
}

// NewBruteForceGuard constructs a guard using the lockout settings in cfg.
func NewBruteForceGuard(db dbx.DBTX, m repomanager.RepositoryManager, cfg *config.Config) *BruteForceGuard {
	return &BruteForceGuard{
		db:             db,
		repomanager:    m,
		maxAttempts:    cfg.LockoutMaxAttempts,
		window:         cfg.LockoutWindow,
		delayIncrement: cfg.FailureDelayIncrement,
		now:            time.Now,
	}
}

// DelayFor returns the progressive delay for the username: one increment per
// failed attempt inside the window. Callers must await this delay before
// returning any outcome so failure, lockout, and success paths take
// similar time regardless of account state.
func (g *BruteForceGuard) DelayFor(ctx context.Context, username string) (time.Duration, error) {
	failed, err := g.failedInWindow(ctx, username)
	if err != nil {
		return 0, err
	}
	return time.Duration(failed) * g.delayIncrement, nil
}

// IsLockedOut reports whether the failed-attempt count inside the window has
// reached the threshold. There is no explicit unlock: the verdict flips back
// once old failures leave the window.
func (g *BruteForceGuard) IsLockedOut(ctx context.Context, username string) (bool, error) {
	failed, err := g.failedInWindow(ctx, username)
	if err != nil {
		return false, err
	}
	return failed >= g.maxAttempts, nil
}

// RecordAttempt appends one attempt to the log. A success additionally prunes
// all prior failed rows for the username, so the next window starts clean.
// The success row itself is kept.
func (g *BruteForceGuard) RecordAttempt(ctx context.Context, username string, successful bool, sourceIP string) error {
	repo := g.repomanager.LoginAttempts(g.db)

	attempt := &models.LoginAttempt{
		ID:          ids.New(),
		Username:    username,
		IPAddress:   sourceIP,
		Successful:  successful,
		AttemptTime: g.now().UTC(),
	}
	if err := repo.Append(ctx, attempt); err != nil {
		return fmt.Errorf("recording login attempt: %w", err)
	}

	if successful {
		if err := repo.DeleteFailed(ctx, username); err != nil {
			return fmt.Errorf("pruning failed attempts: %w", err)
		}
	}

	return nil
}

// Await blocks for the given delay, honoring context cancellation.
func (g *BruteForceGuard) Await(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *BruteForceGuard) failedInWindow(ctx context.Context, username string) (int, error) {
	since := g.now().UTC().Add(-g.window)
	count, err := g.repomanager.LoginAttempts(g.db).CountFailedSince(ctx, username, since)
	if err != nil {
		return 0, fmt.Errorf("counting failed attempts: %w", err)
	}
	return count, nil
}
