package loginattempts

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/techblog/internal/dbx"
	"github.com/dmitrijs2005/techblog/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, attempt *models.LoginAttempt) error {
	query :=
		`INSERT INTO login_attempts (id, username, ip_address, successful, attempt_time)
         VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		attempt.ID, attempt.Username, attempt.IPAddress, attempt.Successful, attempt.AttemptTime)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) CountFailedSince(ctx context.Context, username string, since time.Time) (int, error) {
	query :=
		`SELECT COUNT(*) FROM login_attempts
		 WHERE username = $1 AND NOT successful AND attempt_time >= $2
		 `

	var count int
	if err := r.db.QueryRowContext(ctx, query, username, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

func (r *PostgresRepository) DeleteFailed(ctx context.Context, username string) error {
	query :=
		`DELETE FROM login_attempts
		 WHERE username = $1 AND NOT successful
		 `

	_, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
