package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/techblog/internal/common"
	"github.com/dmitrijs2005/techblog/internal/dbx"
	"github.com/dmitrijs2005/techblog/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// selectAccount joins the author profile so Author-role accounts come back
// with a usable profile in one round-trip.
const selectAccount = `
	SELECT a.id, a.username, a.email, a.password_hash, a.password_salt, a.role,
	       a.refresh_token, a.refresh_token_expiry, a.created_at,
	       p.id, p.first_name, p.last_name
	FROM accounts a
	LEFT JOIN author_profiles p ON p.account_id = a.id
`

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) error {
	query :=
		`INSERT INTO accounts (id, username, email, password_hash, password_salt, role)
         VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Username, account.Email,
		account.PasswordHash, account.PasswordSalt, string(account.Role))

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) CreateAuthorProfile(ctx context.Context, profile *models.AuthorProfile) error {
	query :=
		`INSERT INTO author_profiles (id, account_id, first_name, last_name)
         VALUES ($1, $2, $3, $4)
		 `

	_, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.AccountID, profile.FirstName, profile.LastName)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username)
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email)
}

func (r *PostgresRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, selectAccount+` WHERE a.username = $1`, username)
	return scanAccount(row)
}

func (r *PostgresRepository) FindByRefreshToken(ctx context.Context, token string) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, selectAccount+` WHERE a.refresh_token = $1`, token)
	return scanAccount(row)
}

func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	query :=
		`UPDATE accounts
		 SET refresh_token = $2, refresh_token_expiry = $3
		 WHERE id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, accountID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, accountID string) error {
	query :=
		`UPDATE accounts
		 SET refresh_token = NULL, refresh_token_expiry = NULL
		 WHERE id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var (
		role         string
		refreshToken sql.NullString
		tokenExpiry  sql.NullTime
		profileID    sql.NullString
		firstName    sql.NullString
		lastName     sql.NullString
	)

	err := row.Scan(
		&account.ID, &account.Username, &account.Email,
		&account.PasswordHash, &account.PasswordSalt, &role,
		&refreshToken, &tokenExpiry, &account.CreatedAt,
		&profileID, &firstName, &lastName)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.Role = models.Role(role)
	account.RefreshToken = refreshToken.String
	account.RefreshTokenExpiry = tokenExpiry.Time
	if profileID.Valid {
		account.Author = &models.AuthorProfile{
			ID:        profileID.String,
			AccountID: account.ID,
			FirstName: firstName.String,
			LastName:  lastName.String,
		}
	}

	return account, nil
}
