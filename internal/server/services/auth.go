// Package services contains server-side business logic. This file implements
// AuthService, which composes password verification, the brute-force guard,
// and token issuance into the register / login / refresh / revoke operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/techblog/internal/common"
	"github.com/dmitrijs2005/techblog/internal/dbx"
	"github.com/dmitrijs2005/techblog/internal/ids"
	"github.com/dmitrijs2005/techblog/internal/logging"
	"github.com/dmitrijs2005/techblog/internal/server/auth"
	"github.com/dmitrijs2005/techblog/internal/server/config"
	"github.com/dmitrijs2005/techblog/internal/server/models"
	"github.com/dmitrijs2005/techblog/internal/server/password"
	"github.com/dmitrijs2005/techblog/internal/server/repositories/repomanager"
)

const maxCredentialLength = 50

// RegisterRequest carries registration input. FirstName/LastName are only
// consulted for author registration.
type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginRequest carries login input plus the source IP for the attempt log.
type LoginRequest struct {
	Username string
	Password string
	SourceIP string
}

// AuthResponse is returned by Login and RefreshToken.
type AuthResponse struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Username     string
	Role         models.Role
}

// AuthService provides authentication operations:
//   - Register / RegisterAuthor: create accounts (author profile atomically)
//   - Login: guard, verify credentials, mint tokens
//   - RefreshToken: rotate the refresh token and mint a new access token
//   - RevokeToken: drop the stored refresh token
//
// It carries no mutable in-process state and is safe for concurrent use.
type AuthService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	issuer               *auth.Issuer
	guard                *BruteForceGuard
	refreshTokenValidity time.Duration
	logger               logging.Logger
	now                  func() time.Time
}

// NewAuthService constructs an AuthService from repositories and config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, guard *BruteForceGuard, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:                   db,
		repomanager:          m,
		issuer:               issuer,
		guard:                guard,
		refreshTokenValidity: cfg.RefreshTokenValidityDuration,
		logger:               logger.With("module", "auth_service"),
		now:                  time.Now,
	}
}

// Register creates an account with the given role. For RoleAuthor the author
// profile is created in the same transaction: either both rows exist
// afterwards or neither does. Returns the new account id.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, role models.Role) (string, error) {
	if err := validateRegister(req, role); err != nil {
		return "", err
	}

	hash, salt, err := password.Derive(req.Password)
	if err != nil {
		return "", fmt.Errorf("deriving credential: %w", err)
	}

	account := &models.Account{
		ID:           ids.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         role,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		taken, err := repo.UsernameExists(ctx, req.Username)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrDuplicateUsername
		}

		taken, err = repo.EmailExists(ctx, req.Email)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrDuplicateEmail
		}

		if err := repo.Create(ctx, account); err != nil {
			return err
		}

		if role == models.RoleAuthor {
			profile := &models.AuthorProfile{
				ID:        ids.New(),
				AccountID: account.ID,
				FirstName: req.FirstName,
				LastName:  req.LastName,
			}
			if err := repo.CreateAuthorProfile(ctx, profile); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		// Two registrations can race past the pre-checks; the loser hits the
		// unique constraint at commit and must still see a duplicate error.
		return "", s.mapRegisterError(ctx, err)
	}

	return account.ID, nil
}

// RegisterAuthor is the role-fixed registration variant.
func (s *AuthService) RegisterAuthor(ctx context.Context, req RegisterRequest) (string, error) {
	return s.Register(ctx, req, models.RoleAuthor)
}

// Login authenticates the request. The guard delay is awaited and the
// lockout verdict checked before any credential work, keeping failure and
// lockout paths time-homogeneous. requiredRole restricts which role may log
// in through this call; pass "" for any.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, requiredRole models.Role) (*AuthResponse, error) {
	delay, err := s.guard.DelayFor(ctx, req.Username)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.guard.Await(ctx, delay); err != nil {
		return nil, err
	}

	locked, err := s.guard.IsLockedOut(ctx, req.Username)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if locked {
		return nil, common.ErrTemporarilyLocked
	}

	account, err := s.repomanager.Accounts(s.db).FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.recordFailure(ctx, req)
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !password.Verify(req.Password, account.PasswordHash, account.PasswordSalt) {
		s.recordFailure(ctx, req)
		return nil, common.ErrInvalidCredentials
	}

	if requiredRole != "" && account.Role != requiredRole {
		s.recordFailure(ctx, req)
		return nil, common.ErrRoleMismatch
	}

	if err := s.guard.RecordAttempt(ctx, req.Username, true, req.SourceIP); err != nil {
		s.logger.Error(ctx, "recording successful attempt", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return s.issueTokenPair(ctx, account)
}

// RefreshToken rotates the refresh token and mints a new access token. The
// brute-force guard is bypassed: a refresh token is not a guessable
// credential. Concurrent refreshes with the same token race benignly; the
// loser finds no account referencing its token and fails with
// ErrInvalidRefreshToken.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, common.ErrInvalidRefreshToken
	}

	account, err := s.repomanager.Accounts(s.db).FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, common.ErrorInternal
	}

	// The lookup joins the profile eagerly, so a missing profile here means
	// the author row itself is gone.
	if account.Role == models.RoleAuthor && account.Author == nil {
		return nil, common.ErrAuthorDataMissing
	}

	if !account.RefreshTokenExpiry.After(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	return s.issueTokenPair(ctx, account)
}

// RevokeToken clears the stored refresh token for the username, logging the
// account out of all refresh capability. Already-issued access tokens stay
// valid until their own expiry.
func (s *AuthService) RevokeToken(ctx context.Context, username string) error {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUnknownUser
		}
		return common.ErrorInternal
	}

	if err := repo.ClearRefreshToken(ctx, account.ID); err != nil {
		return common.ErrorInternal
	}

	return nil
}

// --- helpers below ---

func (s *AuthService) issueTokenPair(ctx context.Context, account *models.Account) (*AuthResponse, error) {
	accessToken, expiresAt, err := s.issuer.NewAccessToken(account)
	if err != nil {
		s.logger.Error(ctx, "signing access token", "error", err.Error())
		return nil, common.ErrorInternal
	}

	refreshToken, err := auth.NewRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshExpiry := s.now().UTC().Add(s.refreshTokenValidity)
	if err := s.repomanager.Accounts(s.db).UpdateRefreshToken(ctx, account.ID, refreshToken, refreshExpiry); err != nil {
		s.logger.Error(ctx, "persisting refresh token", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Username:     account.Username,
		Role:         account.Role,
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, req LoginRequest) {
	if err := s.guard.RecordAttempt(ctx, req.Username, false, req.SourceIP); err != nil {
		s.logger.Error(ctx, "recording failed attempt", "error", err.Error())
	}
}

// mapRegisterError converts commit-time unique violations into the same
// duplicate errors the pre-checks produce. Anything else is logged and
// surfaced as a generic internal failure: registration errors must not leak
// persistence details to callers.
func (s *AuthService) mapRegisterError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrDuplicateUsername), errors.Is(err, common.ErrDuplicateEmail):
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "accounts_email_key":
			return common.ErrDuplicateEmail
		default:
			return common.ErrDuplicateUsername
		}
	}

	s.logger.Error(ctx, "registration transaction rolled back", "error", err.Error())
	return common.ErrorInternal
}

func validateRegister(req RegisterRequest, role models.Role) error {
	if req.Username == "" || len(req.Username) > maxCredentialLength {
		return fmt.Errorf("%w: username is required and must not exceed %d characters", common.ErrorValidation, maxCredentialLength)
	}
	if req.Password == "" || len(req.Password) > maxCredentialLength {
		return fmt.Errorf("%w: password is required and must not exceed %d characters", common.ErrorValidation, maxCredentialLength)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: a valid email is required", common.ErrorValidation)
	}
	if role == models.RoleAuthor && (req.FirstName == "" || req.LastName == "") {
		return common.ErrIncompleteAuthorProfile
	}
	return nil
}
