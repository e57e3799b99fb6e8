// Package auth issues and validates the two token kinds of the platform:
// signed access tokens (HS256 JWT) and opaque refresh tokens.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/techblog/internal/common"
	"github.com/dmitrijs2005/techblog/internal/server/models"
)

// Claims carries the identity asserted by an access token.
type Claims struct {
	jwt.RegisteredClaims
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	AuthorID   string `json:"author_id,omitempty"`
}

// Issuer mints and validates tokens using a symmetric signing key.
type Issuer struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
	now       func() time.Time
}

// NewIssuer constructs an Issuer. accessTTL bounds access token lifetime.
func NewIssuer(secret []byte, issuer, audience string, accessTTL time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing key is required")
	}
	if accessTTL <= 0 {
		return nil, errors.New("access token lifetime must be positive")
	}
	return &Issuer{
		secret:    secret,
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
		now:       time.Now,
	}, nil
}

// NewAccessToken signs a time-bounded JWT for the account. The jti claim is
// unique per token for replay auditing; it is not enforced server-side.
func (i *Issuer) NewAccessToken(account *models.Account) (string, time.Time, error) {
	now := i.now().UTC()
	expiresAt := now.Add(i.accessTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Username: account.Username,
		Email:    account.Email,
		Role:     string(account.Role),
	}
	if account.Author != nil {
		claims.GivenName = account.Author.FirstName
		claims.FamilyName = account.Author.LastName
		claims.AuthorID = account.Author.ID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAndValidate verifies signature, lifetime (zero leeway), issuer, and
// audience, requiring HS256.
func (i *Issuer) ParseAndValidate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, common.ErrInvalidToken
			}
			return i.secret, nil
		},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// NewRefreshToken returns 32 bytes from a CSPRNG, base64-encoded.
// It is a capability-bearing secret with no embedded structure.
func NewRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
