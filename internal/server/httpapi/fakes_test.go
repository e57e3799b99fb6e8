package httpapi

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/techblog/internal/common"
	"github.com/dmitrijs2005/techblog/internal/dbx"
	"github.com/dmitrijs2005/techblog/internal/logging"
	"github.com/dmitrijs2005/techblog/internal/server/auth"
	"github.com/dmitrijs2005/techblog/internal/server/config"
	"github.com/dmitrijs2005/techblog/internal/server/models"
	"github.com/dmitrijs2005/techblog/internal/server/password"
	accountsrepo "github.com/dmitrijs2005/techblog/internal/server/repositories/accounts"
	categoriesrepo "github.com/dmitrijs2005/techblog/internal/server/repositories/categories"
	attemptsrepo "github.com/dmitrijs2005/techblog/internal/server/repositories/loginattempts"
	postsrepo "github.com/dmitrijs2005/techblog/internal/server/repositories/posts"
	"github.com/dmitrijs2005/techblog/internal/server/services"
)

// In-memory repositories backing the full service stack for handler tests.

type memAccountsRepo struct {
	byUsername map[string]*models.Account
	byToken    map[string]*models.Account
}

func newMemAccountsRepo() *memAccountsRepo {
	return &memAccountsRepo{
		byUsername: make(map[string]*models.Account),
		byToken:    make(map[string]*models.Account),
	}
}

func (m *memAccountsRepo) Create(ctx context.Context, a *models.Account) error {
	m.byUsername[a.Username] = a
	return nil
}

func (m *memAccountsRepo) CreateAuthorProfile(ctx context.Context, p *models.AuthorProfile) error {
	for _, a := range m.byUsername {
		if a.ID == p.AccountID {
			a.Author = p
		}
	}
	return nil
}

func (m *memAccountsRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, ok := m.byUsername[username]
	return ok, nil
}

func (m *memAccountsRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	for _, a := range m.byUsername {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccountsRepo) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	a, ok := m.byUsername[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (m *memAccountsRepo) FindByRefreshToken(ctx context.Context, token string) (*models.Account, error) {
	a, ok := m.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (m *memAccountsRepo) UpdateRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	for _, a := range m.byUsername {
		if a.ID == accountID {
			delete(m.byToken, a.RefreshToken)
			a.RefreshToken = token
			a.RefreshTokenExpiry = expiresAt
			m.byToken[token] = a
		}
	}
	return nil
}

func (m *memAccountsRepo) ClearRefreshToken(ctx context.Context, accountID string) error {
	for _, a := range m.byUsername {
		if a.ID == accountID {
			delete(m.byToken, a.RefreshToken)
			a.RefreshToken = ""
			a.RefreshTokenExpiry = time.Time{}
		}
	}
	return nil
}

type memAttemptsRepo struct {
	attempts []*models.LoginAttempt
}

func (m *memAttemptsRepo) Append(ctx context.Context, a *models.LoginAttempt) error {
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memAttemptsRepo) CountFailedSince(ctx context.Context, username string, since time.Time) (int, error) {
	n := 0
	for _, a := range m.attempts {
		if a.Username == username && !a.Successful && !a.AttemptTime.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memAttemptsRepo) DeleteFailed(ctx context.Context, username string) error {
	kept := m.attempts[:0]
	for _, a := range m.attempts {
		if a.Username != username || a.Successful {
			kept = append(kept, a)
		}
	}
	m.attempts = kept
	return nil
}

type memCategoriesRepo struct {
	categories map[string]*models.Category
}

func newMemCategoriesRepo() *memCategoriesRepo {
	return &memCategoriesRepo{categories: make(map[string]*models.Category)}
}

func (m *memCategoriesRepo) Create(ctx context.Context, c *models.Category) error {
	m.categories[c.ID] = c
	return nil
}

func (m *memCategoriesRepo) Find(ctx context.Context, id string) (*models.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (m *memCategoriesRepo) List(ctx context.Context) ([]*models.Category, error) {
	var result []*models.Category
	for _, c := range m.categories {
		result = append(result, c)
	}
	return result, nil
}

func (m *memCategoriesRepo) Rename(ctx context.Context, id, name string) error {
	c, ok := m.categories[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.Name = name
	return nil
}

func (m *memCategoriesRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.categories[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.categories, id)
	return nil
}

type memPostsRepo struct {
	posts   map[string]*models.Post
	authors map[string]bool
}

func newMemPostsRepo() *memPostsRepo {
	return &memPostsRepo{posts: make(map[string]*models.Post), authors: make(map[string]bool)}
}

func (m *memPostsRepo) Create(ctx context.Context, p *models.Post) error {
	m.posts[p.ID] = p
	return nil
}

func (m *memPostsRepo) Find(ctx context.Context, id string) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (m *memPostsRepo) List(ctx context.Context) ([]*models.Post, error) {
	var result []*models.Post
	for _, p := range m.posts {
		result = append(result, p)
	}
	return result, nil
}

func (m *memPostsRepo) Update(ctx context.Context, p *models.Post) error {
	if _, ok := m.posts[p.ID]; !ok {
		return common.ErrorNotFound
	}
	m.posts[p.ID] = p
	return nil
}

func (m *memPostsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memPostsRepo) AuthorExists(ctx context.Context, authorID string) (bool, error) {
	return m.authors[authorID], nil
}

type memRepoManager struct {
	a *memAccountsRepo
	l *memAttemptsRepo
	c *memCategoriesRepo
	p *memPostsRepo
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		a: newMemAccountsRepo(),
		l: &memAttemptsRepo{},
		c: newMemCategoriesRepo(),
		p: newMemPostsRepo(),
	}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error      { return nil }
func (m *memRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository      { return m.a }
func (m *memRepoManager) LoginAttempts(db dbx.DBTX) attemptsrepo.Repository { return m.l }
func (m *memRepoManager) Categories(db dbx.DBTX) categoriesrepo.Repository  { return m.c }
func (m *memRepoManager) Posts(db dbx.DBTX) postsrepo.Repository            { return m.p }

type testAPI struct {
	api    *API
	rm     *memRepoManager
	server *httptest.Server
	issuer *auth.Issuer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// Registrations run in transactions; the fakes do the real work.
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 16; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.FailureDelayIncrement = 0
	cfg.RateLimitRPS = 0

	issuer, err := auth.NewIssuer([]byte(cfg.SecretKey), cfg.Issuer, cfg.Audience, cfg.AccessTokenValidityDuration)
	if err != nil {
		t.Fatalf("NewIssuer error: %v", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rm := newMemRepoManager()
	guard := services.NewBruteForceGuard(db, rm, cfg)

	api := New(db, issuer, cfg, logger,
		services.NewAuthService(db, rm, issuer, guard, cfg, logger),
		services.NewPostService(db, rm),
		services.NewCategoryService(db, rm),
		services.NewImageService(cfg),
	)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &testAPI{api: api, rm: rm, server: srv, issuer: issuer}
}

// seedAccount inserts an account with a derived credential directly into the
// fakes, bypassing the HTTP registration path.
func (ta *testAPI) seedAccount(t *testing.T, username, pass string, role models.Role) *models.Account {
	t.Helper()
	hash, salt, err := password.Derive(pass)
	if err != nil {
		t.Fatalf("Derive error: %v", err)
	}
	account := &models.Account{
		ID:           "acc-" + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         role,
	}
	if role == models.RoleAuthor {
		account.Author = &models.AuthorProfile{
			ID: "author-" + username, AccountID: account.ID,
			FirstName: "Test", LastName: "Author",
		}
		ta.rm.p.authors[account.Author.ID] = true
	}
	ta.rm.a.byUsername[username] = account
	return account
}

func (ta *testAPI) tokenFor(t *testing.T, account *models.Account) string {
	t.Helper()
	token, _, err := ta.issuer.NewAccessToken(account)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}
	return token
}
