package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/techblog/internal/dbx"
	"github.com/dmitrijs2005/techblog/internal/server/models"
	accountsrepo "github.com/dmitrijs2005/techblog/internal/server/repositories/accounts"
	categoriesrepo "github.com/dmitrijs2005/techblog/internal/server/repositories/categories"
	attemptsrepo "github.com/dmitrijs2005/techblog/internal/server/repositories/loginattempts"
	postsrepo "github.com/dmitrijs2005/techblog/internal/server/repositories/posts"
	"github.com/dmitrijs2005/techblog/internal/server/repositories/repomanager"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeAccountsRepo struct {
	createErr        error
	createProfileErr error
	created          []*models.Account
	createdProfiles  []*models.AuthorProfile

	usernameTaken   bool
	usernameTakenEr error
	emailTaken      bool
	emailTakenErr   error

	byUsername    *models.Account
	byUsernameErr error

	byToken    *models.Account
	byTokenErr error

	updatedTokens []string
	updateErr     error

	clearedIDs []string
	clearErr   error
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, a)
	return nil
}

func (f *fakeAccountsRepo) CreateAuthorProfile(ctx context.Context, p *models.AuthorProfile) error {
	if f.createProfileErr != nil {
		return f.createProfileErr
	}
	f.createdProfiles = append(f.createdProfiles, p)
	return nil
}

func (f *fakeAccountsRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return f.usernameTaken, f.usernameTakenEr
}

func (f *fakeAccountsRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return f.emailTaken, f.emailTakenErr
}

func (f *fakeAccountsRepo) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	if f.byUsernameErr != nil {
		return nil, f.byUsernameErr
	}
	return f.byUsername, nil
}

func (f *fakeAccountsRepo) FindByRefreshToken(ctx context.Context, token string) (*models.Account, error) {
	if f.byTokenErr != nil {
		return nil, f.byTokenErr
	}
	return f.byToken, nil
}

func (f *fakeAccountsRepo) UpdateRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedTokens = append(f.updatedTokens, token)
	return nil
}

func (f *fakeAccountsRepo) ClearRefreshToken(ctx context.Context, accountID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.clearedIDs = append(f.clearedIDs, accountID)
	return nil
}

type fakeAttemptsRepo struct {
	appended  []*models.LoginAttempt
	appendErr error

	failedCount int
	countErr    error

	deletedFor []string
	deleteErr  error
}

func (f *fakeAttemptsRepo) Append(ctx context.Context, a *models.LoginAttempt) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, a)
	return nil
}

func (f *fakeAttemptsRepo) CountFailedSince(ctx context.Context, username string, since time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.failedCount, nil
}

func (f *fakeAttemptsRepo) DeleteFailed(ctx context.Context, username string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedFor = append(f.deletedFor, username)
	return nil
}

type fakeCategoriesRepo struct {
	createErr error
	created   []*models.Category

	findOut *models.Category
	findErr error

	listOut []*models.Category
	listErr error

	renameErr error
	deleteErr error
}

func (f *fakeCategoriesRepo) Create(ctx context.Context, c *models.Category) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCategoriesRepo) Find(ctx context.Context, id string) (*models.Category, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeCategoriesRepo) List(ctx context.Context) ([]*models.Category, error) {
	return f.listOut, f.listErr
}

func (f *fakeCategoriesRepo) Rename(ctx context.Context, id, name string) error { return f.renameErr }
func (f *fakeCategoriesRepo) Delete(ctx context.Context, id string) error       { return f.deleteErr }

type fakePostsRepo struct {
	createErr error
	created   []*models.Post

	findOut *models.Post
	findErr error

	listOut []*models.Post
	listErr error

	updateErr error
	updated   []*models.Post

	deletedIDs []string
	deleteErr  error

	authorExists    bool
	authorExistsErr error
}

func (f *fakePostsRepo) Create(ctx context.Context, p *models.Post) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, p)
	return nil
}

func (f *fakePostsRepo) Find(ctx context.Context, id string) (*models.Post, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakePostsRepo) List(ctx context.Context) ([]*models.Post, error) {
	return f.listOut, f.listErr
}

func (f *fakePostsRepo) Update(ctx context.Context, p *models.Post) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, p)
	return nil
}

func (f *fakePostsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakePostsRepo) AuthorExists(ctx context.Context, authorID string) (bool, error) {
	return f.authorExists, f.authorExistsErr
}

type fakeRepoManager struct {
	a *fakeAccountsRepo
	l *fakeAttemptsRepo
	c *fakeCategoriesRepo
	p *fakePostsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository { return m.a }

func (m *fakeRepoManager) LoginAttempts(db dbx.DBTX) attemptsrepo.Repository { return m.l }

func (m *fakeRepoManager) Categories(db dbx.DBTX) categoriesrepo.Repository { return m.c }

func (m *fakeRepoManager) Posts(db dbx.DBTX) postsrepo.Repository { return m.p }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)
