package posts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/techblog/internal/common"
	"github.com/dmitrijs2005/techblog/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var postColumns = []string{
	"id", "title", "content", "image_url", "author_id", "category_id",
	"created_at", "updated_at", "first_name", "last_name", "name",
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+posts\s*\(id,\s*title,\s*content,\s*image_url,\s*author_id,\s*category_id,\s*created_at,\s*updated_at\)`).
		WithArgs("p-1", "Title", "Body", "", "auth-1", "cat-1", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Post{
		ID: "p-1", Title: "Title", Content: "Body",
		AuthorID: "auth-1", CategoryID: "cat-1", CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestFind_JoinsAuthorAndCategory(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(postColumns).AddRow(
		"p-1", "Title", "Body", "", "auth-1", "cat-1", now, now,
		"Alice", "Cooper", "Go")

	mock.ExpectQuery(`(?s)SELECT\s+p\.id,.*JOIN\s+author_profiles\s+a.*JOIN\s+categories\s+c.*WHERE\s+p\.id\s*=\s*\$1`).
		WithArgs("p-1").
		WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.Author == nil || got.Author.FirstName != "Alice" {
		t.Fatalf("author not joined: %+v", got.Author)
	}
	if got.Category == nil || got.Category.Name != "Go" {
		t.Fatalf("category not joined: %+v", got.Category)
	}
	if got.Author.ID != "auth-1" || got.Category.ID != "cat-1" {
		t.Fatalf("joined ids not propagated: %+v", got)
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+p\.id\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(postColumns).
		AddRow("p-2", "Newer", "b", "", "auth-1", "cat-1", now, now, "A", "B", "Go").
		AddRow("p-1", "Older", "b", "", "auth-1", "cat-1", now.Add(-time.Hour), now.Add(-time.Hour), "A", "B", "Go")

	mock.ExpectQuery(`(?s)FROM\s+posts\s+p.*ORDER\s+BY\s+p\.created_at\s+DESC`).
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Newer" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+posts\s+SET\s+title`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Post{ID: "ghost"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+posts`).WillReturnError(errors.New("db down"))

	err := repo.Delete(context.Background(), "p-1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestAuthorExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+author_profiles\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("auth-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := repo.AuthorExists(context.Background(), "auth-1")
	if err != nil || !found {
		t.Fatalf("AuthorExists: got (%v, %v)", found, err)
	}
}
