package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

const selectPost = `
	SELECT p.id, p.title, p.content, p.image_url, p.author_id, p.category_id,
	       p.created_at, p.updated_at,
	       a.first_name, a.last_name,
	       c.name
	FROM posts p
	JOIN author_profiles a ON a.id = p.author_id
	JOIN categories c ON c.id = p.category_id
`

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) error {
	query :=
		`INSERT INTO posts (id, title, content, image_url, author_id, category_id, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Content, post.ImageURL,
		post.AuthorID, post.CategoryID, post.CreatedAt, post.UpdatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.Post, error) {
	row := r.db.QueryRowContext(ctx, selectPost+` WHERE p.id = $1`, id)

	post, err := scanPost(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPost+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, post *models.Post) error {
	query :=
		`UPDATE posts
		 SET title = $2, content = $3, image_url = $4, category_id = $5, updated_at = $6
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Content, post.ImageURL, post.CategoryID, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) AuthorExists(ctx context.Context, authorID string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM author_profiles WHERE id = $1)`, authorID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

func scanPost(scan func(dest ...any) error) (*models.Post, error) {
	post := &models.Post{
		Author:   &models.AuthorProfile{},
		Category: &models.Category{},
	}
	err := scan(
		&post.ID, &post.Title, &post.Content, &post.ImageURL,
		&post.AuthorID, &post.CategoryID, &post.CreatedAt, &post.UpdatedAt,
		&post.Author.FirstName, &post.Author.LastName,
		&post.Category.Name)
	if err != nil {
		return nil, err
	}
	post.Author.ID = post.AuthorID
	post.Category.ID = post.CategoryID
	return post, nil
}
