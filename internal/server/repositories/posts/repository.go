// Package posts declares persistence for blog posts.
package posts

import (
	"context"

	"github.com/dmitrijs2005/techblog/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) error
	// Find returns the post with its author profile and category joined.
	Find(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	// AuthorExists reports whether an author profile exists, used to reject
	// posts referencing unknown authors.
	AuthorExists(ctx context.Context, authorID string) (bool, error)
}
