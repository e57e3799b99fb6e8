// Package categories declares persistence for post categories.
package categories

import (
	"context"

	"github.com/dmitrijs2005/techblog/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, category *models.Category) error
	Find(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}
