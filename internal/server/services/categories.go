package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/techblog/internal/common"
	"github.com/dmitrijs2005/techblog/internal/ids"
	"github.com/dmitrijs2005/techblog/internal/server/models"
	"github.com/dmitrijs2005/techblog/internal/server/repositories/repomanager"
)

const maxCategoryNameLength = 100

// CategoryService manages the category taxonomy. Mutations are admin-only;
// that policy is enforced at the HTTP layer.
type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager) *CategoryService {
	return &CategoryService{db: db, repomanager: m}
}

func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	category := &models.Category{ID: ids.New(), Name: name}
	if err := s.repomanager.Categories(s.db).Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	return s.repomanager.Categories(s.db).Find(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.repomanager.Categories(s.db).List(ctx)
}

func (s *CategoryService) Rename(ctx context.Context, id, name string) error {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return err
	}
	return s.repomanager.Categories(s.db).Rename(ctx, id, name)
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Categories(s.db).Delete(ctx, id)
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxCategoryNameLength {
		return "", fmt.Errorf("%w: category name is required and must not exceed %d characters",
			common.ErrorValidation, maxCategoryNameLength)
	}
	return name, nil
}
