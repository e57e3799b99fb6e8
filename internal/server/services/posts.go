package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/techblog/internal/common"
	"github.com/dmitrijs2005/techblog/internal/ids"
	"github.com/dmitrijs2005/techblog/internal/server/models"
	"github.com/dmitrijs2005/techblog/internal/server/repositories/repomanager"
)

const maxPostTitleLength = 200

// PostRequest carries post creation and update input.
type PostRequest struct {
	Title      string
	Content    string
	ImageURL   string
	CategoryID string
}

// PostService manages blog posts. Reads are public; mutations require the
// caller's author profile id, resolved by the HTTP layer from the access
// token claims.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager) *PostService {
	return &PostService{db: db, repomanager: m, now: time.Now}
}

func (s *PostService) Create(ctx context.Context, authorID string, req PostRequest) (*models.Post, error) {
	if err := validatePost(req); err != nil {
		return nil, err
	}

	repo := s.repomanager.Posts(s.db)

	found, err := repo.AuthorExists(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.ErrAuthorDataMissing
	}

	if _, err := s.repomanager.Categories(s.db).Find(ctx, req.CategoryID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: unknown category", common.ErrorValidation)
		}
		return nil, err
	}

	nowUTC := s.now().UTC()
	post := &models.Post{
		ID:         ids.New(),
		Title:      req.Title,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		AuthorID:   authorID,
		CategoryID: req.CategoryID,
		CreatedAt:  nowUTC,
		UpdatedAt:  nowUTC,
	}
	if err := repo.Create(ctx, post); err != nil {
		return nil, err
	}

	return repo.Find(ctx, post.ID)
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.repomanager.Posts(s.db).Find(ctx, id)
}

func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	return s.repomanager.Posts(s.db).List(ctx)
}

// Update rewrites a post. Only the owning author may update it.
func (s *PostService) Update(ctx context.Context, authorID, postID string, req PostRequest) (*models.Post, error) {
	if err := validatePost(req); err != nil {
		return nil, err
	}

	repo := s.repomanager.Posts(s.db)

	post, err := repo.Find(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, common.ErrorUnauthorized
	}

	post.Title = req.Title
	post.Content = req.Content
	post.ImageURL = req.ImageURL
	post.CategoryID = req.CategoryID
	post.UpdatedAt = s.now().UTC()

	if err := repo.Update(ctx, post); err != nil {
		return nil, err
	}

	return repo.Find(ctx, postID)
}

// Delete removes a post. Only the owning author may delete it.
func (s *PostService) Delete(ctx context.Context, authorID, postID string) error {
	repo := s.repomanager.Posts(s.db)

	post, err := repo.Find(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != authorID {
		return common.ErrorUnauthorized
	}

	return repo.Delete(ctx, postID)
}

func validatePost(req PostRequest) error {
	if strings.TrimSpace(req.Title) == "" || len(req.Title) > maxPostTitleLength {
		return fmt.Errorf("%w: title is required and must not exceed %d characters",
			common.ErrorValidation, maxPostTitleLength)
	}
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content is required", common.ErrorValidation)
	}
	if req.CategoryID == "" {
		return fmt.Errorf("%w: category id is required", common.ErrorValidation)
	}
	return nil
}
