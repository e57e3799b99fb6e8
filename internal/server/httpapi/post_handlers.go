package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/techblog/internal/server/models"
	"github.com/dmitrijs2005/techblog/internal/server/services"
)

type postRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	ImageURL   string `json:"image_url,omitempty"`
	CategoryID string `json:"category_id"`
}

type postResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"image_url,omitempty"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	CategoryID string    `json:"category_id"`
	Category   string    `json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toPostResponse(p *models.Post) postResponse {
	resp := postResponse{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		ImageURL:   p.ImageURL,
		AuthorID:   p.AuthorID,
		CategoryID: p.CategoryID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Author != nil {
		resp.AuthorName = p.Author.FirstName + " " + p.Author.LastName
	}
	if p.Category != nil {
		resp.Category = p.Category.Name
	}
	return resp
}

// authorID resolves the caller's author profile id from the token claims.
func (a *API) authorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := claimsFromContext(r.Context())
	if !ok || claims.AuthorID == "" {
		writeError(w, http.StatusForbidden, "author profile required")
		return "", false
	}
	return claims.AuthorID, true
}

func (a *API) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.postSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	result := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		result = append(result, toPostResponse(p))
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.postSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(post))
}

func (a *API) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	authorID, ok := a.authorID(w, r)
	if !ok {
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	post, err := a.postSvc.Create(r.Context(), authorID, services.PostRequest{
		Title:      req.Title,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPostResponse(post))
}

func (a *API) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	authorID, ok := a.authorID(w, r)
	if !ok {
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	post, err := a.postSvc.Update(r.Context(), authorID, r.PathValue("id"), services.PostRequest{
		Title:      req.Title,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(post))
}

func (a *API) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	authorID, ok := a.authorID(w, r)
	if !ok {
		return
	}

	if err := a.postSvc.Delete(r.Context(), authorID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
