// Package httpapi is the HTTP surface of the blog platform. It translates
// requests into service calls and service errors into status codes; all
// business rules live in the services package.
package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/dmitrijs2005/techblog/internal/logging"
	"github.com/dmitrijs2005/techblog/internal/obs"
	"github.com/dmitrijs2005/techblog/internal/server/auth"
	"github.com/dmitrijs2005/techblog/internal/server/config"
	"github.com/dmitrijs2005/techblog/internal/server/models"
	"github.com/dmitrijs2005/techblog/internal/server/services"
)

const maxRequestBody = 1 << 20 // 1 MiB

// API routes HTTP requests to services.
type API struct {
	mux    *http.ServeMux
	db     *sql.DB
	issuer *auth.Issuer
	logger logging.Logger

	authSvc        *services.AuthService
	postSvc        *services.PostService
	categorySvc    *services.CategoryService
	imageSvc       *services.ImageService
	rateLimitRPS   float64
	rateLimitBurst int
}

func New(db *sql.DB, issuer *auth.Issuer, cfg *config.Config, logger logging.Logger,
	authSvc *services.AuthService, postSvc *services.PostService,
	categorySvc *services.CategoryService, imageSvc *services.ImageService) *API {

	a := &API{
		mux:            http.NewServeMux(),
		db:             db,
		issuer:         issuer,
		logger:         logger.With("module", "httpapi"),
		authSvc:        authSvc,
		postSvc:        postSvc,
		categorySvc:    categorySvc,
		imageSvc:       imageSvc,
		rateLimitRPS:   cfg.RateLimitRPS,
		rateLimitBurst: cfg.RateLimitBurst,
	}
	a.routes()
	return a
}

func (a *API) routes() {
	m := a.mux

	m.HandleFunc("GET /healthz", a.handleHealthz)
	m.HandleFunc("GET /readyz", a.handleReadyz)
	m.Handle("GET /metrics", obs.Handler())

	m.HandleFunc("POST /api/auth/register", a.handleRegister)
	m.HandleFunc("POST /api/auth/register-author", a.handleRegisterAuthor)
	m.HandleFunc("POST /api/auth/login", a.handleLogin)
	m.HandleFunc("POST /api/auth/login-admin", a.handleLoginAdmin)
	m.HandleFunc("POST /api/auth/refresh-token", a.handleRefreshToken)
	m.Handle("POST /api/auth/revoke-token", a.authenticated(http.HandlerFunc(a.handleRevokeToken)))

	m.HandleFunc("GET /api/posts", a.handleListPosts)
	m.HandleFunc("GET /api/posts/{id}", a.handleGetPost)
	m.Handle("POST /api/posts", a.requireRole(models.RoleAuthor, http.HandlerFunc(a.handleCreatePost)))
	m.Handle("PUT /api/posts/{id}", a.requireRole(models.RoleAuthor, http.HandlerFunc(a.handleUpdatePost)))
	m.Handle("DELETE /api/posts/{id}", a.requireRole(models.RoleAuthor, http.HandlerFunc(a.handleDeletePost)))

	m.HandleFunc("GET /api/categories", a.handleListCategories)
	m.HandleFunc("GET /api/categories/{id}", a.handleGetCategory)
	m.Handle("POST /api/categories", a.requireRole(models.RoleAdmin, http.HandlerFunc(a.handleCreateCategory)))
	m.Handle("PUT /api/categories/{id}", a.requireRole(models.RoleAdmin, http.HandlerFunc(a.handleRenameCategory)))
	m.Handle("DELETE /api/categories/{id}", a.requireRole(models.RoleAdmin, http.HandlerFunc(a.handleDeleteCategory)))

	m.Handle("POST /api/images/upload-url", a.requireRole(models.RoleAuthor, http.HandlerFunc(a.handleImageUploadURL)))
	m.HandleFunc("GET /api/images/download-url", a.handleImageDownloadURL)
}

// Handler returns the fully wrapped handler chain.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, maxRequestBody)
	if a.rateLimitRPS > 0 {
		h = RateLimit(h, a.rateLimitBurst, a.rateLimitRPS)
	}
	return obs.Instrument(h)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": "techblog-api"})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := a.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
