package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/techblog/internal/common"
	"github.com/dmitrijs2005/techblog/internal/obs"
	"github.com/dmitrijs2005/techblog/internal/server/models"
	"github.com/dmitrijs2005/techblog/internal/server/services"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type registerResponse struct {
	ID string `json:"id"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	a.register(w, r, models.RoleUser)
}

func (a *API) handleRegisterAuthor(w http.ResponseWriter, r *http.Request) {
	a.register(w, r, models.RoleAuthor)
}

func (a *API) register(w http.ResponseWriter, r *http.Request, role models.Role) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	id, err := a.authSvc.Register(r.Context(), services.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, role)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{ID: id})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	a.login(w, r, "")
}

// handleLoginAdmin is the admin console entry point: same credentials flow,
// but only Admin accounts may pass.
func (a *API) handleLoginAdmin(w http.ResponseWriter, r *http.Request) {
	a.login(w, r, models.RoleAdmin)
}

func (a *API) login(w http.ResponseWriter, r *http.Request, requiredRole models.Role) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	resp, err := a.authSvc.Login(r.Context(), services.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		SourceIP: clientIP(r),
	}, requiredRole)
	if err != nil {
		obs.ObserveLogin(loginOutcome(err))
		writeServiceError(w, err)
		return
	}

	obs.ObserveLogin("success")
	writeJSON(w, http.StatusOK, toTokenResponse(resp))
}

func (a *API) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	resp, err := a.authSvc.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTokenResponse(resp))
}

// handleRevokeToken revokes the refresh token of the calling account. The
// username comes from the verified access token, so a caller can only log
// itself out.
func (a *API) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	if err := a.authSvc.RevokeToken(r.Context(), claims.Username); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toTokenResponse(resp *services.AuthResponse) tokenResponse {
	return tokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
		Username:     resp.Username,
		Role:         string(resp.Role),
	}
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, common.ErrTemporarilyLocked):
		return "locked"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, common.ErrRoleMismatch):
		return "role_mismatch"
	default:
		return "error"
	}
}
