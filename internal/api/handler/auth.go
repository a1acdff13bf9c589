// internal/api/handler/auth.go
package handler

import (
	"net/http"

	"txledger/internal/api/types"
	"txledger/internal/domain"
	"txledger/internal/security"
	"txledger/internal/service"
	"txledger/internal/util"
)

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	*Responder
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc service.AuthService, rp *Responder) *AuthHandler {
	return &AuthHandler{Responder: rp, service: svc}
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of a token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles account creation.
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	verr := util.NewValidationError()
	if msg := domain.ValidateEmail(req.Email); msg != "" {
		verr.Add("email", msg)
	}
	if msg := domain.ValidatePasswordLength(req.Password); msg != "" {
		verr.Add("password", msg)
	} else if !security.CheckPasswordStrength(req.Password) {
		verr.Add("password", "must contain at least one uppercase letter and one digit")
	}
	if err := verr.OrNil(); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, types.NewUserResponse(user))
}

// Login exchanges credentials for tokens. Credentials come from the JSON
// body, or from email and password query parameters when the body is empty.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if r.ContentLength == 0 && r.URL.Query().Has("email") {
		req.Email = r.URL.Query().Get("email")
		req.Password = r.URL.Query().Get("password")
	} else if err := decodeJSON(w, r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	verr := util.NewValidationError()
	if req.Email == "" {
		verr.Add("email", "is required")
	}
	if req.Password == "" {
		verr.Add("password", "is required")
	}
	if err := verr.OrNil(); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, types.NewTokenResponse(pair))
}

// Refresh issues a new token pair from a refresh token.
// POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	if req.RefreshToken == "" {
		verr := util.NewValidationError()
		verr.Add("refresh_token", "is required")
		h.RespondWithError(w, r, verr)
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, types.NewTokenResponse(pair))
}

// Me returns the authenticated user's profile.
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.RespondWithError(w, r, util.ErrUnauthorized)
		return
	}
	h.RespondWithJSON(w, http.StatusOK, types.NewUserResponse(user))
}
