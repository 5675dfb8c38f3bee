package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/application/user"
	"github.com/go-auth-api/internal/application/verification"
	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/validate"
	"github.com/go-auth-api/internal/transport/http/middleware"
)

const refreshCookieName = "refresh_token"

// AuthHandler handles signup, login, token refresh and email verification.
type AuthHandler struct {
	users        user.Service
	backend      *auth.Backend
	flow         *verification.Flow
	secureCookie bool
}

func NewAuthHandler(users user.Service, backend *auth.Backend, flow *verification.Flow, secureCookie bool) *AuthHandler {
	return &AuthHandler{users: users, backend: backend, flow: flow, secureCookie: secureCookie}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			writeError(w, http.StatusConflict, "user already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, UserEnvelope{User: u})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.backend.AuthenticateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
		case errors.Is(err, domain.ErrInactiveAccount):
			writeError(w, http.StatusBadRequest, domain.ErrInactiveAccount.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	access, refresh, err := h.backend.IssuePair(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.setRefreshCookie(w, refresh)
	writeJSON(w, http.StatusOK, TokenEnvelope{
		AccessToken:  access,
		TokenType:    "bearer",
		RefreshToken: refresh,
	})
}

// Refresh validates the refresh cookie and mints a new access token only.
// Every rejection is a plain 401 — the client cannot tell an expired token
// from a tampered one.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	u, err := h.backend.Resolve(r.Context(), h.backend.Refresh(), cookie.Value)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	access, err := h.backend.Issue(u, h.backend.Access())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{AccessToken: access, TokenType: "bearer"})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.flow.Complete(r.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidOrExpiredCode):
			writeError(w, http.StatusBadRequest, domain.ErrInvalidOrExpiredCode.Error())
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, domain.ErrStoreUnavailable):
			writeError(w, http.StatusServiceUnavailable, "temporarily unavailable, please retry")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Status: "verified"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}

// setRefreshCookie binds the refresh token to its cookie transport. MaxAge
// matches the token lifetime so the cookie and the signature expire together.
func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/v1/auth",
		MaxAge:   int(h.backend.Refresh().Lifetime / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
