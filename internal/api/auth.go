package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/najdeno/najdeno/internal/auth"
	"github.com/najdeno/najdeno/internal/store"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	DB     *sql.DB
	Secret string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. A successful login sets the
// session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		internalError(w, "getting user", err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.Secret, user.ID, user.Username, user.Role)
	if err != nil {
		internalError(w, "generating session token", err)
		return
	}

	setSessionCookie(w, token)

	slog.Info("user logged in", "user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{
		"username": user.Username,
		"role":     user.Role,
	})
}

// Logout handles POST /api/auth/logout: the session's JTI joins the
// revocation list and the cookie is cleared. Safe to call without a
// session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())
	if claims != nil && claims.ID != "" && claims.ExpiresAt != nil {
		if err := store.RevokeSession(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
			internalError(w, "revoking session", err)
			return
		}
		slog.Info("user logged out", "user", claims.Username)
	}

	clearSessionCookie(w)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
