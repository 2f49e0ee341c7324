package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/najdeno/najdeno/internal/auth"
	"github.com/najdeno/najdeno/internal/model"
	"github.com/najdeno/najdeno/internal/store"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// SessionMiddleware validates the session cookie if one is present,
// checks the revocation list, and attaches the claims to the request
// context. Requests without a valid session pass through without
// claims; rejecting them is the admin gate's job. Tokens past half
// their lifetime are re-issued, giving active sessions a sliding
// expiry within the 4-hour inactivity window.
func SessionMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ValidateToken(secret, cookie.Value)
			if err != nil {
				clearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			if claims.ID != "" {
				revoked, err := store.IsSessionRevoked(r.Context(), db, claims.ID)
				if err != nil {
					slog.Error("checking session revocation", "error", err)
					clearSessionCookie(w)
					next.ServeHTTP(w, r)
					return
				}
				if revoked {
					clearSessionCookie(w)
					next.ServeHTTP(w, r)
					return
				}
			}

			if auth.ShouldRefresh(claims) {
				token, err := auth.GenerateToken(secret, claims.UserID, claims.Username, claims.Role)
				if err != nil {
					slog.Error("refreshing session token", "error", err)
				} else {
					setSessionCookie(w, token)
				}
			}

			ctx := context.WithValue(r.Context(), sessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests that do not carry an admin session.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetSession(r.Context())
		if claims == nil {
			jsonError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if claims.Role != model.RoleAdmin {
			jsonError(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSession retrieves the session claims from the context, or nil.
func GetSession(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(sessionKey).(*auth.Claims)
	return claims
}

// isAdmin reports whether the request context carries an admin session.
func isAdmin(ctx context.Context) bool {
	claims := GetSession(ctx)
	return claims != nil && claims.Role == model.RoleAdmin
}

// setSessionCookie sets the session cookie with consistent attributes.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionExpiry.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie clears the session cookie with consistent attributes.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
