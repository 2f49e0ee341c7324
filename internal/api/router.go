package api

import (
	"database/sql"
	"net/http"

	"github.com/najdeno/najdeno/internal/upload"
)

// requestsPerMinute is the per-client budget for the rate-limited routes.
const requestsPerMinute = 60

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, secret string, uploads *upload.Store) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{DB: db, Uploads: uploads}
	adminHandler := &AdminHandler{DB: db, Uploads: uploads}
	authHandler := &AuthHandler{DB: db, Secret: secret}

	session := SessionMiddleware(secret, db)
	limited := newRateLimiter(requestsPerMinute).Middleware

	admin := func(h http.HandlerFunc) http.Handler {
		return limited(session(RequireAdmin(h)))
	}

	// Public: search and approved-item reads. The detail endpoint runs
	// with session context so an admin can inspect unapproved items.
	mux.Handle("GET /api/items", http.HandlerFunc(itemsHandler.List))
	mux.Handle("GET /api/items/{id}", session(http.HandlerFunc(itemsHandler.Get)))

	// Public mutating endpoints are rate-limited regardless of session.
	mux.Handle("POST /api/items", limited(http.HandlerFunc(itemsHandler.Submit)))
	mux.Handle("POST /api/items/{id}/claim", limited(http.HandlerFunc(itemsHandler.SubmitClaim)))

	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", session(http.HandlerFunc(authHandler.Logout)))

	// Admin moderation surface.
	mux.Handle("GET /api/admin/items", admin(adminHandler.ItemsList))
	mux.Handle("PATCH /api/admin/items/{id}", admin(adminHandler.ItemPatch))
	mux.Handle("DELETE /api/admin/items/{id}", admin(adminHandler.ItemDelete))
	mux.Handle("GET /api/admin/claims", admin(adminHandler.ClaimsList))
	mux.Handle("PATCH /api/admin/claims/{id}", admin(adminHandler.ClaimPatch))
	mux.Handle("GET /api/admin/stats", admin(adminHandler.Stats))
	mux.Handle("POST /api/admin/change-password", admin(adminHandler.ChangePassword))

	// Stored uploads, served read-only under their generated names.
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(uploads.Dir()))))

	return mux
}
