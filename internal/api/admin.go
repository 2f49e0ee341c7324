package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/najdeno/najdeno/internal/model"
	"github.com/najdeno/najdeno/internal/store"
	"github.com/najdeno/najdeno/internal/upload"
)

// AdminHandler handles the moderation endpoints. All routes using it
// sit behind RequireAdmin.
type AdminHandler struct {
	DB      *sql.DB
	Uploads *upload.Store
}

// Moderation actions accepted by ItemPatch.
const (
	actionApprove     = "approve"
	actionArchive     = "archive"
	actionMarkClaimed = "mark_claimed"
	actionEdit        = "edit"
)

type itemPatchRequest struct {
	Action string `json:"action"`
	model.ItemFields
}

type claimPatchRequest struct {
	Status string `json:"status"`
}

// ItemsList handles GET /api/admin/items. Unlike the public listing it
// has no default status restriction, no pagination and no total count.
func (h *AdminHandler) ItemsList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidItemStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	items, err := store.AdminListItems(r.Context(), h.DB, status, r.URL.Query().Get("q"))
	if err != nil {
		internalError(w, "listing items", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// ItemPatch handles PATCH /api/admin/items/{id}: the approve, archive,
// mark_claimed and edit moderation actions.
func (h *AdminHandler) ItemPatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, "getting item", err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	switch req.Action {
	case actionApprove:
		err = store.SetItemStatus(r.Context(), h.DB, id, model.ItemStatusApproved)
	case actionArchive:
		err = store.SetItemStatus(r.Context(), h.DB, id, model.ItemStatusArchived)
	case actionMarkClaimed:
		err = store.SetItemStatus(r.Context(), h.DB, id, model.ItemStatusClaimed)
	case actionEdit:
		fields := req.ItemFields
		// Edits keep the original reporter; only the descriptive
		// fields are overwritten.
		fields.ReporterName = item.ReporterName
		fields.ReporterEmail = item.ReporterEmail
		if cleanErr := fields.Clean(); cleanErr != nil {
			jsonError(w, http.StatusBadRequest, cleanErr.Error())
			return
		}
		err = store.UpdateItemFields(r.Context(), h.DB, id, fields)
	default:
		jsonError(w, http.StatusBadRequest, "unknown action")
		return
	}
	if err != nil {
		internalError(w, "updating item", err)
		return
	}

	updated, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil || updated == nil {
		internalError(w, "reloading item", err)
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// ItemDelete handles DELETE /api/admin/items/{id}. Files go first
// (claim proofs, then the photo, both best-effort), the row goes last,
// so a crash mid-delete can orphan files but never rows pointing at
// deleted files.
func (h *AdminHandler) ItemDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, "getting item", err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	claims, err := store.ClaimsByItem(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, "listing item claims", err)
		return
	}
	for _, c := range claims {
		h.Uploads.Remove(c.ProofFilename)
	}
	h.Uploads.Remove(item.PhotoFilename)

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		internalError(w, "deleting item", err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// ClaimsList handles GET /api/admin/claims.
func (h *AdminHandler) ClaimsList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidClaimStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	claims, err := store.AdminListClaims(r.Context(), h.DB, status)
	if err != nil {
		internalError(w, "listing claims", err)
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claims)
}

// ClaimPatch handles PATCH /api/admin/claims/{id}. Any of the five
// statuses is accepted from any prior one.
func (h *AdminHandler) ClaimPatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req claimPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !model.ValidClaimStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	err = store.SetClaimStatus(r.Context(), h.DB, id, req.Status)
	if err == sql.ErrNoRows {
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	}
	if err != nil {
		internalError(w, "updating claim", err)
		return
	}

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil || claim == nil {
		internalError(w, "reloading claim", err)
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	items, err := store.CountItemsByStatus(r.Context(), h.DB)
	if err != nil {
		internalError(w, "counting items", err)
		return
	}
	claims, err := store.CountClaimsByStatus(r.Context(), h.DB)
	if err != nil {
		internalError(w, "counting claims", err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"items":  items,
		"claims": claims,
	})
}

// ChangePassword handles POST /api/admin/change-password.
func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetSession(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		internalError(w, "getting user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, "hashing password", err)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, string(hash)); err != nil {
		internalError(w, "updating password", err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
