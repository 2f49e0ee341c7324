package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/najdeno/najdeno/internal/model"
	"github.com/najdeno/najdeno/internal/store"
	"github.com/najdeno/najdeno/internal/upload"
)

// multipartFormLimit bounds submission request bodies: the upload
// ceiling plus slack for the text fields and multipart framing.
const multipartFormLimit = upload.MaxFileSize + 64<<10

// Pagination bounds for the public listing.
const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// ItemsHandler handles the public item and claim endpoints.
type ItemsHandler struct {
	DB      *sql.DB
	Uploads *upload.Store
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.SearchFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Location: q.Get("location"),
		Status:   q.Get("status"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Sort:     q.Get("sort"),
		Page:     1,
		Limit:    defaultPageSize,
	}

	// The public listing shows approved items unless the caller asks
	// for another status explicitly.
	if filter.Status == "" {
		filter.Status = model.ItemStatusApproved
	} else if !model.ValidItemStatus(filter.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			jsonError(w, http.StatusBadRequest, "invalid page")
			return
		}
		filter.Page = n
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > maxPageSize {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	items, total, err := store.SearchItems(r.Context(), h.DB, filter)
	if err != nil {
		internalError(w, "searching items", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"page":  filter.Page,
		"limit": filter.Limit,
		"total": total,
		"items": items,
	})
}

// Get handles GET /api/items/{id}. Items outside the approved status
// are visible to admin sessions only.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	if item.Status != model.ItemStatusApproved && !isAdmin(r.Context()) {
		jsonError(w, http.StatusForbidden, "item not available")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Submit handles POST /api/items (multipart).
func (h *ItemsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	photoName, ok := h.parseSubmission(w, r, "photo")
	if !ok {
		return
	}

	fields := model.ItemFields{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Category:      r.FormValue("category"),
		LocationFound: r.FormValue("location_found"),
		DateFound:     r.FormValue("date_found"),
		ReporterName:  r.FormValue("reporter_name"),
		ReporterEmail: r.FormValue("reporter_email"),
	}
	if err := fields.Clean(); err != nil {
		// The photo hit the disk before validation; don't orphan it.
		h.Uploads.Remove(photoName)
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, fields, photoName)
	if err != nil {
		h.Uploads.Remove(photoName)
		internalError(w, "creating item", err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{
		"id":     item.ID,
		"status": item.Status,
	})
}

// SubmitClaim handles POST /api/items/{id}/claim (multipart). Claims
// against archived items are rejected as not-found, indistinguishable
// from an absent item.
func (h *ItemsHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
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
	if item == nil || item.Status == model.ItemStatusArchived {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	proofName, ok := h.parseSubmission(w, r, "proof")
	if !ok {
		return
	}

	fields := model.ClaimFields{
		ClaimantName:  r.FormValue("claimant_name"),
		ClaimantEmail: r.FormValue("claimant_email"),
		StudentID:     r.FormValue("student_id"),
		Message:       r.FormValue("message"),
	}
	if err := fields.Clean(); err != nil {
		h.Uploads.Remove(proofName)
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claim, err := store.CreateClaim(r.Context(), h.DB, item.ID, fields, proofName)
	if err != nil {
		h.Uploads.Remove(proofName)
		internalError(w, "creating claim", err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{
		"id":     claim.ID,
		"status": claim.Status,
	})
}

// parseSubmission parses a multipart submission body and stores its
// optional file part, writing the error response itself when the
// request is unacceptable. Upload constraints are enforced before any
// record is touched, so a rejected file never leaves an orphan row and
// a rejected row never leaves an orphan file.
func (h *ItemsHandler) parseSubmission(w http.ResponseWriter, r *http.Request, fileField string) (string, bool) {
	if r.ContentLength > multipartFormLimit {
		jsonError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return "", false
	}
	r.Body = http.MaxBytesReader(w, r.Body, multipartFormLimit)
	if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			jsonError(w, http.StatusBadRequest, "invalid multipart form")
		}
		return "", false
	}

	file, header, err := r.FormFile(fileField)
	if err == http.ErrMissingFile {
		return "", true
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid file upload")
		return "", false
	}
	defer file.Close()

	name, err := h.Uploads.Save(file, header.Filename)
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, "file exceeds the 5 MiB limit")
		return "", false
	case errors.Is(err, upload.ErrUnsupportedType):
		jsonError(w, http.StatusUnsupportedMediaType, "file must be a JPEG, PNG or WEBP image")
		return "", false
	case err != nil:
		internalError(w, "storing upload", err)
		return "", false
	}

	return name, true
}
