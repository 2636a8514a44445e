package library

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"shelfsnap/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// List handles GET /api/books
// @Summary List the owner's library
// @Description All books for the authenticated owner, newest first. An optional q parameter filters by title or author substring.
// @Tags library
// @Produce json
// @Param q query string false "Substring filter on title or author"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := httpx.OwnerFrom(r)

	var (
		books []Book
		err   error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		books, err = h.svc.Search(r.Context(), q, owner)
	} else {
		books, err = h.svc.List(r.Context(), owner)
	}
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	if books == nil {
		books = []Book{}
	}
	httpx.JSONSuccess(w, r, books, nil)
}

// Details handles GET /api/books/{id}/details
// @Summary Get catalog details for a book
// @Description Full catalog entry behind a stored record. 404 when the record is absent, foreign, or has no catalog id.
// @Tags library
// @Produce json
// @Param id path int true "Book id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/books/{id}/details [get]
func (h *HTTPHandler) Details(w http.ResponseWriter, r *http.Request) {
	owner := httpx.OwnerFrom(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book id", nil)
		return
	}

	details, err := h.svc.Details(r.Context(), id, owner)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, details, nil)
}

// Delete handles DELETE /api/books/{id}
// @Summary Delete one book
// @Description Removes a single record. Absent or foreign ids are a no-op.
// @Tags library
// @Param id path int true "Book id"
// @Success 204
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := httpx.OwnerFrom(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book id", nil)
		return
	}

	if err := h.svc.Delete(r.Context(), id, owner); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONNoContent(w)
}

// UndoUpload handles DELETE /api/uploads/{uploadId}
// @Summary Undo an upload
// @Description Removes every record created by one ingestion call. Idempotent.
// @Tags library
// @Param uploadId path string true "Upload id"
// @Success 204
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/uploads/{uploadId} [delete]
func (h *HTTPHandler) UndoUpload(w http.ResponseWriter, r *http.Request) {
	owner := httpx.OwnerFrom(r)

	uploadID := r.PathValue("uploadId")
	if uploadID == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Upload id is required", nil)
		return
	}

	if err := h.svc.UndoUpload(r.Context(), uploadID, owner); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONNoContent(w)
}

// Export handles GET /api/export
// @Summary Export the library as CSV
// @Description CSV attachment with one row per book, newest first.
// @Tags library
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/export [get]
func (h *HTTPHandler) Export(w http.ResponseWriter, r *http.Request) {
	owner := httpx.OwnerFrom(r)

	var buf bytes.Buffer
	if err := h.svc.ExportCSV(r.Context(), owner, &buf); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename=my-library.csv`)
	_, _ = w.Write(buf.Bytes())
}
