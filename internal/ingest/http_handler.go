package ingest

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shelfsnap/internal/httpx"
	"shelfsnap/internal/library"
	"shelfsnap/internal/platform/vision"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type analyzeRequest struct {
	Image string `json:"image"`
}

type analyzeResponse struct {
	Books    []library.Book `json:"books"`
	UploadID string         `json:"uploadId"`
}

// Analyze handles POST /api/analyze
// @Summary Analyze a bookshelf photo
// @Description Extract books from an uploaded image, resolve them against the catalog and add them to the owner's library
// @Tags ingest
// @Accept json
// @Produce json
// @Param request body analyzeRequest true "Base64-encoded image"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/analyze [post]
func (h *HTTPHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	owner := httpx.OwnerFrom(r)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if req.Image == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Image data is required", nil)
		return
	}

	// Clients may send a full data URL; only the payload matters.
	payload := req.Image
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		payload = payload[idx+len(";base64,"):]
	}
	image, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Image data is not valid base64", nil)
		return
	}

	result, err := h.svc.Analyze(r.Context(), image, owner)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		case errors.Is(err, ErrQuotaExceeded):
			httpx.JSONError(w, r, http.StatusForbidden, "QUOTA_EXCEEDED", err.Error(), nil)
		case errors.Is(err, vision.ErrExtractionFailed):
			httpx.JSONError(w, r, http.StatusInternalServerError, "EXTRACTION_FAILED", err.Error(), nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	books := result.Books
	if books == nil {
		books = []library.Book{}
	}
	httpx.JSONSuccess(w, r, analyzeResponse{Books: books, UploadID: result.UploadID}, nil)
}
