package billing

import (
	"encoding/json"
	"io"
	"net/http"

	"shelfsnap/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Webhook handles POST /api/webhook
// @Summary Payment processor webhook
// @Description Verifies the event signature and applies subscription state changes.
// @Tags billing
// @Accept json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /api/webhook [post]
func (h *HTTPHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Missing webhook signature", nil)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Cannot read webhook payload", nil)
		return
	}

	if err := h.svc.HandleWebhook(r.Context(), payload, sig); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "WEBHOOK_ERROR", err.Error(), nil)
		return
	}
	httpx.JSONSuccess(w, r, map[string]bool{"received": true}, nil)
}

type checkoutRequest struct {
	Email string `json:"email"`
}

// CreateCheckoutSession handles POST /api/create-checkout-session
// @Summary Start a subscription checkout
// @Tags billing
// @Accept json
// @Produce json
// @Param request body checkoutRequest true "Billing email"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/create-checkout-session [post]
func (h *HTTPHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	owner := httpx.OwnerFrom(r)

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Email is required", nil)
		return
	}

	url, err := h.svc.CreateCheckoutSession(r.Context(), owner, req.Email)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Error creating checkout session", nil)
		return
	}
	httpx.JSONSuccess(w, r, map[string]string{"url": url}, nil)
}

// Status handles GET /api/subscription
// @Summary Subscription status
// @Tags billing
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/subscription [get]
func (h *HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	owner := httpx.OwnerFrom(r)

	sub, err := h.svc.Subscription(r.Context(), owner)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{
		"isSubscribed": sub.Active(),
		"subscription": sub,
	}, nil)
}
