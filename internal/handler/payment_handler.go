package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"kart-checkout/internal/model"
	"kart-checkout/internal/service"

	"github.com/rs/zerolog"
)

// PaymentHandler handles asynchronous gateway callbacks.
type PaymentHandler struct {
	service       service.CheckoutService
	callbackToken string
	logger        zerolog.Logger
}

// NewPaymentHandler creates a new payment callback handler.
func NewPaymentHandler(svc service.CheckoutService, callbackToken string, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:       svc,
		callbackToken: callbackToken,
		logger:        logger.With().Str("handler", "payment").Logger(),
	}
}

// Callback handles POST /api/payments/callback. The gateway authenticates
// with a shared token; delivery is at-least-once, so the underlying handler
// is idempotent.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Callback-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.callbackToken)) != 1 {
		h.logger.Warn().Msg("callback with invalid token rejected")
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid callback token", h.logger)
		return
	}

	var notif model.PaymentNotification
	if err := json.NewDecoder(r.Body).Decode(&notif); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid callback body", h.logger)
		return
	}

	if err := h.service.HandlePaymentCallback(r.Context(), notif); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusOK)
}
