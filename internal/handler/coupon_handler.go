package handler

import (
	"encoding/json"
	"net/http"

	"kart-checkout/internal/model"
	"kart-checkout/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CouponHandler handles coupon validation previews.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(svc service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: svc,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// validateCouponRequest is the payload for coupon validation.
type validateCouponRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Validate handles POST /api/coupons/validate.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.Code == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "code is required", h.logger)
		return
	}

	preview, err := h.service.Preview(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}
