package handler

import (
	"encoding/json"
	"net/http"

	"kart-checkout/internal/model"
	"kart-checkout/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PurchaseOrderHandler handles inbound purchase order transitions.
type PurchaseOrderHandler struct {
	service service.PurchaseOrderService
	logger  zerolog.Logger
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(svc service.PurchaseOrderService, logger zerolog.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		service: svc,
		logger:  logger.With().Str("handler", "purchase_order").Logger(),
	}
}

// advanceRequest is the payload for purchase order transitions.
type advanceRequest struct {
	Status model.PurchaseOrderStatus `json:"status"`
}

// Advance handles POST /api/purchase-orders/{id}/advance. Restricted to
// operators by the router.
func (h *PurchaseOrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	poID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid purchase order ID format", h.logger)
		return
	}

	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	po, err := h.service.Advance(r.Context(), poID, req.Status)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, po)
}
