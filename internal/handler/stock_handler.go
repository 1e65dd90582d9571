package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"kart-checkout/internal/model"
	"kart-checkout/internal/service"

	"github.com/rs/zerolog"
)

// StockHandler handles ledger queries and manual adjustments.
type StockHandler struct {
	service service.StockService
	logger  zerolog.Logger
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(svc service.StockService, logger zerolog.Logger) *StockHandler {
	return &StockHandler{
		service: svc,
		logger:  logger.With().Str("handler", "stock").Logger(),
	}
}

// History handles GET /api/stock-history. Filterable by product and date
// range, paginated with limit/offset.
func (h *StockHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.StockHistoryFilter{
		ProductID: q.Get("productId"),
	}

	if v := q.Get("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "from must be RFC3339", h.logger)
			return
		}
		filter.From = &ts
	}

	if v := q.Get("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "to must be RFC3339", h.logger)
			return
		}
		filter.To = &ts
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "offset must be a non-negative integer", h.logger)
			return
		}
		filter.Offset = n
	}

	entries, err := h.service.History(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if entries == nil {
		entries = []model.StockHistoryEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// adjustRequest is the payload for manual stock adjustments.
type adjustRequest struct {
	ProductID string `json:"productId"`
	Delta     int    `json:"delta"`
	Note      string `json:"note"`
}

// Adjust handles POST /api/stock-adjustments. Restricted to operators by
// the router.
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "productId is required", h.logger)
		return
	}

	if err := h.service.Adjust(r.Context(), req.ProductID, req.Delta, req.Note); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
