package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"kart-checkout/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps the error taxonomy one-to-one onto HTTP responses.
// Messages stay specific: stock shortages state the remaining quantity,
// coupon failures state the reason.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var insufficient *model.InsufficientStockError
	if errors.As(err, &insufficient) {
		writeError(w, http.StatusConflict, model.ErrCodeInsufficientStock, insufficient.Error(), logger)
		return
	}

	var couponInvalid *model.CouponInvalidError
	if errors.As(err, &couponInvalid) {
		writeError(w, http.StatusUnprocessableEntity, model.ErrCodeCouponInvalid, couponInvalid.Error(), logger)
		return
	}

	var transition *model.InvalidTransitionError
	if errors.As(err, &transition) {
		writeError(w, http.StatusConflict, model.ErrCodeInvalidTransition, transition.Error(), logger)
		return
	}

	var domain *model.DomainError
	if errors.As(err, &domain) {
		status := http.StatusBadRequest
		switch domain.Code {
		case model.ErrCodeAddressNotFound,
			model.ErrCodeShippingMethodNotFound,
			model.ErrCodeOrderNotFound,
			model.ErrCodePurchaseOrderNotFound:
			status = http.StatusNotFound
		case model.ErrCodePaymentGatewayUnavailable:
			status = http.StatusServiceUnavailable
		case model.ErrCodeConcurrencyConflict:
			status = http.StatusConflict
		case model.ErrCodeInternalError:
			status = http.StatusInternalServerError
		}
		writeError(w, status, domain.Code, domain.Message, logger)
		return
	}

	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}
