package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kart-checkout/internal/auth"
	"kart-checkout/internal/middleware"
	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const operatorRole = "operator"

// authedRequest attaches caller claims the way the JWT middleware would.
func authedRequest(r *http.Request, userID, role string) *http.Request {
	return r.WithContext(middleware.WithClaims(r.Context(), &auth.Claims{UserID: userID, Role: role}))
}

func TestCheckoutHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	orderID := uuid.New()
	okResponse := &model.CheckoutResponse{
		OrderID:     orderID,
		OrderNumber: "ORD-20260829-AABBCCDD",
		Total:       decimal.NewFromInt(220000),
		PaymentURL:  "https://pay.example/session/abc",
	}

	tests := []struct {
		name           string
		body           interface{}
		mockReturn     *model.CheckoutResponse
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			body:           &model.CheckoutRequest{AddressID: uuid.New(), ShippingMethodID: uuid.New()},
			mockReturn:     okResponse,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Insufficient stock",
			body:           &model.CheckoutRequest{AddressID: uuid.New(), ShippingMethodID: uuid.New()},
			mockError:      &model.InsufficientStockError{ProductID: "P001", Requested: 5, Available: 2},
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Invalid coupon",
			body:           &model.CheckoutRequest{AddressID: uuid.New(), ShippingMethodID: uuid.New()},
			mockError:      &model.CouponInvalidError{Code: "NOPE", Reason: model.CouponExpired},
			expectedStatus: http.StatusUnprocessableEntity,
			expectService:  true,
		},
		{
			name:           "Empty cart",
			body:           &model.CheckoutRequest{AddressID: uuid.New(), ShippingMethodID: uuid.New()},
			mockError:      model.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Gateway unavailable",
			body:           &model.CheckoutRequest{AddressID: uuid.New(), ShippingMethodID: uuid.New()},
			mockError:      model.ErrPaymentGatewayUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
			expectService:  true,
		},
		{
			name:           "Malformed body",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			if tt.expectService {
				svc.On("CreateOrder", mock.Anything, "user-1", mock.Anything).Return(tt.mockReturn, tt.mockError)
			}

			h := NewCheckoutHandler(svc, operatorRole, logger)

			var body bytes.Buffer
			if s, ok := tt.body.(string); ok {
				body.WriteString(s)
			} else {
				require.NoError(t, json.NewEncoder(&body).Encode(tt.body))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/checkout", &body)
			req = authedRequest(req, "user-1", "customer")
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusCreated {
				var resp model.CheckoutResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, orderID, resp.OrderID)
				assert.Equal(t, "https://pay.example/session/abc", resp.PaymentURL)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCheckoutHandler_Create_Unauthenticated(t *testing.T) {
	logger := zerolog.Nop()
	svc := new(MockCheckoutService)
	h := NewCheckoutHandler(svc, operatorRole, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "CreateOrder")
}

func TestCheckoutHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	orderID := uuid.New()
	order := &model.Order{ID: orderID, UserID: "user-1", Status: model.OrderProcessing}
	items := []model.OrderItem{{ProductID: "P001", Quantity: 2}}

	tests := []struct {
		name           string
		callerID       string
		callerRole     string
		expectedStatus int
	}{
		{name: "Owner can read", callerID: "user-1", callerRole: "customer", expectedStatus: http.StatusOK},
		{name: "Operator can read", callerID: "admin-1", callerRole: operatorRole, expectedStatus: http.StatusOK},
		{name: "Stranger gets 404", callerID: "user-2", callerRole: "customer", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			svc.On("GetOrder", mock.Anything, orderID).Return(order, items, nil)

			h := NewCheckoutHandler(svc, operatorRole, logger)

			req := httptest.NewRequest(http.MethodGet, "/api/orders/"+orderID.String(), nil)
			req.SetPathValue("id", orderID.String())
			req = authedRequest(req, tt.callerID, tt.callerRole)
			rec := httptest.NewRecorder()

			h.GetByID(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestCheckoutHandler_GetByID_InvalidID(t *testing.T) {
	logger := zerolog.Nop()
	svc := new(MockCheckoutService)
	h := NewCheckoutHandler(svc, operatorRole, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	req = authedRequest(req, "user-1", "customer")
	rec := httptest.NewRecorder()

	h.GetByID(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetOrder")
}

func TestCheckoutHandler_Cancel(t *testing.T) {
	logger := zerolog.Nop()

	orderID := uuid.New()

	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{name: "Success", expectedStatus: http.StatusNoContent},
		{name: "Already shipped", mockError: &model.InvalidTransitionError{From: "SHIPPED", To: "CANCELLED"}, expectedStatus: http.StatusConflict},
		{name: "Not found", mockError: model.ErrOrderNotFound, expectedStatus: http.StatusNotFound},
		{name: "Lost race", mockError: model.ErrConcurrencyConflict, expectedStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			svc.On("CancelOrder", mock.Anything, orderID, "user-1").Return(tt.mockError)

			h := NewCheckoutHandler(svc, operatorRole, logger)

			req := httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID.String()+"/cancel", nil)
			req.SetPathValue("id", orderID.String())
			req = authedRequest(req, "user-1", "customer")
			rec := httptest.NewRecorder()

			h.Cancel(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestCheckoutHandler_RetryPayment(t *testing.T) {
	logger := zerolog.Nop()

	orderID := uuid.New()
	svc := new(MockCheckoutService)
	svc.On("RetryPayment", mock.Anything, orderID, "user-1").Return(&model.CheckoutResponse{
		OrderID:    orderID,
		PaymentURL: "https://pay.example/session/retry",
	}, nil)

	h := NewCheckoutHandler(svc, operatorRole, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID.String()+"/payment-session", nil)
	req.SetPathValue("id", orderID.String())
	req = authedRequest(req, "user-1", "customer")
	rec := httptest.NewRecorder()

	h.RetryPayment(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.CheckoutResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "https://pay.example/session/retry", resp.PaymentURL)
}

func TestCheckoutHandler_UpdateStatus(t *testing.T) {
	logger := zerolog.Nop()

	orderID := uuid.New()

	tests := []struct {
		name           string
		target         model.OrderStatus
		mockError      error
		expectedStatus int
	}{
		{name: "Ship order", target: model.OrderShipped, expectedStatus: http.StatusNoContent},
		{name: "Invalid transition", target: model.OrderDelivered, mockError: &model.InvalidTransitionError{From: "PENDING_PAYMENT", To: "DELIVERED"}, expectedStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			svc.On("UpdateStatus", mock.Anything, orderID, tt.target).Return(tt.mockError)

			h := NewCheckoutHandler(svc, operatorRole, logger)

			body, _ := json.Marshal(statusUpdateRequest{Status: tt.target})
			req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+orderID.String()+"/status", bytes.NewReader(body))
			req.SetPathValue("id", orderID.String())
			rec := httptest.NewRecorder()

			h.UpdateStatus(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
