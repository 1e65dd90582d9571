package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kart-checkout/internal/model"
	"kart-checkout/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCouponHandler_Validate(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		body           interface{}
		mockReturn     *service.CouponPreview
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Valid coupon",
			body:           map[string]interface{}{"code": "SAVE20", "subtotal": "500"},
			mockReturn:     &service.CouponPreview{Valid: true, Discount: decimal.NewFromInt(100)},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid coupon still answers 200",
			body:           map[string]interface{}{"code": "EXPIRED", "subtotal": "500"},
			mockReturn:     &service.CouponPreview{Valid: false, Discount: decimal.Zero, Reason: model.CouponExpired},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Missing code",
			body:           map[string]interface{}{"subtotal": "500"},
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
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
			svc := new(MockCouponService)
			if tt.expectService {
				svc.On("Preview", mock.Anything, mock.Anything, mock.Anything).Return(tt.mockReturn, nil)
			}

			h := NewCouponHandler(svc, logger)

			var body bytes.Buffer
			if s, ok := tt.body.(string); ok {
				body.WriteString(s)
			} else {
				require.NoError(t, json.NewEncoder(&body).Encode(tt.body))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/coupons/validate", &body)
			rec := httptest.NewRecorder()

			h.Validate(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectService {
				var preview service.CouponPreview
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
				assert.Equal(t, tt.mockReturn.Valid, preview.Valid)
			}
			svc.AssertExpectations(t)
		})
	}
}
