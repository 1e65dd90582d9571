package router

import (
	"net/http"

	"kart-checkout/internal/auth"
	"kart-checkout/internal/handler"
	"kart-checkout/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	checkoutHandler *handler.CheckoutHandler,
	paymentHandler *handler.PaymentHandler,
	couponHandler *handler.CouponHandler,
	purchaseHandler *handler.PurchaseOrderHandler,
	stockHandler *handler.StockHandler,
	verifier *auth.Verifier,
	operatorRole string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Checkout and order routes
	mux.HandleFunc("POST /api/checkout", checkoutHandler.Create)
	mux.HandleFunc("GET /api/orders/{id}", checkoutHandler.GetByID)
	mux.HandleFunc("POST /api/orders/{id}/cancel", checkoutHandler.Cancel)
	mux.HandleFunc("POST /api/orders/{id}/payment-session", checkoutHandler.RetryPayment)

	// Coupon preview
	mux.HandleFunc("POST /api/coupons/validate", couponHandler.Validate)

	// Gateway callback (token-authenticated, not JWT)
	mux.HandleFunc("POST /api/payments/callback", paymentHandler.Callback)

	// Stock ledger
	mux.HandleFunc("GET /api/stock-history", stockHandler.History)

	// Operator-only routes
	operator := middleware.RequireRole(operatorRole, logger)
	mux.Handle("PATCH /api/orders/{id}/status", operator(http.HandlerFunc(checkoutHandler.UpdateStatus)))
	mux.Handle("POST /api/purchase-orders/{id}/advance", operator(http.HandlerFunc(purchaseHandler.Advance)))
	mux.Handle("POST /api/stock-adjustments", operator(http.HandlerFunc(stockHandler.Adjust)))

	// Apply middleware in order: Recovery -> Logging -> CORS -> JWTAuth
	var h http.Handler = mux
	h = middleware.JWTAuth(verifier, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
