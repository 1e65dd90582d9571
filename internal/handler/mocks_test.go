package handler

import (
	"context"
	"time"

	"kart-checkout/internal/model"
	"kart-checkout/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CreateOrder(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func (m *MockCheckoutService) RetryPayment(ctx context.Context, orderID uuid.UUID, userID string) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func (m *MockCheckoutService) HandlePaymentCallback(ctx context.Context, notif model.PaymentNotification) error {
	args := m.Called(ctx, notif)
	return args.Error(0)
}

func (m *MockCheckoutService) CancelOrder(ctx context.Context, orderID uuid.UUID, userID string) error {
	args := m.Called(ctx, orderID, userID)
	return args.Error(0)
}

func (m *MockCheckoutService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target model.OrderStatus) error {
	args := m.Called(ctx, orderID, target)
	return args.Error(0)
}

func (m *MockCheckoutService) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

// MockCouponService is a mock implementation of CouponService.
type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Validate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*model.Coupon, error) {
	args := m.Called(ctx, code, subtotal, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponService) Preview(ctx context.Context, code string, subtotal decimal.Decimal) (*service.CouponPreview, error) {
	args := m.Called(ctx, code, subtotal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CouponPreview), args.Error(1)
}

// MockStockService is a mock implementation of StockService.
type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) History(ctx context.Context, filter model.StockHistoryFilter) ([]model.StockHistoryEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StockHistoryEntry), args.Error(1)
}

func (m *MockStockService) Adjust(ctx context.Context, productID string, delta int, note string) error {
	args := m.Called(ctx, productID, delta, note)
	return args.Error(0)
}

// MockPurchaseOrderService is a mock implementation of PurchaseOrderService.
type MockPurchaseOrderService struct {
	mock.Mock
}

func (m *MockPurchaseOrderService) Advance(ctx context.Context, poID uuid.UUID, target model.PurchaseOrderStatus) (*model.PurchaseOrder, error) {
	args := m.Called(ctx, poID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseOrder), args.Error(1)
}
