package service

import (
	"context"
	"testing"
	"time"

	"kart-checkout/internal/events"
	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderService_Advance_OrderedToReceived(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	poRepo := new(MockPurchaseOrderRepository)
	stockRepo := new(MockStockRepository)

	poID := uuid.New()
	po := &model.PurchaseOrder{ID: poID, Status: model.PurchaseOrderOrdered}
	items := []model.PurchaseOrderItem{
		{ProductID: "P001", Quantity: 50},
		{ProductID: "P002", Quantity: 20},
	}

	poRepo.On("GetByID", ctx, poID).Return(po, items, nil)
	poRepo.On("MarkReceived", ctx, poID, mock.Anything).Return(true, nil)
	stockRepo.On("CreditReceipt", ctx, poID.String(), []model.StockLine{
		{ProductID: "P001", Quantity: 50},
		{ProductID: "P002", Quantity: 20},
	}).Return(nil)

	svc := NewPurchaseOrderService(poRepo, stockRepo, events.NewNopPublisher(), logger)

	got, err := svc.Advance(ctx, poID, model.PurchaseOrderReceived)

	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderReceived, got.Status)
	require.NotNil(t, got.ReceivedAt)
	stockRepo.AssertExpectations(t)
}

func TestPurchaseOrderService_Advance_RepeatedReceiveIsNoOp(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	poRepo := new(MockPurchaseOrderRepository)
	stockRepo := new(MockStockRepository)

	poID := uuid.New()
	receivedAt := time.Now().Add(-time.Hour)
	po := &model.PurchaseOrder{ID: poID, Status: model.PurchaseOrderReceived, ReceivedAt: &receivedAt}

	poRepo.On("GetByID", ctx, poID).Return(po, []model.PurchaseOrderItem{
		{ProductID: "P001", Quantity: 50},
	}, nil)

	svc := NewPurchaseOrderService(poRepo, stockRepo, events.NewNopPublisher(), logger)

	got, err := svc.Advance(ctx, poID, model.PurchaseOrderReceived)

	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderReceived, got.Status)
	// No second credit: stock was already counted on the first receive.
	stockRepo.AssertNotCalled(t, "CreditReceipt")
	poRepo.AssertNotCalled(t, "MarkReceived")
}

func TestPurchaseOrderService_Advance_ConcurrentReceiveLosesGuard(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	poRepo := new(MockPurchaseOrderRepository)
	stockRepo := new(MockStockRepository)

	poID := uuid.New()
	po := &model.PurchaseOrder{ID: poID, Status: model.PurchaseOrderOrdered}

	poRepo.On("GetByID", ctx, poID).Return(po, []model.PurchaseOrderItem{
		{ProductID: "P001", Quantity: 50},
	}, nil)
	poRepo.On("MarkReceived", ctx, poID, mock.Anything).Return(false, nil)

	svc := NewPurchaseOrderService(poRepo, stockRepo, events.NewNopPublisher(), logger)

	got, err := svc.Advance(ctx, poID, model.PurchaseOrderReceived)

	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderReceived, got.Status)
	stockRepo.AssertNotCalled(t, "CreditReceipt")
}

func TestPurchaseOrderService_Advance_SkippingStateRejected(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	poRepo := new(MockPurchaseOrderRepository)
	stockRepo := new(MockStockRepository)

	poID := uuid.New()
	po := &model.PurchaseOrder{ID: poID, Status: model.PurchaseOrderPending}

	poRepo.On("GetByID", ctx, poID).Return(po, []model.PurchaseOrderItem{}, nil)

	svc := NewPurchaseOrderService(poRepo, stockRepo, events.NewNopPublisher(), logger)

	_, err := svc.Advance(ctx, poID, model.PurchaseOrderReceived)

	var transition *model.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, string(model.PurchaseOrderPending), transition.From)
	poRepo.AssertNotCalled(t, "MarkReceived")
}

func TestPurchaseOrderService_Advance_CancelHasNoStockEffect(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	poRepo := new(MockPurchaseOrderRepository)
	stockRepo := new(MockStockRepository)

	poID := uuid.New()
	po := &model.PurchaseOrder{ID: poID, Status: model.PurchaseOrderOrdered}

	poRepo.On("GetByID", ctx, poID).Return(po, []model.PurchaseOrderItem{
		{ProductID: "P001", Quantity: 50},
	}, nil)
	poRepo.On("UpdateStatus", ctx, poID, model.PurchaseOrderOrdered, model.PurchaseOrderCancelled).Return(true, nil)

	svc := NewPurchaseOrderService(poRepo, stockRepo, events.NewNopPublisher(), logger)

	got, err := svc.Advance(ctx, poID, model.PurchaseOrderCancelled)

	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderCancelled, got.Status)
	stockRepo.AssertNotCalled(t, "CreditReceipt")
}

func TestPurchaseOrderService_Advance_UnknownPurchaseOrder(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	poRepo := new(MockPurchaseOrderRepository)
	stockRepo := new(MockStockRepository)

	poID := uuid.New()
	poRepo.On("GetByID", ctx, poID).Return(nil, nil, nil)

	svc := NewPurchaseOrderService(poRepo, stockRepo, events.NewNopPublisher(), logger)

	_, err := svc.Advance(ctx, poID, model.PurchaseOrderOrdered)

	assert.ErrorIs(t, err, model.ErrPurchaseOrderNotFound)
}

func TestPurchaseOrderService_Advance_UnknownStatus(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	svc := NewPurchaseOrderService(new(MockPurchaseOrderRepository), new(MockStockRepository), events.NewNopPublisher(), logger)

	_, err := svc.Advance(ctx, uuid.New(), model.PurchaseOrderStatus("TELEPORTED"))

	assert.Error(t, err)
}
