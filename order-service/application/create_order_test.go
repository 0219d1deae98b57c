package application

import (
	"context"
	"testing"
	"time"

	"github.com/ordermesh/order-system/order-service/domain"
	"github.com/ordermesh/order-system/order-service/mocks"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/events/eventstest"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_Execute(t *testing.T) {
	pub := eventstest.NewCapturingPublisher()
	uc := NewCreateOrder(pub, "order-service").
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) })

	result, err := uc.Execute(context.Background(), CreateOrderCommand{CustomerID: "C1", ItemID: "I1"})

	require.NoError(t, err)
	assert.Equal(t, models.ID("1700000000000"), result.OrderID)

	require.Len(t, pub.Events(), 1)
	published := pub.Last()
	assert.Equal(t, events.OrderCreated, published.DetailType)
	assert.Equal(t, "order-service", published.Source)
	assert.Equal(t, models.ID("1700000000000"), published.Detail.OrderID)
	assert.Equal(t, models.ID("C1"), published.Detail.CustomerID)
	assert.Equal(t, models.ID("I1"), published.Detail.ItemID)
}

func TestCreateOrder_Execute_Validation(t *testing.T) {
	pub := eventstest.NewCapturingPublisher()
	uc := NewCreateOrder(pub, "order-service")

	_, err := uc.Execute(context.Background(), CreateOrderCommand{CustomerID: "C1"})

	assert.Error(t, err)
	assert.Empty(t, pub.Events())
}

func TestCancelOrder_Execute_PublishesOrderCanceledWithSnapshot(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	pub := eventstest.NewCapturingPublisher()

	order := &domain.Order{
		OrderID: "1700000000000", CustomerID: "C1", ItemID: "I1",
		Status:          domain.OrderStatusPaid,
		PaymentID:       "P1",
		DeliveryAddress: "221B Baker Street",
	}
	repo.On("Find", mock.Anything, models.ID("C1"), models.ID("1700000000000")).Return(order, nil).Once()

	uc := NewCancelOrder(repo, pub, "order-service")
	_, err := uc.Execute(context.Background(), CancelOrderCommand{CustomerID: "C1", OrderID: "1700000000000"})

	require.NoError(t, err)
	require.Len(t, pub.Events(), 1)
	published := pub.Last()
	assert.Equal(t, events.OrderCanceled, published.DetailType)
	require.NotNil(t, published.Detail.Order)
	assert.Equal(t, models.ID("P1"), published.Detail.Order.PaymentID)
	assert.Equal(t, models.ID("I1"), published.Detail.ItemID)
}

func TestCancelOrder_Execute_NotCancelable(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	pub := eventstest.NewCapturingPublisher()

	order := &domain.Order{
		OrderID: "1700000000000", CustomerID: "C1",
		Status: domain.OrderStatusPaymentFailed,
	}
	repo.On("Find", mock.Anything, models.ID("C1"), models.ID("1700000000000")).Return(order, nil).Once()

	uc := NewCancelOrder(repo, pub, "order-service")
	_, err := uc.Execute(context.Background(), CancelOrderCommand{CustomerID: "C1", OrderID: "1700000000000"})

	require.Error(t, err)
	assert.True(t, ledger.IsBusinessOutcome(err))
	assert.Empty(t, pub.Events())
}

func TestConfirmDelivered_Execute_PublishesDelivered(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	pub := eventstest.NewCapturingPublisher()

	order := &domain.Order{
		OrderID: "1700000000000", CustomerID: "C1", ItemID: "I1",
		Status: domain.OrderStatusDelivering,
	}
	repo.On("Find", mock.Anything, models.ID("C1"), models.ID("1700000000000")).Return(order, nil).Once()

	uc := NewConfirmDelivered(repo, pub, "order-service")
	_, err := uc.Execute(context.Background(), ConfirmDeliveredCommand{CustomerID: "C1", OrderID: "1700000000000"})

	require.NoError(t, err)
	require.Len(t, pub.Events(), 1)
	assert.Equal(t, events.Delivered, pub.Last().DetailType)
}

func TestConfirmDelivered_Execute_NotDelivering(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	pub := eventstest.NewCapturingPublisher()

	order := &domain.Order{OrderID: "1700000000000", CustomerID: "C1", Status: domain.OrderStatusPaid}
	repo.On("Find", mock.Anything, models.ID("C1"), models.ID("1700000000000")).Return(order, nil).Once()

	uc := NewConfirmDelivered(repo, pub, "order-service")
	_, err := uc.Execute(context.Background(), ConfirmDeliveredCommand{CustomerID: "C1", OrderID: "1700000000000"})

	require.Error(t, err)
	assert.True(t, ledger.IsBusinessOutcome(err))
	assert.Empty(t, pub.Events())
}
