package handlers

import (
	"context"
	"testing"

	"github.com/ordermesh/order-system/delivery-service/application"
	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/ordermesh/order-system/delivery-service/mocks"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/events/eventstest"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const warehouseAddress = "60 Holborn Viaduct, London EC1A 2FD, UK"

var (
	warehousePlace   = domain.Place{Longitude: -0.105, Latitude: 51.517}
	destinationPlace = domain.Place{Longitude: -0.158, Latitude: 51.523}
)

func newHandlers(t *testing.T) (*DeliveryEventHandlers, *mocks.MockDeliveryRepository, *mocks.MockRouting, *eventstest.CapturingPublisher) {
	repo := mocks.NewMockDeliveryRepository(t)
	routing := mocks.NewMockRouting(t)
	pub := eventstest.NewCapturingPublisher()

	estimate := application.NewEstimateDelivery(routing, warehouseAddress, "USD")
	h := NewDeliveryEventHandlers(
		estimate,
		application.NewStartDelivery(repo, estimate),
		application.NewCompleteDelivery(repo),
		application.NewCancelDelivery(repo),
		pub,
	)
	return h, repo, routing, pub
}

func expectRoute(routing *mocks.MockRouting, durationSeconds float64) {
	routing.On("ResolvePlace", mock.Anything, warehouseAddress).Return(warehousePlace, nil).Once()
	routing.On("ResolvePlace", mock.Anything, "221B Baker Street").Return(destinationPlace, nil).Once()
	routing.On("CalculateRoute", mock.Anything, warehousePlace, destinationPlace).
		Return(domain.RouteSummary{DurationSeconds: durationSeconds}, nil).Once()
}

func TestHandleCustomerDescribed_PublishesDeliveryEstimated(t *testing.T) {
	h, _, routing, pub := newHandlers(t)
	expectRoute(routing, 1847.4)

	detail := events.Detail{
		OrderID:    "1700000000000",
		CustomerID: "C1",
		Address:    "221B Baker Street",
	}
	err := h.HandleCustomerDescribed(context.Background(), events.New("customer-service", events.CustomerDescribed, detail))

	require.NoError(t, err)
	require.Len(t, pub.Events(), 1)
	published := pub.Last()
	assert.Equal(t, events.DeliveryEstimated, published.DetailType)
	require.NotNil(t, published.Detail.Delivery)
	assert.Equal(t, int64(1847), published.Detail.Delivery.Price.Amount)
	assert.Equal(t, "221B Baker Street", published.Detail.Delivery.Address)
	assert.Empty(t, published.Detail.Delivery.Status)
}

func TestHandleCustomerDescribed_NoAddressFails(t *testing.T) {
	h, _, _, pub := newHandlers(t)

	err := h.HandleCustomerDescribed(context.Background(), events.New("customer-service", events.CustomerDescribed, events.Detail{}))

	assert.Error(t, err)
	assert.Empty(t, pub.Events())
}

func TestHandleItemRemoved_StartsDeliveryAndPublishesDeliveryStarted(t *testing.T) {
	h, repo, routing, pub := newHandlers(t)
	expectRoute(routing, 1800)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Delivery")).Return(nil).Once()

	detail := events.Detail{
		OrderID:    "1700000000000",
		CustomerID: "C1",
		Address:    "221B Baker Street",
	}
	err := h.HandleItemRemoved(context.Background(), events.New("inventory-service", events.ItemRemoved, detail))

	require.NoError(t, err)
	require.Len(t, pub.Events(), 1)
	published := pub.Last()
	assert.Equal(t, events.DeliveryStarted, published.DetailType)
	require.NotNil(t, published.Detail.Delivery)
	assert.Equal(t, string(domain.DeliveryStatusDelivering), published.Detail.Delivery.Status)
}

func TestHandleDelivered_PublishesDeliveryWasDelivered(t *testing.T) {
	h, repo, _, pub := newHandlers(t)

	delivered := &domain.Delivery{
		CustomerID: "C1", OrderID: "1700000000000",
		Address: "221B Baker Street",
		Status:  domain.DeliveryStatusDelivered,
		Price:   models.NewMoney(1800, "USD"),
	}
	repo.On("Delivered", mock.Anything, models.ID("C1"), models.ID("1700000000000")).Return(delivered, nil).Once()

	detail := events.Detail{OrderID: "1700000000000", CustomerID: "C1"}
	err := h.HandleDelivered(context.Background(), events.New("order-service", events.Delivered, detail))

	require.NoError(t, err)
	require.Len(t, pub.Events(), 1)
	assert.Equal(t, events.DeliveryWasDelivered, pub.Last().DetailType)
	assert.Equal(t, string(domain.DeliveryStatusDelivered), pub.Last().Detail.Delivery.Status)
}

func TestHandleDelivered_AlreadyTerminalIsSilentlyDropped(t *testing.T) {
	h, repo, _, pub := newHandlers(t)

	repo.On("Delivered", mock.Anything, models.ID("C1"), models.ID("1700000000000")).
		Return(nil, ledger.ErrConditionNotMet).Once()

	detail := events.Detail{OrderID: "1700000000000", CustomerID: "C1"}
	err := h.HandleDelivered(context.Background(), events.New("order-service", events.Delivered, detail))

	require.NoError(t, err)
	assert.Empty(t, pub.Events())
}

func TestHandlePaymentCanceled_CancelsAndPublishesDeliveryWasCanceled(t *testing.T) {
	h, repo, _, pub := newHandlers(t)

	canceled := &domain.Delivery{
		CustomerID: "C1", OrderID: "1700000000000",
		Status: domain.DeliveryStatusCanceled,
		Price:  models.NewMoney(1800, "USD"),
	}
	repo.On("Cancel", mock.Anything, models.ID("C1"), models.ID("1700000000000")).Return(canceled, nil).Once()

	detail := events.Detail{OrderID: "1700000000000", CustomerID: "C1"}
	err := h.HandlePaymentCanceled(context.Background(), events.New("payment-service", events.PaymentCanceled, detail))

	require.NoError(t, err)
	require.Len(t, pub.Events(), 1)
	assert.Equal(t, events.DeliveryWasCanceled, pub.Last().DetailType)
}

func TestHandlePaymentCanceled_NothingToCancelStillPublishes(t *testing.T) {
	h, repo, _, pub := newHandlers(t)

	repo.On("Cancel", mock.Anything, models.ID("C1"), models.ID("1700000000000")).
		Return(nil, ledger.ErrConditionNotMet).Once()

	detail := events.Detail{OrderID: "1700000000000", CustomerID: "C1"}
	err := h.HandlePaymentCanceled(context.Background(), events.New("payment-service", events.PaymentCanceled, detail))

	require.NoError(t, err)
	require.Len(t, pub.Events(), 1)
	assert.Equal(t, events.DeliveryWasCanceled, pub.Last().DetailType)
	assert.Nil(t, pub.Last().Detail.Delivery)
}
