package application

import (
	"context"
	"testing"

	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/ordermesh/order-system/delivery-service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const warehouseAddress = "60 Holborn Viaduct, London EC1A 2FD, UK"

var (
	warehousePlace   = domain.Place{Longitude: -0.105, Latitude: 51.517}
	destinationPlace = domain.Place{Longitude: -0.158, Latitude: 51.523}
)

func TestEstimateDelivery_PriceDerivedFromRouteDuration(t *testing.T) {
	routing := mocks.NewMockRouting(t)
	routing.On("ResolvePlace", mock.Anything, warehouseAddress).Return(warehousePlace, nil).Once()
	routing.On("ResolvePlace", mock.Anything, "221B Baker Street").Return(destinationPlace, nil).Once()
	routing.On("CalculateRoute", mock.Anything, warehousePlace, destinationPlace).
		Return(domain.RouteSummary{DurationSeconds: 1847.4}, nil).Once()

	uc := NewEstimateDelivery(routing, warehouseAddress, "USD")

	delivery, err := uc.Execute(context.Background(), EstimateDeliveryQuery{
		CustomerID: "C1",
		OrderID:    "1700000000000",
		Address:    "221B Baker Street",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1847), delivery.Price.Amount)
	assert.Equal(t, "USD", delivery.Price.Currency)
	// A quote persists nothing and has no status yet.
	assert.Empty(t, delivery.Status)
}

func TestEstimateDelivery_WarehouseResolvedOnce(t *testing.T) {
	routing := mocks.NewMockRouting(t)
	routing.On("ResolvePlace", mock.Anything, warehouseAddress).Return(warehousePlace, nil).Once()
	routing.On("ResolvePlace", mock.Anything, "221B Baker Street").Return(destinationPlace, nil).Times(3)
	routing.On("CalculateRoute", mock.Anything, warehousePlace, destinationPlace).
		Return(domain.RouteSummary{DurationSeconds: 1800}, nil).Times(3)

	uc := NewEstimateDelivery(routing, warehouseAddress, "USD")

	for i := 0; i < 3; i++ {
		_, err := uc.Quote(context.Background(), "221B Baker Street")
		require.NoError(t, err)
	}
}

func TestEstimateDelivery_WarehouseResolutionRetriedAfterFailure(t *testing.T) {
	routing := mocks.NewMockRouting(t)
	routing.On("ResolvePlace", mock.Anything, warehouseAddress).
		Return(domain.Place{}, assert.AnError).Once()
	routing.On("ResolvePlace", mock.Anything, warehouseAddress).Return(warehousePlace, nil).Once()
	routing.On("ResolvePlace", mock.Anything, "221B Baker Street").Return(destinationPlace, nil).Once()
	routing.On("CalculateRoute", mock.Anything, warehousePlace, destinationPlace).
		Return(domain.RouteSummary{DurationSeconds: 1800}, nil).Once()

	uc := NewEstimateDelivery(routing, warehouseAddress, "USD")

	_, err := uc.Quote(context.Background(), "221B Baker Street")
	assert.Error(t, err)

	price, err := uc.Quote(context.Background(), "221B Baker Street")
	require.NoError(t, err)
	assert.Equal(t, int64(1800), price.Amount)
}

func TestEstimateDelivery_MissingAddress(t *testing.T) {
	uc := NewEstimateDelivery(mocks.NewMockRouting(t), warehouseAddress, "USD")

	_, err := uc.Execute(context.Background(), EstimateDeliveryQuery{CustomerID: "C1", OrderID: "1700000000000"})
	assert.Error(t, err)
}

func TestStartDelivery_UsesSameQuoteAsEstimate(t *testing.T) {
	routing := mocks.NewMockRouting(t)
	routing.On("ResolvePlace", mock.Anything, warehouseAddress).Return(warehousePlace, nil).Once()
	routing.On("ResolvePlace", mock.Anything, "221B Baker Street").Return(destinationPlace, nil).Times(2)
	routing.On("CalculateRoute", mock.Anything, warehousePlace, destinationPlace).
		Return(domain.RouteSummary{DurationSeconds: 1847.4}, nil).Times(2)

	repo := mocks.NewMockDeliveryRepository(t)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Delivery")).Return(nil).Once()

	estimate := NewEstimateDelivery(routing, warehouseAddress, "USD")

	quoted, err := estimate.Quote(context.Background(), "221B Baker Street")
	require.NoError(t, err)

	started, err := NewStartDelivery(repo, estimate).Execute(context.Background(), StartDeliveryCommand{
		CustomerID: "C1",
		OrderID:    "1700000000000",
		Address:    "221B Baker Street",
	})
	require.NoError(t, err)

	assert.Equal(t, quoted, started.Price)
	assert.Equal(t, domain.DeliveryStatusDelivering, started.Status)
}
