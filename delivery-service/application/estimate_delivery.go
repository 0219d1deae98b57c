package application

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/ordermesh/order-system/shared/models"
)

// EstimateDeliveryQuery carries the destination to quote a delivery for.
type EstimateDeliveryQuery struct {
	CustomerID models.ID
	OrderID    models.ID
	Address    string
}

// EstimateDelivery prices a delivery by routing from the warehouse to the
// destination address. The warehouse place is resolved once and reused for
// the lifetime of the process; the resolved position never changes, so a
// concurrent recompute is harmless.
type EstimateDelivery struct {
	routing      domain.Routing
	startAddress string
	currency     string

	mu     sync.Mutex
	origin *domain.Place
}

func NewEstimateDelivery(routing domain.Routing, startAddress, currency string) *EstimateDelivery {
	return &EstimateDelivery{
		routing:      routing,
		startAddress: startAddress,
		currency:     currency,
	}
}

// Execute quotes the delivery without persisting anything. The quote has no
// status: nothing is running until the delivery is started.
func (uc *EstimateDelivery) Execute(ctx context.Context, query EstimateDeliveryQuery) (*domain.Delivery, error) {
	if query.Address == "" {
		return nil, errors.New("address is required")
	}

	price, err := uc.Quote(ctx, query.Address)
	if err != nil {
		return nil, err
	}

	return &domain.Delivery{
		CustomerID: query.CustomerID,
		OrderID:    query.OrderID,
		Address:    query.Address,
		Price:      price,
	}, nil
}

// Quote resolves the destination, routes from the warehouse and derives the
// price from the driving duration. Starting a delivery uses the same quote
// so estimate and start always agree on the price.
func (uc *EstimateDelivery) Quote(ctx context.Context, address string) (models.Money, error) {
	origin, err := uc.warehouse(ctx)
	if err != nil {
		return models.Money{}, err
	}

	destination, err := uc.routing.ResolvePlace(ctx, address)
	if err != nil {
		return models.Money{}, errors.Wrap(err, "resolving destination address")
	}

	route, err := uc.routing.CalculateRoute(ctx, origin, destination)
	if err != nil {
		return models.Money{}, errors.Wrap(err, "calculating route")
	}

	return models.Money{
		Amount:   int64(math.Round(route.DurationSeconds)),
		Currency: uc.currency,
	}, nil
}

func (uc *EstimateDelivery) warehouse(ctx context.Context) (domain.Place, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.origin != nil {
		return *uc.origin, nil
	}

	place, err := uc.routing.ResolvePlace(ctx, uc.startAddress)
	if err != nil {
		return domain.Place{}, errors.Wrap(err, "resolving warehouse address")
	}

	uc.origin = &place
	return place, nil
}
