package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/ordermesh/order-system/shared/models"
)

// StartDeliveryCommand carries the data needed to start a delivery.
type StartDeliveryCommand struct {
	CustomerID models.ID
	OrderID    models.ID
	Address    string
}

// StartDelivery prices the run and persists it as DELIVERING.
type StartDelivery struct {
	deliveries domain.DeliveryRepository
	estimate   *EstimateDelivery
}

func NewStartDelivery(deliveries domain.DeliveryRepository, estimate *EstimateDelivery) *StartDelivery {
	return &StartDelivery{deliveries: deliveries, estimate: estimate}
}

func (uc *StartDelivery) Execute(ctx context.Context, cmd StartDeliveryCommand) (*domain.Delivery, error) {
	if cmd.CustomerID.IsZero() || cmd.OrderID.IsZero() {
		return nil, errors.New("customer id and order id are required")
	}
	if cmd.Address == "" {
		return nil, errors.New("address is required")
	}

	price, err := uc.estimate.Quote(ctx, cmd.Address)
	if err != nil {
		return nil, err
	}

	delivery := &domain.Delivery{
		CustomerID: cmd.CustomerID,
		OrderID:    cmd.OrderID,
		Address:    cmd.Address,
		Status:     domain.DeliveryStatusDelivering,
		Price:      price,
	}
	if err := uc.deliveries.Save(ctx, delivery); err != nil {
		return nil, err
	}
	return delivery, nil
}
