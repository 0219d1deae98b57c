package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/ordermesh/order-system/shared/models"
)

// CompleteDeliveryCommand identifies the delivery to mark as delivered.
type CompleteDeliveryCommand struct {
	CustomerID models.ID
	OrderID    models.ID
}

// CompleteDelivery transitions a delivery from DELIVERING to DELIVERED.
type CompleteDelivery struct {
	deliveries domain.DeliveryRepository
}

func NewCompleteDelivery(deliveries domain.DeliveryRepository) *CompleteDelivery {
	return &CompleteDelivery{deliveries: deliveries}
}

func (uc *CompleteDelivery) Execute(ctx context.Context, cmd CompleteDeliveryCommand) (*domain.Delivery, error) {
	if cmd.CustomerID.IsZero() || cmd.OrderID.IsZero() {
		return nil, errors.New("customer id and order id are required")
	}
	return uc.deliveries.Delivered(ctx, cmd.CustomerID, cmd.OrderID)
}
