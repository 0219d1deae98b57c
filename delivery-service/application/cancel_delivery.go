package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/ordermesh/order-system/shared/models"
)

// CancelDeliveryCommand identifies the delivery to cancel.
type CancelDeliveryCommand struct {
	CustomerID models.ID
	OrderID    models.ID
}

// CancelDelivery transitions a delivery from DELIVERING to CANCELED.
type CancelDelivery struct {
	deliveries domain.DeliveryRepository
}

func NewCancelDelivery(deliveries domain.DeliveryRepository) *CancelDelivery {
	return &CancelDelivery{deliveries: deliveries}
}

func (uc *CancelDelivery) Execute(ctx context.Context, cmd CancelDeliveryCommand) (*domain.Delivery, error) {
	if cmd.CustomerID.IsZero() || cmd.OrderID.IsZero() {
		return nil, errors.New("customer id and order id are required")
	}
	return uc.deliveries.Cancel(ctx, cmd.CustomerID, cmd.OrderID)
}
