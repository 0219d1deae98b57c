package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/ordermesh/order-system/shared/models"
)

// DescribeDeliveryQuery identifies the delivery to look up.
type DescribeDeliveryQuery struct {
	CustomerID models.ID
	OrderID    models.ID
}

// DescribeDelivery reads a delivery without modifying it.
type DescribeDelivery struct {
	deliveries domain.DeliveryRepository
}

func NewDescribeDelivery(deliveries domain.DeliveryRepository) *DescribeDelivery {
	return &DescribeDelivery{deliveries: deliveries}
}

func (uc *DescribeDelivery) Execute(ctx context.Context, query DescribeDeliveryQuery) (*domain.Delivery, error) {
	if query.CustomerID.IsZero() || query.OrderID.IsZero() {
		return nil, errors.New("customer id and order id are required")
	}
	return uc.deliveries.Find(ctx, query.CustomerID, query.OrderID)
}
