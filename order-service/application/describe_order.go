package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/order-service/domain"
	"github.com/ordermesh/order-system/shared/models"
)

// DescribeOrderQuery identifies the order to look up.
type DescribeOrderQuery struct {
	CustomerID models.ID
	OrderID    models.ID
}

// DescribeOrder reads an order without modifying it.
type DescribeOrder struct {
	orders domain.OrderRepository
}

func NewDescribeOrder(orders domain.OrderRepository) *DescribeOrder {
	return &DescribeOrder{orders: orders}
}

func (uc *DescribeOrder) Execute(ctx context.Context, query DescribeOrderQuery) (*domain.Order, error) {
	if query.CustomerID.IsZero() || query.OrderID.IsZero() {
		return nil, errors.New("customer id and order id are required")
	}
	return uc.orders.Find(ctx, query.CustomerID, query.OrderID)
}
