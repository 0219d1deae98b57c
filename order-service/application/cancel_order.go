package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/order-service/domain"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
)

// CancelOrderCommand identifies the order to cancel.
type CancelOrderCommand struct {
	CustomerID models.ID
	OrderID    models.ID
}

// CancelOrder starts the compensation chain for a paid order. It publishes
// the cancellation event carrying the full order snapshot so downstream
// services can undo their steps; the order row itself is only stamped later,
// when their cancellation events come back.
type CancelOrder struct {
	orders    domain.OrderRepository
	publisher events.Publisher
	source    string
}

func NewCancelOrder(orders domain.OrderRepository, publisher events.Publisher, source string) *CancelOrder {
	return &CancelOrder{orders: orders, publisher: publisher, source: source}
}

func (uc *CancelOrder) Execute(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, error) {
	if cmd.CustomerID.IsZero() || cmd.OrderID.IsZero() {
		return nil, errors.New("customer id and order id are required")
	}

	order, err := uc.orders.Find(ctx, cmd.CustomerID, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPaid && order.Status != domain.OrderStatusDelivering {
		return nil, errors.Wrapf(ledger.ErrConditionNotMet, "order %s is %s, not cancelable", order.OrderID, order.Status)
	}

	snapshot := order.Snapshot()
	event := events.New(uc.source, events.OrderCanceled, events.Detail{
		OrderID:    order.OrderID,
		CustomerID: order.CustomerID,
		ItemID:     order.ItemID,
		Address:    order.DeliveryAddress,
		Order:      &snapshot,
	})
	if err := uc.publisher.Publish(ctx, event); err != nil {
		return nil, errors.Wrap(err, "failed to publish order canceled")
	}

	return order, nil
}
