package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/order-service/domain"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
)

// ConfirmDeliveredCommand identifies the order that arrived.
type ConfirmDeliveredCommand struct {
	CustomerID models.ID
	OrderID    models.ID
}

// ConfirmDelivered reports that the physical delivery arrived. The delivery
// service owns the DELIVERING to DELIVERED transition; this only publishes
// the event that triggers it.
type ConfirmDelivered struct {
	orders    domain.OrderRepository
	publisher events.Publisher
	source    string
}

func NewConfirmDelivered(orders domain.OrderRepository, publisher events.Publisher, source string) *ConfirmDelivered {
	return &ConfirmDelivered{orders: orders, publisher: publisher, source: source}
}

func (uc *ConfirmDelivered) Execute(ctx context.Context, cmd ConfirmDeliveredCommand) (*domain.Order, error) {
	if cmd.CustomerID.IsZero() || cmd.OrderID.IsZero() {
		return nil, errors.New("customer id and order id are required")
	}

	order, err := uc.orders.Find(ctx, cmd.CustomerID, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusDelivering {
		return nil, errors.Wrapf(ledger.ErrConditionNotMet, "order %s is %s, not delivering", order.OrderID, order.Status)
	}

	snapshot := order.Snapshot()
	event := events.New(uc.source, events.Delivered, events.Detail{
		OrderID:    order.OrderID,
		CustomerID: order.CustomerID,
		ItemID:     order.ItemID,
		Order:      &snapshot,
	})
	if err := uc.publisher.Publish(ctx, event); err != nil {
		return nil, errors.Wrap(err, "failed to publish delivered")
	}

	return order, nil
}
