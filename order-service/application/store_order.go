package application

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/order-service/domain"
	"github.com/ordermesh/order-system/shared/events"
)

// StoreOrderCommand carries the payment outcome that materializes the order
// row.
type StoreOrderCommand struct {
	Detail events.Detail
	Status domain.OrderStatus
}

// StoreOrder inserts the order row for the first time, folding the
// accumulated saga detail into the aggregate. The row is inserted exactly
// once; later events only update its status.
type StoreOrder struct {
	orders domain.OrderRepository
	now    func() time.Time
}

func NewStoreOrder(orders domain.OrderRepository) *StoreOrder {
	return &StoreOrder{orders: orders, now: time.Now}
}

// WithClock overrides the clock used to stamp order dates.
func (uc *StoreOrder) WithClock(now func() time.Time) *StoreOrder {
	uc.now = now
	return uc
}

func (uc *StoreOrder) Execute(ctx context.Context, cmd StoreOrderCommand) (*domain.Order, error) {
	detail := cmd.Detail
	if detail.OrderID.IsZero() || detail.CustomerID.IsZero() {
		return nil, errors.New("order id and customer id are required")
	}

	now := uc.now()
	order := &domain.Order{
		OrderID:         detail.OrderID,
		CustomerID:      detail.CustomerID,
		ItemID:          detail.ItemID,
		Status:          cmd.Status,
		DeliveryAddress: detail.Address,
		OrderDate:       now,
		UpdateDate:      now,
	}
	if detail.Item != nil {
		order.ItemPrice = detail.Item.Price
	}
	if detail.Delivery != nil {
		order.DeliveryPrice = detail.Delivery.Price
	}
	if detail.Total != nil {
		order.TotalPrice = *detail.Total
	}
	if detail.Payment != nil {
		order.PaymentID = detail.Payment.PaymentID
	}

	if err := uc.orders.Store(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
