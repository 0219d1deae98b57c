package application

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/models"
)

// CreateOrderCommand carries the data needed to create an order.
type CreateOrderCommand struct {
	CustomerID models.ID
	ItemID     models.ID
}

// CreateOrderResult is returned to the caller before any row exists; the
// order row only appears once the payment outcome arrives.
type CreateOrderResult struct {
	OrderID    models.ID `json:"orderId"`
	CustomerID models.ID `json:"customerId"`
	ItemID     models.ID `json:"itemId"`
}

// CreateOrder assigns an order ID and emits the saga-initiating event. It
// does not insert the order row.
type CreateOrder struct {
	publisher events.Publisher
	source    string
	now       func() time.Time
}

func NewCreateOrder(publisher events.Publisher, source string) *CreateOrder {
	return &CreateOrder{publisher: publisher, source: source, now: time.Now}
}

// WithClock overrides the clock used to derive order IDs.
func (uc *CreateOrder) WithClock(now func() time.Time) *CreateOrder {
	uc.now = now
	return uc
}

func (uc *CreateOrder) Execute(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if cmd.CustomerID.IsZero() || cmd.ItemID.IsZero() {
		return nil, errors.New("customer id and item id are required")
	}

	orderID := models.NewOrderID(uc.now())

	event := events.New(uc.source, events.OrderCreated, events.Detail{
		OrderID:    orderID,
		CustomerID: cmd.CustomerID,
		ItemID:     cmd.ItemID,
	})
	if err := uc.publisher.Publish(ctx, event); err != nil {
		return nil, errors.Wrap(err, "failed to publish order created")
	}

	return &CreateOrderResult{
		OrderID:    orderID,
		CustomerID: cmd.CustomerID,
		ItemID:     cmd.ItemID,
	}, nil
}
