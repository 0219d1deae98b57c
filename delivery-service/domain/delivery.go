package domain

import (
	"context"

	"github.com/ordermesh/order-system/shared/models"
)

// DeliveryStatus represents the status of a delivery
type DeliveryStatus string

const (
	DeliveryStatusDelivering DeliveryStatus = "DELIVERING"
	DeliveryStatusDelivered  DeliveryStatus = "DELIVERED"
	DeliveryStatusCanceled   DeliveryStatus = "CANCELED"
)

// Delivery is one delivery run, keyed by customer and order. Price is fixed
// at creation; DELIVERED and CANCELED are terminal.
type Delivery struct {
	CustomerID models.ID      `json:"customerId"`
	OrderID    models.ID      `json:"orderId"`
	Address    string         `json:"address"`
	Status     DeliveryStatus `json:"status"`
	Price      models.Money   `json:"price"`
}

// Snapshot returns the copy of the delivery carried inside event payloads.
func (d *Delivery) Snapshot() models.DeliverySnapshot {
	return models.DeliverySnapshot{
		CustomerID: d.CustomerID,
		OrderID:    d.OrderID,
		Address:    d.Address,
		Status:     string(d.Status),
		Price:      d.Price,
	}
}

// DeliveryRepository owns the delivery lifecycle. Delivered and Cancel are
// conditional transitions out of DELIVERING and return
// ledger.ErrConditionNotMet once the delivery is terminal.
type DeliveryRepository interface {
	Save(ctx context.Context, delivery *Delivery) error
	Find(ctx context.Context, customerID, orderID models.ID) (*Delivery, error)
	Delivered(ctx context.Context, customerID, orderID models.ID) (*Delivery, error)
	Cancel(ctx context.Context, customerID, orderID models.ID) (*Delivery, error)
}
