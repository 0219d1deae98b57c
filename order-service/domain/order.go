package domain

import (
	"context"
	"time"

	"github.com/ordermesh/order-system/shared/models"
)

// OrderStatus represents the status of an order
type OrderStatus string

// The order never drives the saga; it folds the status-changing events the
// other services publish. PAID and PAYMENT_FAILED are the first stored
// statuses, DELIVERED and the cancellation branches are terminal.
const (
	OrderStatusPaid             OrderStatus = "PAID"
	OrderStatusPaymentFailed    OrderStatus = "PAYMENT_FAILED"
	OrderStatusDelivering       OrderStatus = "DELIVERING"
	OrderStatusDelivered        OrderStatus = "DELIVERED"
	OrderStatusPaymentCanceled  OrderStatus = "PAYMENT_CANCELED"
	OrderStatusDeliveryCanceled OrderStatus = "DELIVERY_CANCELED"
)

// pathRank positions a status along the order's walk: PAID precedes
// DELIVERING, and everything else is terminal.
func pathRank(s OrderStatus) int {
	switch s {
	case OrderStatusPaid:
		return 1
	case OrderStatusDelivering:
		return 2
	default:
		return 3
	}
}

// StatusReached reports whether an order at current is at or past target.
// The bus orders nothing across event types, so a failed conditional stamp
// is ambiguous: a stale copy of an event the order already folded can be
// dropped, while an event that overtook its predecessor has to wait for a
// redelivery.
func StatusReached(current, target OrderStatus) bool {
	return pathRank(current) >= pathRank(target)
}

// Order is the order aggregate, a side record of the saga's progress.
type Order struct {
	OrderID         models.ID    `json:"orderId"`
	CustomerID      models.ID    `json:"customerId"`
	ItemID          models.ID    `json:"itemId"`
	Status          OrderStatus  `json:"orderStatus"`
	ItemPrice       models.Money `json:"itemPrice"`
	DeliveryPrice   models.Money `json:"deliveryPrice"`
	TotalPrice      models.Money `json:"totalPrice"`
	PaymentID       models.ID    `json:"paymentId,omitempty"`
	DeliveryAddress string       `json:"deliveryAddress"`
	OrderDate       time.Time    `json:"orderDate"`
	UpdateDate      time.Time    `json:"updateDate"`
}

// Snapshot returns the copy of the order carried inside event payloads.
func (o *Order) Snapshot() models.OrderSnapshot {
	return models.OrderSnapshot{
		OrderID:         o.OrderID,
		CustomerID:      o.CustomerID,
		ItemID:          o.ItemID,
		OrderStatus:     string(o.Status),
		ItemPrice:       o.ItemPrice,
		DeliveryPrice:   o.DeliveryPrice,
		TotalPrice:      o.TotalPrice,
		PaymentID:       o.PaymentID,
		DeliveryAddress: o.DeliveryAddress,
		OrderDate:       o.OrderDate,
		UpdateDate:      o.UpdateDate,
	}
}

// OrderRepository stores the order aggregate. The row is inserted exactly
// once, by Store, when the payment outcome arrives; UpdateStatus only
// touches existing rows and, when given prior statuses, applies
// conditionally and returns ledger.ErrConditionNotMet if the order is not
// in one of them.
type OrderRepository interface {
	Store(ctx context.Context, order *Order) error
	Find(ctx context.Context, customerID, orderID models.ID) (*Order, error)
	UpdateStatus(ctx context.Context, customerID, orderID models.ID, to OrderStatus, now time.Time, from ...OrderStatus) (*Order, error)
}
