package models

import "time"

// Snapshots are the copies of entities carried inside event payloads. Each
// service appends its own snapshot to the saga detail and never removes a
// prior one; a snapshot is a value, not a reference to the owning service's
// record.

// ItemSnapshot is the inventory row as of the last counter transition.
type ItemSnapshot struct {
	ItemID    ID    `json:"itemId"`
	Available int64 `json:"available"`
	Reserved  int64 `json:"reserved"`
	Price     Money `json:"price"`
}

// CustomerSnapshot is the read-only customer projection.
type CustomerSnapshot struct {
	CustomerID ID     `json:"customerId"`
	Name       string `json:"name"`
	Address    string `json:"address"`
}

// PaymentSnapshot is the payment record as of the pay or cancel step.
type PaymentSnapshot struct {
	PaymentID     ID     `json:"paymentId"`
	PaymentMethod string `json:"paymentMethod"`
	Amount        Money  `json:"amount"`
	Status        string `json:"status"`
}

// DeliverySnapshot carries either a quote (estimate) or the delivery row.
type DeliverySnapshot struct {
	CustomerID ID     `json:"customerId,omitempty"`
	OrderID    ID     `json:"orderId,omitempty"`
	Address    string `json:"address"`
	Status     string `json:"status,omitempty"`
	Price      Money  `json:"price"`
}

// OrderSnapshot is the order aggregate as folded by the order service.
type OrderSnapshot struct {
	OrderID         ID        `json:"orderId"`
	CustomerID      ID        `json:"customerId"`
	ItemID          ID        `json:"itemId"`
	OrderStatus     string    `json:"orderStatus"`
	ItemPrice       Money     `json:"itemPrice"`
	DeliveryPrice   Money     `json:"deliveryPrice"`
	TotalPrice      Money     `json:"totalPrice"`
	PaymentID       ID        `json:"paymentId,omitempty"`
	DeliveryAddress string    `json:"deliveryAddress"`
	OrderDate       time.Time `json:"orderDate"`
	UpdateDate      time.Time `json:"updateDate"`
}
