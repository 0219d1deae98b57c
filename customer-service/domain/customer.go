package domain

import (
	"context"

	"github.com/ordermesh/order-system/shared/models"
)

// Customer is a registered customer with a single delivery address.
type Customer struct {
	CustomerID models.ID `json:"customerId"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
}

// Snapshot returns the copy of the customer carried inside event payloads.
func (c *Customer) Snapshot() models.CustomerSnapshot {
	return models.CustomerSnapshot{
		CustomerID: c.CustomerID,
		Name:       c.Name,
		Address:    c.Address,
	}
}

// CustomerRepository reads customer records. Find returns
// ledger.ErrNotFound for an unknown customer.
type CustomerRepository interface {
	Find(ctx context.Context, customerID models.ID) (*Customer, error)
}
