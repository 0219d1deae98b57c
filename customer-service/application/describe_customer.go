package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/customer-service/domain"
	"github.com/ordermesh/order-system/shared/models"
)

// DescribeCustomerQuery identifies the customer to look up.
type DescribeCustomerQuery struct {
	CustomerID models.ID
}

// DescribeCustomer reads a customer record.
type DescribeCustomer struct {
	customers domain.CustomerRepository
}

func NewDescribeCustomer(customers domain.CustomerRepository) *DescribeCustomer {
	return &DescribeCustomer{customers: customers}
}

func (uc *DescribeCustomer) Execute(ctx context.Context, query DescribeCustomerQuery) (*domain.Customer, error) {
	if query.CustomerID.IsZero() {
		return nil, errors.New("customer id is required")
	}
	return uc.customers.Find(ctx, query.CustomerID)
}
