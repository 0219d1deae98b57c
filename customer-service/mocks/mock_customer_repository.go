// Package mocks holds hand-written testify mocks for the service's ports.
package mocks

import (
	"context"
	"testing"

	"github.com/ordermesh/order-system/customer-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/stretchr/testify/mock"
)

// MockCustomerRepository is a testify mock of domain.CustomerRepository.
type MockCustomerRepository struct {
	mock.Mock
}

func NewMockCustomerRepository(t *testing.T) *MockCustomerRepository {
	m := &MockCustomerRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCustomerRepository) Find(ctx context.Context, customerID models.ID) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	var customer *domain.Customer
	if args.Get(0) != nil {
		customer = args.Get(0).(*domain.Customer)
	}
	return customer, args.Error(1)
}
