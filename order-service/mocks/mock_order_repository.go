// Package mocks holds hand-written testify mocks for the service's ports.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/ordermesh/order-system/order-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a testify mock of domain.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func NewMockOrderRepository(t *testing.T) *MockOrderRepository {
	m := &MockOrderRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockOrderRepository) Store(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Find(ctx context.Context, customerID, orderID models.ID) (*domain.Order, error) {
	args := m.Called(ctx, customerID, orderID)
	return orderResult(args)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, customerID, orderID models.ID, to domain.OrderStatus, now time.Time, from ...domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, customerID, orderID, to, now, from)
	return orderResult(args)
}

func orderResult(args mock.Arguments) (*domain.Order, error) {
	var order *domain.Order
	if args.Get(0) != nil {
		order = args.Get(0).(*domain.Order)
	}
	return order, args.Error(1)
}
