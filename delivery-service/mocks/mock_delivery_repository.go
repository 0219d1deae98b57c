// Package mocks holds hand-written testify mocks for the service's ports.
package mocks

import (
	"context"
	"testing"

	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/stretchr/testify/mock"
)

// MockDeliveryRepository is a testify mock of domain.DeliveryRepository.
type MockDeliveryRepository struct {
	mock.Mock
}

func NewMockDeliveryRepository(t *testing.T) *MockDeliveryRepository {
	m := &MockDeliveryRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDeliveryRepository) Save(ctx context.Context, delivery *domain.Delivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Find(ctx context.Context, customerID, orderID models.ID) (*domain.Delivery, error) {
	args := m.Called(ctx, customerID, orderID)
	return deliveryResult(args)
}

func (m *MockDeliveryRepository) Delivered(ctx context.Context, customerID, orderID models.ID) (*domain.Delivery, error) {
	args := m.Called(ctx, customerID, orderID)
	return deliveryResult(args)
}

func (m *MockDeliveryRepository) Cancel(ctx context.Context, customerID, orderID models.ID) (*domain.Delivery, error) {
	args := m.Called(ctx, customerID, orderID)
	return deliveryResult(args)
}

func deliveryResult(args mock.Arguments) (*domain.Delivery, error) {
	var delivery *domain.Delivery
	if args.Get(0) != nil {
		delivery = args.Get(0).(*domain.Delivery)
	}
	return delivery, args.Error(1)
}
