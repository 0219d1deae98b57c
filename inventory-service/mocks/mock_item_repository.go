// Package mocks holds hand-written testify mocks for the service's ports.
package mocks

import (
	"context"
	"testing"

	"github.com/ordermesh/order-system/inventory-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/stretchr/testify/mock"
)

// MockItemRepository is a testify mock of domain.ItemRepository.
type MockItemRepository struct {
	mock.Mock
}

func NewMockItemRepository(t *testing.T) *MockItemRepository {
	m := &MockItemRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockItemRepository) Find(ctx context.Context, itemID models.ID) (*domain.Item, error) {
	args := m.Called(ctx, itemID)
	return itemResult(args)
}

func (m *MockItemRepository) Reserve(ctx context.Context, itemID models.ID) (*domain.Item, error) {
	args := m.Called(ctx, itemID)
	return itemResult(args)
}

func (m *MockItemRepository) Unreserve(ctx context.Context, itemID models.ID) (*domain.Item, error) {
	args := m.Called(ctx, itemID)
	return itemResult(args)
}

func (m *MockItemRepository) Remove(ctx context.Context, itemID models.ID) (*domain.Item, error) {
	args := m.Called(ctx, itemID)
	return itemResult(args)
}

func (m *MockItemRepository) Return(ctx context.Context, itemID models.ID) (*domain.Item, error) {
	args := m.Called(ctx, itemID)
	return itemResult(args)
}

func itemResult(args mock.Arguments) (*domain.Item, error) {
	var item *domain.Item
	if args.Get(0) != nil {
		item = args.Get(0).(*domain.Item)
	}
	return item, args.Error(1)
}
