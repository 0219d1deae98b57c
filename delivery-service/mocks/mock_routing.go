package mocks

import (
	"context"
	"testing"

	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/stretchr/testify/mock"
)

// MockRouting is a testify mock of domain.Routing.
type MockRouting struct {
	mock.Mock
}

func NewMockRouting(t *testing.T) *MockRouting {
	m := &MockRouting{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRouting) ResolvePlace(ctx context.Context, address string) (domain.Place, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(domain.Place), args.Error(1)
}

func (m *MockRouting) CalculateRoute(ctx context.Context, origin, destination domain.Place) (domain.RouteSummary, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(domain.RouteSummary), args.Error(1)
}
