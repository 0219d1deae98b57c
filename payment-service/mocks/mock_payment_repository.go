// Package mocks holds hand-written testify mocks for the service's ports.
package mocks

import (
	"context"
	"testing"

	"github.com/ordermesh/order-system/payment-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/stretchr/testify/mock"
)

// MockPaymentRepository is a testify mock of domain.PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func NewMockPaymentRepository(t *testing.T) *MockPaymentRepository {
	m := &MockPaymentRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Find(ctx context.Context, paymentID models.ID) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	return paymentResult(args)
}

func (m *MockPaymentRepository) Cancel(ctx context.Context, paymentID models.ID) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	return paymentResult(args)
}

func paymentResult(args mock.Arguments) (*domain.Payment, error) {
	var payment *domain.Payment
	if args.Get(0) != nil {
		payment = args.Get(0).(*domain.Payment)
	}
	return payment, args.Error(1)
}
