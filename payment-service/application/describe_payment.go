package application

import (
	"context"

	"github.com/ordermesh/order-system/payment-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// DescribePaymentQuery represents the query to describe a payment
type DescribePaymentQuery struct {
	PaymentID models.ID `json:"paymentId"`
}

// DescribePayment use case
type DescribePayment struct {
	payments domain.PaymentRepository
}

// NewDescribePayment creates a new DescribePayment use case
func NewDescribePayment(payments domain.PaymentRepository) *DescribePayment {
	return &DescribePayment{payments: payments}
}

// Execute returns the payment, or ledger.ErrNotFound.
func (uc *DescribePayment) Execute(ctx context.Context, query *DescribePaymentQuery) (*domain.Payment, error) {
	if query.PaymentID.IsZero() {
		return nil, errors.New("payment ID is required")
	}
	return uc.payments.Find(ctx, query.PaymentID)
}
