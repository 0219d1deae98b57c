package application

import (
	"context"

	"github.com/ordermesh/order-system/payment-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// CancelPaymentCommand represents the command to cancel a payment
type CancelPaymentCommand struct {
	PaymentID models.ID `json:"paymentId"`
}

// CancelPayment is the compensation for a paid charge on a canceled order.
type CancelPayment struct {
	payments domain.PaymentRepository
}

// NewCancelPayment creates a new CancelPayment use case
func NewCancelPayment(payments domain.PaymentRepository) *CancelPayment {
	return &CancelPayment{payments: payments}
}

// Execute transitions PAID -> CANCELED. A payment not currently PAID is a
// no-op surfacing as ledger.ErrConditionNotMet; the effect is idempotent.
func (uc *CancelPayment) Execute(ctx context.Context, cmd *CancelPaymentCommand) (*domain.Payment, error) {
	if cmd.PaymentID.IsZero() {
		return nil, errors.New("payment ID is required")
	}
	return uc.payments.Cancel(ctx, cmd.PaymentID)
}
