package application

import (
	"context"
	"math/rand"
	"time"

	"github.com/ordermesh/order-system/payment-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// MakePaymentCommand represents the command to attempt a charge
type MakePaymentCommand struct {
	Amount models.Money `json:"amount"`
}

// MakePayment simulates the external charge. The outcome is a draw against
// the configured failure probability, not a retraceable computation; a
// payment record is written either way.
type MakePayment struct {
	payments        domain.PaymentRepository
	failProbability float64
	random          func() float64
	now             func() time.Time
}

// MakePaymentOption configures a MakePayment use case.
type MakePaymentOption func(*MakePayment)

// WithRandom injects the probability draw, for deterministic tests.
func WithRandom(random func() float64) MakePaymentOption {
	return func(uc *MakePayment) {
		uc.random = random
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) MakePaymentOption {
	return func(uc *MakePayment) {
		uc.now = now
	}
}

// NewMakePayment creates a new MakePayment use case. failProbability is a
// runtime parameter between 0 and 1.
func NewMakePayment(payments domain.PaymentRepository, failProbability float64, opts ...MakePaymentOption) *MakePayment {
	uc := &MakePayment{
		payments:        payments,
		failProbability: failProbability,
		random:          rand.Float64,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute attempts the charge. On a declined charge the FAILED record is
// returned together with domain.ErrPaymentDeclined.
func (uc *MakePayment) Execute(ctx context.Context, cmd *MakePaymentCommand) (*domain.Payment, error) {
	if !cmd.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}

	status := domain.PaymentStatusPaid
	if uc.random() < uc.failProbability {
		status = domain.PaymentStatusFailed
	}

	payment := domain.NewPayment(cmd.Amount, status, uc.now())
	if err := uc.payments.Save(ctx, payment); err != nil {
		return nil, errors.Wrap(err, "failed to save payment")
	}

	if status == domain.PaymentStatusFailed {
		return payment, domain.ErrPaymentDeclined
	}
	return payment, nil
}
