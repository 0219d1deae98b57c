package domain

import (
	"context"
	"time"

	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusCanceled PaymentStatus = "CANCELED"
)

// The only payment method the simulated provider supports.
const PaymentMethodCreditCard = "CREDIT_CARD"

// ErrPaymentDeclined reports a charge the provider declined. A record with
// status FAILED still exists; the decline is a business outcome, which is why
// it wraps the ledger sentinel.
var ErrPaymentDeclined = errors.Wrap(ledger.ErrConditionNotMet, "payment declined")

// Payment is one charge attempt. FAILED is terminal; CANCELED is reachable
// only from PAID.
type Payment struct {
	PaymentID     models.ID         `json:"paymentId"`
	PaymentMethod string            `json:"paymentMethod"`
	Amount        models.Money      `json:"amount"`
	Status        PaymentStatus     `json:"status"`
	Timestamps    models.Timestamps `json:"-"`
}

// NewPayment creates a payment record for a charge attempt.
func NewPayment(amount models.Money, status PaymentStatus, now time.Time) *Payment {
	return &Payment{
		PaymentID:     models.GenerateUUID(),
		PaymentMethod: PaymentMethodCreditCard,
		Amount:        amount,
		Status:        status,
		Timestamps:    models.NewTimestamps(now),
	}
}

// Snapshot returns the copy of the payment carried inside event payloads.
func (p *Payment) Snapshot() models.PaymentSnapshot {
	return models.PaymentSnapshot{
		PaymentID:     p.PaymentID,
		PaymentMethod: p.PaymentMethod,
		Amount:        p.Amount,
		Status:        string(p.Status),
	}
}

// PaymentRepository owns payment persistence. Cancel is the conditional
// transition PAID -> CANCELED and returns ledger.ErrConditionNotMet when the
// payment is not currently PAID, so repeated cancellation never
// double-transitions.
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	Find(ctx context.Context, paymentID models.ID) (*Payment, error)
	Cancel(ctx context.Context, paymentID models.ID) (*Payment, error)
}
