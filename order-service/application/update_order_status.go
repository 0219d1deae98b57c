package application

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/order-service/domain"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
)

// UpdateOrderStatusCommand stamps a new status on an existing order. From
// restricts which current statuses the stamp applies to; leaving it empty
// applies unconditionally.
type UpdateOrderStatusCommand struct {
	CustomerID models.ID
	OrderID    models.ID
	To         domain.OrderStatus
	From       []domain.OrderStatus
}

// UpdateOrderStatus folds a saga event into the order's status column.
type UpdateOrderStatus struct {
	orders domain.OrderRepository
	now    func() time.Time
}

func NewUpdateOrderStatus(orders domain.OrderRepository) *UpdateOrderStatus {
	return &UpdateOrderStatus{orders: orders, now: time.Now}
}

// WithClock overrides the clock used to stamp update dates.
func (uc *UpdateOrderStatus) WithClock(now func() time.Time) *UpdateOrderStatus {
	uc.now = now
	return uc
}

func (uc *UpdateOrderStatus) Execute(ctx context.Context, cmd UpdateOrderStatusCommand) (*domain.Order, error) {
	if cmd.CustomerID.IsZero() || cmd.OrderID.IsZero() {
		return nil, errors.New("customer id and order id are required")
	}
	if cmd.To == "" {
		return nil, errors.New("target status is required")
	}

	order, err := uc.orders.UpdateStatus(ctx, cmd.CustomerID, cmd.OrderID, cmd.To, uc.now(), cmd.From...)
	if err == nil || len(cmd.From) == 0 || !ledger.IsBusinessOutcome(err) {
		return order, err
	}

	// The guard did not match. Either this is a stale copy of an event the
	// order already folded, which may be dropped, or the event overtook its
	// predecessor, which must surface as a fault so the bus redelivers it
	// once the predecessor lands.
	current, findErr := uc.orders.Find(ctx, cmd.CustomerID, cmd.OrderID)
	if findErr != nil {
		if ledger.IsBusinessOutcome(findErr) {
			return nil, errors.Errorf("order %s/%s not stored yet, cannot stamp %s", cmd.CustomerID, cmd.OrderID, cmd.To)
		}
		return nil, findErr
	}
	if domain.StatusReached(current.Status, cmd.To) {
		return nil, errors.Wrapf(ledger.ErrConditionNotMet, "order %s already %s", cmd.OrderID, current.Status)
	}
	return nil, errors.Errorf("order %s is %s, cannot stamp %s yet", cmd.OrderID, current.Status, cmd.To)
}
