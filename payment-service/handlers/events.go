package handlers

import (
	"context"

	"github.com/ordermesh/order-system/payment-service/application"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/ordermesh/order-system/shared/saga"
	"github.com/ordermesh/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Source identifies this service on published events.
const Source = "payment-service"

// PaymentEventHandlers reacts to the saga events the payment service owns a
// transition for.
type PaymentEventHandlers struct {
	makePayment   *application.MakePayment
	cancelPayment *application.CancelPayment
	publisher     events.Publisher
}

// NewPaymentEventHandlers creates new payment event handlers
func NewPaymentEventHandlers(
	makePayment *application.MakePayment,
	cancelPayment *application.CancelPayment,
	publisher events.Publisher,
) *PaymentEventHandlers {
	return &PaymentEventHandlers{
		makePayment:   makePayment,
		cancelPayment: cancelPayment,
		publisher:     publisher,
	}
}

// Routes returns the static event table for this service.
func (h *PaymentEventHandlers) Routes() map[events.EventType]events.HandlerFunc {
	return map[events.EventType]events.HandlerFunc{
		events.DeliveryEstimated: h.HandleDeliveryEstimated,
		events.ItemReturned:      h.HandleItemReturned,
	}
}

// Router builds the event router for this service.
func (h *PaymentEventHandlers) Router(log *zap.Logger, opts ...events.RouterOption) *events.Router {
	return events.NewRouter(Source, h.Routes(), log, opts...)
}

// HandleDeliveryEstimated charges the order total: item price plus the
// estimated delivery price. The total is set here, once, and never revised.
func (h *PaymentEventHandlers) HandleDeliveryEstimated(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	if detail.Item == nil || detail.Delivery == nil {
		return errors.New("delivery estimated event missing item or delivery snapshot")
	}

	total, err := detail.Item.Price.Add(detail.Delivery.Price)
	if err != nil {
		return errors.Wrap(err, "failed to total order")
	}
	detail.Total = &total

	payment, err := h.makePayment.Execute(ctx, &application.MakePaymentCommand{Amount: total})
	if payment != nil {
		snapshot := payment.Snapshot()
		detail.Payment = &snapshot

		telemetry.RecordCounter(ctx, "payments_total", "Charge attempts by outcome", 1,
			attribute.String("status", snapshot.Status),
		)
	}

	return saga.PublishOutcome(ctx, h.publisher, Source, events.PaymentMade, events.PaymentFailed, detail, err)
}

// HandleItemReturned cancels the charge of a canceled order. A payment that
// was never PAID leaves nothing to cancel; the compensation chain still has
// to continue, so the cancellation event is published either way.
func (h *PaymentEventHandlers) HandleItemReturned(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	paymentID := paymentIDFrom(detail)
	if paymentID.IsZero() {
		return errors.New("item returned event carries no payment ID")
	}

	payment, err := h.cancelPayment.Execute(ctx, &application.CancelPaymentCommand{PaymentID: paymentID})
	if err != nil && !ledger.IsBusinessOutcome(err) {
		return err
	}
	if payment != nil {
		snapshot := payment.Snapshot()
		detail.Payment = &snapshot
	}

	return h.publisher.Publish(ctx, events.New(Source, events.PaymentCanceled, detail))
}

func paymentIDFrom(detail events.Detail) models.ID {
	if detail.Payment != nil {
		return detail.Payment.PaymentID
	}
	if detail.Order != nil {
		return detail.Order.PaymentID
	}
	return ""
}
