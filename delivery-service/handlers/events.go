package handlers

import (
	"context"

	"github.com/ordermesh/order-system/delivery-service/application"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/saga"
	"github.com/ordermesh/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Source identifies this service on published events.
const Source = "delivery-service"

// DeliveryEventHandlers reacts to the saga events the delivery service owns
// a transition for.
type DeliveryEventHandlers struct {
	estimateDelivery *application.EstimateDelivery
	startDelivery    *application.StartDelivery
	completeDelivery *application.CompleteDelivery
	cancelDelivery   *application.CancelDelivery
	publisher        events.Publisher
}

// NewDeliveryEventHandlers creates new delivery event handlers
func NewDeliveryEventHandlers(
	estimateDelivery *application.EstimateDelivery,
	startDelivery *application.StartDelivery,
	completeDelivery *application.CompleteDelivery,
	cancelDelivery *application.CancelDelivery,
	publisher events.Publisher,
) *DeliveryEventHandlers {
	return &DeliveryEventHandlers{
		estimateDelivery: estimateDelivery,
		startDelivery:    startDelivery,
		completeDelivery: completeDelivery,
		cancelDelivery:   cancelDelivery,
		publisher:        publisher,
	}
}

// Routes returns the static event table for this service.
func (h *DeliveryEventHandlers) Routes() map[events.EventType]events.HandlerFunc {
	return map[events.EventType]events.HandlerFunc{
		events.CustomerDescribed: h.HandleCustomerDescribed,
		events.ItemRemoved:       h.HandleItemRemoved,
		events.Delivered:         h.HandleDelivered,
		events.PaymentCanceled:   h.HandlePaymentCanceled,
	}
}

// Router builds the event router for this service.
func (h *DeliveryEventHandlers) Router(log *zap.Logger, opts ...events.RouterOption) *events.Router {
	return events.NewRouter(Source, h.Routes(), log, opts...)
}

// HandleCustomerDescribed quotes the delivery to the customer's address.
// Nothing is persisted yet; the quote only exists so the payment can charge
// the full order total up front.
func (h *DeliveryEventHandlers) HandleCustomerDescribed(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	if detail.Address == "" {
		return errors.New("customer described event carries no address")
	}

	delivery, err := h.estimateDelivery.Execute(ctx, application.EstimateDeliveryQuery{
		CustomerID: detail.CustomerID,
		OrderID:    detail.OrderID,
		Address:    detail.Address,
	})
	if delivery != nil {
		snapshot := delivery.Snapshot()
		detail.Delivery = &snapshot
	}

	return saga.PublishOutcome(ctx, h.publisher, Source, events.DeliveryEstimated, "", detail, err)
}

// HandleItemRemoved starts the delivery once the payment went through and
// the item left the warehouse. The run is re-priced with the same quote the
// estimate used, so both agree.
func (h *DeliveryEventHandlers) HandleItemRemoved(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	if detail.Address == "" {
		return errors.New("item removed event carries no address")
	}

	delivery, err := h.startDelivery.Execute(ctx, application.StartDeliveryCommand{
		CustomerID: detail.CustomerID,
		OrderID:    detail.OrderID,
		Address:    detail.Address,
	})
	if delivery != nil {
		snapshot := delivery.Snapshot()
		detail.Delivery = &snapshot

		telemetry.RecordCounter(ctx, "deliveries_started_total", "Deliveries started", 1,
			attribute.String("currency", delivery.Price.Currency),
		)
	}

	return saga.PublishOutcome(ctx, h.publisher, Source, events.DeliveryStarted, "", detail, err)
}

// HandleDelivered marks the run DELIVERED. A redelivered event finds the
// run already terminal; that is a no-op, not a fault.
func (h *DeliveryEventHandlers) HandleDelivered(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	delivery, err := h.completeDelivery.Execute(ctx, application.CompleteDeliveryCommand{
		CustomerID: detail.CustomerID,
		OrderID:    detail.OrderID,
	})
	if delivery != nil {
		snapshot := delivery.Snapshot()
		detail.Delivery = &snapshot
	}

	return saga.PublishOutcome(ctx, h.publisher, Source, events.DeliveryWasDelivered, "", detail, err)
}

// HandlePaymentCanceled cancels the run as the last step of the
// compensation chain. An order canceled before its delivery started leaves
// nothing to cancel; the chain still has to reach the order service, so the
// cancellation event is published either way.
func (h *DeliveryEventHandlers) HandlePaymentCanceled(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	delivery, err := h.cancelDelivery.Execute(ctx, application.CancelDeliveryCommand{
		CustomerID: detail.CustomerID,
		OrderID:    detail.OrderID,
	})
	if err != nil && !ledger.IsBusinessOutcome(err) {
		return err
	}
	if delivery != nil {
		snapshot := delivery.Snapshot()
		detail.Delivery = &snapshot
	}

	return h.publisher.Publish(ctx, events.New(Source, events.DeliveryWasCanceled, detail))
}
