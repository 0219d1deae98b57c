package handlers

import (
	"context"

	"github.com/ordermesh/order-system/order-service/application"
	"github.com/ordermesh/order-system/order-service/domain"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/saga"
	"github.com/ordermesh/order-system/shared/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Source identifies this service on published events.
const Source = "order-service"

// OrderEventHandlers folds the saga's status-changing events into the order
// aggregate. The order does not drive the saga; with one exception (the
// terminal OrderDelivered) these handlers publish nothing.
type OrderEventHandlers struct {
	storeOrder        *application.StoreOrder
	updateOrderStatus *application.UpdateOrderStatus
	publisher         events.Publisher
}

// NewOrderEventHandlers creates new order event handlers
func NewOrderEventHandlers(
	storeOrder *application.StoreOrder,
	updateOrderStatus *application.UpdateOrderStatus,
	publisher events.Publisher,
) *OrderEventHandlers {
	return &OrderEventHandlers{
		storeOrder:        storeOrder,
		updateOrderStatus: updateOrderStatus,
		publisher:         publisher,
	}
}

// Routes returns the static event table for this service.
func (h *OrderEventHandlers) Routes() map[events.EventType]events.HandlerFunc {
	return map[events.EventType]events.HandlerFunc{
		events.PaymentMade:          h.HandlePaymentMade,
		events.PaymentFailed:        h.HandlePaymentFailed,
		events.DeliveryStarted:      h.HandleDeliveryStarted,
		events.DeliveryWasDelivered: h.HandleDeliveryWasDelivered,
		events.PaymentCanceled:      h.HandlePaymentCanceled,
		events.DeliveryWasCanceled:  h.HandleDeliveryWasCanceled,
	}
}

// Router builds the event router for this service.
func (h *OrderEventHandlers) Router(log *zap.Logger, opts ...events.RouterOption) *events.Router {
	return events.NewRouter(Source, h.Routes(), log, opts...)
}

// HandlePaymentMade inserts the order row for the first time, with the full
// pricing the saga accumulated on the way to the payment.
func (h *OrderEventHandlers) HandlePaymentMade(ctx context.Context, event *events.Event) error {
	order, err := h.storeOrder.Execute(ctx, application.StoreOrderCommand{
		Detail: event.Detail,
		Status: domain.OrderStatusPaid,
	})
	if err != nil {
		return err
	}

	telemetry.RecordCounter(ctx, "orders_stored_total", "Order rows stored by status", 1,
		attribute.String("status", string(order.Status)),
	)
	return nil
}

// HandlePaymentFailed inserts the order row stamped PAYMENT_FAILED. The
// saga ends here for this order; the row records why.
func (h *OrderEventHandlers) HandlePaymentFailed(ctx context.Context, event *events.Event) error {
	order, err := h.storeOrder.Execute(ctx, application.StoreOrderCommand{
		Detail: event.Detail,
		Status: domain.OrderStatusPaymentFailed,
	})
	if err != nil {
		return err
	}

	telemetry.RecordCounter(ctx, "orders_stored_total", "Order rows stored by status", 1,
		attribute.String("status", string(order.Status)),
	)
	return nil
}

// HandleDeliveryStarted stamps the order DELIVERING.
func (h *OrderEventHandlers) HandleDeliveryStarted(ctx context.Context, event *events.Event) error {
	return h.stamp(ctx, event, domain.OrderStatusDelivering, domain.OrderStatusPaid)
}

// HandleDeliveryWasDelivered stamps the order DELIVERED and publishes the
// terminal event of the forward chain.
func (h *OrderEventHandlers) HandleDeliveryWasDelivered(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	order, err := h.updateOrderStatus.Execute(ctx, application.UpdateOrderStatusCommand{
		CustomerID: detail.CustomerID,
		OrderID:    detail.OrderID,
		To:         domain.OrderStatusDelivered,
		From:       []domain.OrderStatus{domain.OrderStatusDelivering},
	})
	if order != nil {
		snapshot := order.Snapshot()
		detail.Order = &snapshot
	}

	return saga.PublishOutcome(ctx, h.publisher, Source, events.OrderDelivered, "", detail, err)
}

// HandlePaymentCanceled stamps the order PAYMENT_CANCELED.
func (h *OrderEventHandlers) HandlePaymentCanceled(ctx context.Context, event *events.Event) error {
	return h.stamp(ctx, event, domain.OrderStatusPaymentCanceled,
		domain.OrderStatusPaid, domain.OrderStatusDelivering)
}

// HandleDeliveryWasCanceled stamps the order DELIVERY_CANCELED, the last
// step of the compensation chain. The bus may deliver this before the
// payment cancellation, so any pre-terminal status is an accepted prior.
func (h *OrderEventHandlers) HandleDeliveryWasCanceled(ctx context.Context, event *events.Event) error {
	return h.stamp(ctx, event, domain.OrderStatusDeliveryCanceled,
		domain.OrderStatusPaid, domain.OrderStatusDelivering, domain.OrderStatusPaymentCanceled)
}

// stamp applies a conditional status update. An order already past the
// expected prior statuses is a redelivery or an out-of-order arrival, not a
// fault.
func (h *OrderEventHandlers) stamp(ctx context.Context, event *events.Event, to domain.OrderStatus, from ...domain.OrderStatus) error {
	_, err := h.updateOrderStatus.Execute(ctx, application.UpdateOrderStatusCommand{
		CustomerID: event.Detail.CustomerID,
		OrderID:    event.Detail.OrderID,
		To:         to,
		From:       from,
	})
	if err != nil && !ledger.IsBusinessOutcome(err) {
		return err
	}
	return nil
}
