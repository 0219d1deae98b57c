package handlers

import (
	"context"

	"github.com/ordermesh/order-system/inventory-service/application"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/saga"
	"go.uber.org/zap"
)

// Source identifies this service on published events.
const Source = "inventory-service"

// InventoryEventHandlers reacts to the saga events the inventory service
// owns a transition for. Every transition publishes exactly one event of its
// declared pair once the counter move has committed.
type InventoryEventHandlers struct {
	describeItem  *application.DescribeItem
	reserveItem   *application.ReserveItem
	unreserveItem *application.UnreserveItem
	removeItem    *application.RemoveItem
	returnItem    *application.ReturnItem
	publisher     events.Publisher
}

// NewInventoryEventHandlers creates new inventory event handlers
func NewInventoryEventHandlers(
	describeItem *application.DescribeItem,
	reserveItem *application.ReserveItem,
	unreserveItem *application.UnreserveItem,
	removeItem *application.RemoveItem,
	returnItem *application.ReturnItem,
	publisher events.Publisher,
) *InventoryEventHandlers {
	return &InventoryEventHandlers{
		describeItem:  describeItem,
		reserveItem:   reserveItem,
		unreserveItem: unreserveItem,
		removeItem:    removeItem,
		returnItem:    returnItem,
		publisher:     publisher,
	}
}

// Routes returns the static event table for this service.
func (h *InventoryEventHandlers) Routes() map[events.EventType]events.HandlerFunc {
	return map[events.EventType]events.HandlerFunc{
		events.OrderCreated:  h.HandleOrderCreated,
		events.ItemReserved:  h.HandleItemReserved,
		events.PaymentMade:   h.HandlePaymentMade,
		events.PaymentFailed: h.HandlePaymentFailed,
		events.OrderCanceled: h.HandleOrderCanceled,
	}
}

// Router builds the event router for this service.
func (h *InventoryEventHandlers) Router(log *zap.Logger, opts ...events.RouterOption) *events.Router {
	return events.NewRouter(Source, h.Routes(), log, opts...)
}

// HandleOrderCreated reserves one unit for the new order.
func (h *InventoryEventHandlers) HandleOrderCreated(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	item, err := h.reserveItem.Execute(ctx, &application.ReserveItemCommand{ItemID: detail.ItemID})
	if item != nil {
		snapshot := item.Snapshot()
		detail.Item = &snapshot
	}

	return saga.PublishOutcome(ctx, h.publisher, Source, events.ItemReserved, events.ItemNotAvailable, detail, err)
}

// HandleItemReserved enriches the saga with the full item row, price included.
func (h *InventoryEventHandlers) HandleItemReserved(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	item, err := h.describeItem.Execute(ctx, &application.DescribeItemQuery{ItemID: detail.ItemID})
	if item != nil {
		snapshot := item.Snapshot()
		detail.Item = &snapshot
	}

	// A reserved item that cannot be described has no declared KO event;
	// the saga stalls rather than compensating.
	return saga.PublishOutcome(ctx, h.publisher, Source, events.ItemDescribed, "", detail, err)
}

// HandlePaymentMade consumes the reserved unit for good.
func (h *InventoryEventHandlers) HandlePaymentMade(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	item, err := h.removeItem.Execute(ctx, &application.RemoveItemCommand{ItemID: detail.ItemID})
	if item != nil {
		snapshot := item.Snapshot()
		detail.Item = &snapshot
	}

	return saga.PublishOutcome(ctx, h.publisher, Source, events.ItemRemoved, "", detail, err)
}

// HandlePaymentFailed compensates the reservation after a declined payment.
func (h *InventoryEventHandlers) HandlePaymentFailed(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	item, err := h.unreserveItem.Execute(ctx, &application.UnreserveItemCommand{ItemID: detail.ItemID})
	if item != nil {
		snapshot := item.Snapshot()
		detail.Item = &snapshot
	}

	return saga.PublishOutcome(ctx, h.publisher, Source, events.ItemUnreserved, "", detail, err)
}

// HandleOrderCanceled returns the unit to available stock.
func (h *InventoryEventHandlers) HandleOrderCanceled(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	item, err := h.returnItem.Execute(ctx, &application.ReturnItemCommand{ItemID: detail.ItemID})
	if item != nil {
		snapshot := item.Snapshot()
		detail.Item = &snapshot
	}

	return saga.PublishOutcome(ctx, h.publisher, Source, events.ItemReturned, "", detail, err)
}
