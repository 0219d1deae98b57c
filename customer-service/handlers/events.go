package handlers

import (
	"context"

	"github.com/ordermesh/order-system/customer-service/application"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/saga"
	"go.uber.org/zap"
)

// Source identifies this service on published events.
const Source = "customer-service"

// CustomerEventHandlers reacts to the saga events the customer service owns
// a transition for.
type CustomerEventHandlers struct {
	describeCustomer *application.DescribeCustomer
	publisher        events.Publisher
}

// NewCustomerEventHandlers creates new customer event handlers
func NewCustomerEventHandlers(describeCustomer *application.DescribeCustomer, publisher events.Publisher) *CustomerEventHandlers {
	return &CustomerEventHandlers{describeCustomer: describeCustomer, publisher: publisher}
}

// Routes returns the static event table for this service.
func (h *CustomerEventHandlers) Routes() map[events.EventType]events.HandlerFunc {
	return map[events.EventType]events.HandlerFunc{
		events.ItemDescribed: h.HandleItemDescribed,
	}
}

// Router builds the event router for this service.
func (h *CustomerEventHandlers) Router(log *zap.Logger, opts ...events.RouterOption) *events.Router {
	return events.NewRouter(Source, h.Routes(), log, opts...)
}

// HandleItemDescribed attaches the customer record to the order, including
// the delivery address the rest of the saga routes and prices against.
func (h *CustomerEventHandlers) HandleItemDescribed(ctx context.Context, event *events.Event) error {
	detail := event.Detail

	customer, err := h.describeCustomer.Execute(ctx, application.DescribeCustomerQuery{
		CustomerID: detail.CustomerID,
	})
	if customer != nil {
		snapshot := customer.Snapshot()
		detail.Customer = &snapshot
		detail.Address = customer.Address
	}

	return saga.PublishOutcome(ctx, h.publisher, Source, events.CustomerDescribed, "", detail, err)
}
