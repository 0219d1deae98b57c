package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ordermesh/order-system/order-service/application"
	"github.com/ordermesh/order-system/order-service/domain"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
)

// OrderHandlers contains order HTTP handlers. Create takes the item ID in
// the order-ID path position since no order exists yet.
type OrderHandlers struct {
	createOrder      *application.CreateOrder
	describeOrder    *application.DescribeOrder
	cancelOrder      *application.CancelOrder
	confirmDelivered *application.ConfirmDelivered
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(
	createOrder *application.CreateOrder,
	describeOrder *application.DescribeOrder,
	cancelOrder *application.CancelOrder,
	confirmDelivered *application.ConfirmDelivered,
) *OrderHandlers {
	return &OrderHandlers{
		createOrder:      createOrder,
		describeOrder:    describeOrder,
		cancelOrder:      cancelOrder,
		confirmDelivered: confirmDelivered,
	}
}

// HandleAction dispatches on the action path segment.
func (h *OrderHandlers) HandleAction(w http.ResponseWriter, r *http.Request) {
	customerID := models.ID(chi.URLParam(r, "customerId"))
	what := chi.URLParam(r, "what")
	action := chi.URLParam(r, "action")
	ctx := r.Context()

	switch action {
	case "create":
		result, err := h.createOrder.Execute(ctx, application.CreateOrderCommand{
			CustomerID: customerID,
			ItemID:     models.ID(what),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, result)

	case "describe":
		order, err := h.describeOrder.Execute(ctx, application.DescribeOrderQuery{
			CustomerID: customerID,
			OrderID:    models.ID(what),
		})
		h.writeResult(w, order, err)

	case "cancel":
		order, err := h.cancelOrder.Execute(ctx, application.CancelOrderCommand{
			CustomerID: customerID,
			OrderID:    models.ID(what),
		})
		h.writeResult(w, order, err)

	case "delivered":
		order, err := h.confirmDelivered.Execute(ctx, application.ConfirmDeliveredCommand{
			CustomerID: customerID,
			OrderID:    models.ID(what),
		})
		h.writeResult(w, order, err)

	default:
		http.Error(w, fmt.Sprintf("Action '%s' not implemented.", action), http.StatusNotImplemented)
	}
}

func (h *OrderHandlers) writeResult(w http.ResponseWriter, order *domain.Order, err error) {
	if err != nil {
		if ledger.IsBusinessOutcome(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RegisterRoutes registers order routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/orders/{customerId}/{what}/{action}", h.HandleAction)
}
