package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ordermesh/order-system/delivery-service/application"
	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
)

// DeliveryHandlers contains delivery HTTP handlers. Deliveries are
// addressed by customer and order ID; estimate takes the destination
// address as a query parameter.
type DeliveryHandlers struct {
	estimateDelivery *application.EstimateDelivery
	startDelivery    *application.StartDelivery
	describeDelivery *application.DescribeDelivery
	completeDelivery *application.CompleteDelivery
	cancelDelivery   *application.CancelDelivery
}

// NewDeliveryHandlers creates new delivery handlers
func NewDeliveryHandlers(
	estimateDelivery *application.EstimateDelivery,
	startDelivery *application.StartDelivery,
	describeDelivery *application.DescribeDelivery,
	completeDelivery *application.CompleteDelivery,
	cancelDelivery *application.CancelDelivery,
) *DeliveryHandlers {
	return &DeliveryHandlers{
		estimateDelivery: estimateDelivery,
		startDelivery:    startDelivery,
		describeDelivery: describeDelivery,
		completeDelivery: completeDelivery,
		cancelDelivery:   cancelDelivery,
	}
}

// HandleAction dispatches on the action path segment.
func (h *DeliveryHandlers) HandleAction(w http.ResponseWriter, r *http.Request) {
	customerID := models.ID(chi.URLParam(r, "customerId"))
	orderID := models.ID(chi.URLParam(r, "orderId"))
	action := chi.URLParam(r, "action")
	ctx := r.Context()

	switch action {
	case "estimate":
		delivery, err := h.estimateDelivery.Execute(ctx, application.EstimateDeliveryQuery{
			CustomerID: customerID,
			OrderID:    orderID,
			Address:    r.URL.Query().Get("address"),
		})
		h.writeResult(w, delivery, err)

	case "start":
		delivery, err := h.startDelivery.Execute(ctx, application.StartDeliveryCommand{
			CustomerID: customerID,
			OrderID:    orderID,
			Address:    r.URL.Query().Get("address"),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, delivery)

	case "describe":
		delivery, err := h.describeDelivery.Execute(ctx, application.DescribeDeliveryQuery{
			CustomerID: customerID,
			OrderID:    orderID,
		})
		h.writeResult(w, delivery, err)

	case "delivered":
		delivery, err := h.completeDelivery.Execute(ctx, application.CompleteDeliveryCommand{
			CustomerID: customerID,
			OrderID:    orderID,
		})
		h.writeResult(w, delivery, err)

	case "cancel":
		delivery, err := h.cancelDelivery.Execute(ctx, application.CancelDeliveryCommand{
			CustomerID: customerID,
			OrderID:    orderID,
		})
		h.writeResult(w, delivery, err)

	default:
		http.Error(w, fmt.Sprintf("Action '%s' not implemented.", action), http.StatusNotImplemented)
	}
}

func (h *DeliveryHandlers) writeResult(w http.ResponseWriter, delivery *domain.Delivery, err error) {
	if err != nil {
		if ledger.IsBusinessOutcome(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, delivery)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RegisterRoutes registers delivery routes
func (h *DeliveryHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/deliveries/{customerId}/{orderId}/{action}", h.HandleAction)
}
