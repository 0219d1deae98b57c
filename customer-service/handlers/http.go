package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ordermesh/order-system/customer-service/application"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
)

// CustomerHandlers contains customer HTTP handlers.
type CustomerHandlers struct {
	describeCustomer *application.DescribeCustomer
}

// NewCustomerHandlers creates new customer handlers
func NewCustomerHandlers(describeCustomer *application.DescribeCustomer) *CustomerHandlers {
	return &CustomerHandlers{describeCustomer: describeCustomer}
}

// HandleAction dispatches on the action path segment.
func (h *CustomerHandlers) HandleAction(w http.ResponseWriter, r *http.Request) {
	customerID := models.ID(chi.URLParam(r, "customerId"))
	action := chi.URLParam(r, "action")
	ctx := r.Context()

	switch action {
	case "describe":
		customer, err := h.describeCustomer.Execute(ctx, application.DescribeCustomerQuery{CustomerID: customerID})
		if err != nil {
			if ledger.IsBusinessOutcome(err) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, customer)

	default:
		http.Error(w, fmt.Sprintf("Action '%s' not implemented.", action), http.StatusNotImplemented)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RegisterRoutes registers customer routes
func (h *CustomerHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/customers/{customerId}/{action}", h.HandleAction)
}
