package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ordermesh/order-system/payment-service/application"
	"github.com/ordermesh/order-system/payment-service/domain"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// PaymentHandlers contains payment HTTP handlers. The path's first segment is
// an amount for pay and a payment ID for describe and cancel, matching the
// action-style surface of the other services.
type PaymentHandlers struct {
	makePayment     *application.MakePayment
	describePayment *application.DescribePayment
	cancelPayment   *application.CancelPayment
	currency        string
}

// NewPaymentHandlers creates new payment handlers
func NewPaymentHandlers(
	makePayment *application.MakePayment,
	describePayment *application.DescribePayment,
	cancelPayment *application.CancelPayment,
	currency string,
) *PaymentHandlers {
	return &PaymentHandlers{
		makePayment:     makePayment,
		describePayment: describePayment,
		cancelPayment:   cancelPayment,
		currency:        currency,
	}
}

// HandleAction dispatches on the action path segment.
func (h *PaymentHandlers) HandleAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	what := chi.URLParam(r, "what")
	ctx := r.Context()

	switch action {
	case "pay":
		amount, err := strconv.ParseInt(what, 10, 64)
		if err != nil {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}

		payment, err := h.makePayment.Execute(ctx, &application.MakePaymentCommand{
			Amount: models.NewMoney(amount, h.currency),
		})
		if errors.Is(err, domain.ErrPaymentDeclined) {
			writeJSON(w, http.StatusUnauthorized, payment)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, payment)

	case "describe":
		payment, err := h.describePayment.Execute(ctx, &application.DescribePaymentQuery{PaymentID: models.ID(what)})
		h.writeResult(w, payment, err)

	case "cancel":
		payment, err := h.cancelPayment.Execute(ctx, &application.CancelPaymentCommand{PaymentID: models.ID(what)})
		h.writeResult(w, payment, err)

	default:
		http.Error(w, fmt.Sprintf("Action '%s' not implemented.", action), http.StatusNotImplemented)
	}
}

func (h *PaymentHandlers) writeResult(w http.ResponseWriter, payment *domain.Payment, err error) {
	if err != nil {
		if ledger.IsBusinessOutcome(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RegisterRoutes registers payment routes
func (h *PaymentHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/payments/{what}/{action}", h.HandleAction)
}
