package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ordermesh/order-system/inventory-service/application"
	"github.com/ordermesh/order-system/inventory-service/domain"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
)

// InventoryHandlers contains inventory HTTP handlers. The sync surface is for
// direct testing and administration; it performs the same local transitions
// as the saga handlers but publishes nothing.
type InventoryHandlers struct {
	describeItem  *application.DescribeItem
	reserveItem   *application.ReserveItem
	unreserveItem *application.UnreserveItem
	removeItem    *application.RemoveItem
	returnItem    *application.ReturnItem
}

// NewInventoryHandlers creates new inventory handlers
func NewInventoryHandlers(
	describeItem *application.DescribeItem,
	reserveItem *application.ReserveItem,
	unreserveItem *application.UnreserveItem,
	removeItem *application.RemoveItem,
	returnItem *application.ReturnItem,
) *InventoryHandlers {
	return &InventoryHandlers{
		describeItem:  describeItem,
		reserveItem:   reserveItem,
		unreserveItem: unreserveItem,
		removeItem:    removeItem,
		returnItem:    returnItem,
	}
}

// HandleAction dispatches on the action path segment. Unknown actions return
// 501 without side effects.
func (h *InventoryHandlers) HandleAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	itemID := models.ID(chi.URLParam(r, "itemId"))
	ctx := r.Context()

	var (
		item *domain.Item
		err  error
	)

	switch action {
	case "describe":
		item, err = h.describeItem.Execute(ctx, &application.DescribeItemQuery{ItemID: itemID})
	case "reserve":
		item, err = h.reserveItem.Execute(ctx, &application.ReserveItemCommand{ItemID: itemID})
	case "unreserve":
		item, err = h.unreserveItem.Execute(ctx, &application.UnreserveItemCommand{ItemID: itemID})
	case "remove":
		item, err = h.removeItem.Execute(ctx, &application.RemoveItemCommand{ItemID: itemID})
	case "return":
		item, err = h.returnItem.Execute(ctx, &application.ReturnItemCommand{ItemID: itemID})
	default:
		http.Error(w, fmt.Sprintf("Action '%s' not implemented.", action), http.StatusNotImplemented)
		return
	}

	if err != nil {
		if ledger.IsBusinessOutcome(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/items/{itemId}/{action}", h.HandleAction)
}
