package application

import (
	"context"

	"github.com/ordermesh/order-system/inventory-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// ReserveItemCommand represents the command to reserve one unit of an item
type ReserveItemCommand struct {
	ItemID models.ID `json:"itemId"`
}

// ReserveItem use case
type ReserveItem struct {
	items domain.ItemRepository
}

// NewReserveItem creates a new ReserveItem use case
func NewReserveItem(items domain.ItemRepository) *ReserveItem {
	return &ReserveItem{items: items}
}

// Execute moves one unit from available to reserved. Stock being absent is a
// business outcome: it surfaces as ledger.ErrConditionNotMet, never a fault.
func (uc *ReserveItem) Execute(ctx context.Context, cmd *ReserveItemCommand) (*domain.Item, error) {
	if cmd.ItemID.IsZero() {
		return nil, errors.New("item ID is required")
	}
	return uc.items.Reserve(ctx, cmd.ItemID)
}
