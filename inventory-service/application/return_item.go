package application

import (
	"context"

	"github.com/ordermesh/order-system/inventory-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// ReturnItemCommand represents the command to return a unit to stock
type ReturnItemCommand struct {
	ItemID models.ID `json:"itemId"`
}

// ReturnItem is the compensation for a canceled order: the unit goes back to
// available unconditionally.
type ReturnItem struct {
	items domain.ItemRepository
}

// NewReturnItem creates a new ReturnItem use case
func NewReturnItem(items domain.ItemRepository) *ReturnItem {
	return &ReturnItem{items: items}
}

// Execute increments available.
func (uc *ReturnItem) Execute(ctx context.Context, cmd *ReturnItemCommand) (*domain.Item, error) {
	if cmd.ItemID.IsZero() {
		return nil, errors.New("item ID is required")
	}
	return uc.items.Return(ctx, cmd.ItemID)
}
