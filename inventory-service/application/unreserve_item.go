package application

import (
	"context"

	"github.com/ordermesh/order-system/inventory-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// UnreserveItemCommand represents the command to release a reservation
type UnreserveItemCommand struct {
	ItemID models.ID `json:"itemId"`
}

// UnreserveItem is the compensation for a successful reserve once a
// downstream step has failed.
type UnreserveItem struct {
	items domain.ItemRepository
}

// NewUnreserveItem creates a new UnreserveItem use case
func NewUnreserveItem(items domain.ItemRepository) *UnreserveItem {
	return &UnreserveItem{items: items}
}

// Execute moves one unit from reserved back to available.
func (uc *UnreserveItem) Execute(ctx context.Context, cmd *UnreserveItemCommand) (*domain.Item, error) {
	if cmd.ItemID.IsZero() {
		return nil, errors.New("item ID is required")
	}
	return uc.items.Unreserve(ctx, cmd.ItemID)
}
