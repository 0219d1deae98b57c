package application

import (
	"context"

	"github.com/ordermesh/order-system/inventory-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// RemoveItemCommand represents the command to consume a reserved unit
type RemoveItemCommand struct {
	ItemID models.ID `json:"itemId"`
}

// RemoveItem finalizes consumption after payment: the reserved unit leaves
// the inventory for good.
type RemoveItem struct {
	items domain.ItemRepository
}

// NewRemoveItem creates a new RemoveItem use case
func NewRemoveItem(items domain.ItemRepository) *RemoveItem {
	return &RemoveItem{items: items}
}

// Execute decrements reserved, requiring reserved > 0.
func (uc *RemoveItem) Execute(ctx context.Context, cmd *RemoveItemCommand) (*domain.Item, error) {
	if cmd.ItemID.IsZero() {
		return nil, errors.New("item ID is required")
	}
	return uc.items.Remove(ctx, cmd.ItemID)
}
