package application

import (
	"context"

	"github.com/ordermesh/order-system/inventory-service/domain"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// DescribeItemQuery represents the query to describe an item
type DescribeItemQuery struct {
	ItemID models.ID `json:"itemId"`
}

// DescribeItem use case
type DescribeItem struct {
	items domain.ItemRepository
}

// NewDescribeItem creates a new DescribeItem use case
func NewDescribeItem(items domain.ItemRepository) *DescribeItem {
	return &DescribeItem{items: items}
}

// Execute returns the item row, or ledger.ErrNotFound.
func (uc *DescribeItem) Execute(ctx context.Context, query *DescribeItemQuery) (*domain.Item, error) {
	if query.ItemID.IsZero() {
		return nil, errors.New("item ID is required")
	}
	return uc.items.Find(ctx, query.ItemID)
}
