package domain

import (
	"context"

	"github.com/ordermesh/order-system/shared/models"
)

// Item is the inventory row for one catalog entry. There is no single status
// enum: the state machine is the pair of counters, and every transition is a
// conditional counter move. available + reserved is conserved across
// reserve/unreserve cycles; remove consumes a unit, return restores one.
type Item struct {
	ItemID    models.ID    `json:"itemId"`
	Available int64        `json:"available"`
	Reserved  int64        `json:"reserved"`
	Price     models.Money `json:"price"`
}

// Snapshot returns the copy of the item carried inside event payloads.
func (i *Item) Snapshot() models.ItemSnapshot {
	return models.ItemSnapshot{
		ItemID:    i.ItemID,
		Available: i.Available,
		Reserved:  i.Reserved,
		Price:     i.Price,
	}
}

// ItemRepository owns the conditional counter transitions. Each transition
// returns the updated row, or ledger.ErrConditionNotMet when its precondition
// does not hold; Find returns ledger.ErrNotFound for an unknown item.
type ItemRepository interface {
	Find(ctx context.Context, itemID models.ID) (*Item, error)

	// Reserve: available > 0 -> available-1, reserved+1.
	Reserve(ctx context.Context, itemID models.ID) (*Item, error)

	// Unreserve: reserved > 0 -> available+1, reserved-1.
	Unreserve(ctx context.Context, itemID models.ID) (*Item, error)

	// Remove: reserved > 0 -> reserved-1. The unit is consumed.
	Remove(ctx context.Context, itemID models.ID) (*Item, error)

	// Return: available+1, unconditional.
	Return(ctx context.Context, itemID models.ID) (*Item, error)
}
