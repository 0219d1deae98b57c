package infrastructure

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/ordermesh/order-system/inventory-service/domain"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// PostgresItemRepository implements ItemRepository using PostgreSQL. Every
// transition is one parameterized WHERE-guarded UPDATE; the database's
// conditional-write guarantee is the only concurrency control, so two
// concurrent reserves of the last unit cannot both succeed.
type PostgresItemRepository struct {
	db *sqlx.DB
}

// NewPostgresItemRepository creates a new PostgresItemRepository
func NewPostgresItemRepository(db *sqlx.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

type postgresItem struct {
	ItemID    string `db:"item_id"`
	Available int64  `db:"available"`
	Reserved  int64  `db:"reserved"`
	Price     int64  `db:"price"`
	Currency  string `db:"currency"`
}

// Find finds an item by ID
func (r *PostgresItemRepository) Find(ctx context.Context, itemID models.ID) (*domain.Item, error) {
	query := `
		SELECT item_id, available, reserved, price, currency
		FROM inventory_items
		WHERE item_id = $1`

	var row postgresItem
	err := r.db.GetContext(ctx, &row, query, itemID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find item")
	}

	return toDomain(&row), nil
}

// Reserve moves one unit from available to reserved iff available > 0.
func (r *PostgresItemRepository) Reserve(ctx context.Context, itemID models.ID) (*domain.Item, error) {
	query := `
		UPDATE inventory_items
		SET available = available - 1, reserved = reserved + 1
		WHERE item_id = $1 AND available > 0
		RETURNING item_id, available, reserved, price, currency`

	return r.conditionalUpdate(ctx, query, itemID, "failed to reserve item")
}

// Unreserve moves one unit from reserved back to available iff reserved > 0.
func (r *PostgresItemRepository) Unreserve(ctx context.Context, itemID models.ID) (*domain.Item, error) {
	query := `
		UPDATE inventory_items
		SET available = available + 1, reserved = reserved - 1
		WHERE item_id = $1 AND reserved > 0
		RETURNING item_id, available, reserved, price, currency`

	return r.conditionalUpdate(ctx, query, itemID, "failed to unreserve item")
}

// Remove consumes one reserved unit iff reserved > 0.
func (r *PostgresItemRepository) Remove(ctx context.Context, itemID models.ID) (*domain.Item, error) {
	query := `
		UPDATE inventory_items
		SET reserved = reserved - 1
		WHERE item_id = $1 AND reserved > 0
		RETURNING item_id, available, reserved, price, currency`

	return r.conditionalUpdate(ctx, query, itemID, "failed to remove reserved item")
}

// Return puts one unit back to available, unconditionally for a known item.
func (r *PostgresItemRepository) Return(ctx context.Context, itemID models.ID) (*domain.Item, error) {
	query := `
		UPDATE inventory_items
		SET available = available + 1
		WHERE item_id = $1
		RETURNING item_id, available, reserved, price, currency`

	return r.conditionalUpdate(ctx, query, itemID, "failed to return item")
}

func (r *PostgresItemRepository) conditionalUpdate(ctx context.Context, query string, itemID models.ID, wrap string) (*domain.Item, error) {
	var row postgresItem
	err := r.db.GetContext(ctx, &row, query, itemID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrConditionNotMet
		}
		return nil, errors.Wrap(err, wrap)
	}
	return toDomain(&row), nil
}

func toDomain(row *postgresItem) *domain.Item {
	return &domain.Item{
		ItemID:    models.ID(row.ItemID),
		Available: row.Available,
		Reserved:  row.Reserved,
		Price:     models.NewMoney(row.Price, row.Currency),
	}
}
