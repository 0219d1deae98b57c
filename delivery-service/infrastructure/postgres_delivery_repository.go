package infrastructure

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/ordermesh/order-system/delivery-service/domain"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// PostgresDeliveryRepository implements DeliveryRepository using PostgreSQL.
// Terminal transitions are WHERE-guarded UPDATEs against DELIVERING, so a
// delivery can be delivered or canceled exactly once.
type PostgresDeliveryRepository struct {
	db *sqlx.DB
}

// NewPostgresDeliveryRepository creates a new PostgresDeliveryRepository
func NewPostgresDeliveryRepository(db *sqlx.DB) *PostgresDeliveryRepository {
	return &PostgresDeliveryRepository{db: db}
}

type postgresDelivery struct {
	CustomerID string `db:"customer_id"`
	OrderID    string `db:"order_id"`
	Address    string `db:"address"`
	Status     string `db:"status"`
	Price      int64  `db:"price"`
	Currency   string `db:"currency"`
}

// Save inserts a new delivery row.
func (r *PostgresDeliveryRepository) Save(ctx context.Context, delivery *domain.Delivery) error {
	query := `
		INSERT INTO deliveries (customer_id, order_id, address, status, price, currency)
		VALUES (:customer_id, :order_id, :address, :status, :price, :currency)`

	row := postgresDelivery{
		CustomerID: delivery.CustomerID.String(),
		OrderID:    delivery.OrderID.String(),
		Address:    delivery.Address,
		Status:     string(delivery.Status),
		Price:      delivery.Price.Amount,
		Currency:   delivery.Price.Currency,
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return errors.Wrap(err, "failed to save delivery")
	}
	return nil
}

// Find finds a delivery by customer and order ID
func (r *PostgresDeliveryRepository) Find(ctx context.Context, customerID, orderID models.ID) (*domain.Delivery, error) {
	query := `
		SELECT customer_id, order_id, address, status, price, currency
		FROM deliveries
		WHERE customer_id = $1 AND order_id = $2`

	var row postgresDelivery
	err := r.db.GetContext(ctx, &row, query, customerID.String(), orderID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find delivery")
	}
	return deliveryToDomain(&row), nil
}

// Delivered marks the delivery DELIVERED iff it is still DELIVERING.
func (r *PostgresDeliveryRepository) Delivered(ctx context.Context, customerID, orderID models.ID) (*domain.Delivery, error) {
	query := `
		UPDATE deliveries
		SET status = 'DELIVERED'
		WHERE customer_id = $1 AND order_id = $2 AND status = 'DELIVERING'
		RETURNING customer_id, order_id, address, status, price, currency`

	return r.conditionalUpdate(ctx, query, customerID, orderID, "failed to mark delivery delivered")
}

// Cancel marks the delivery CANCELED iff it is still DELIVERING.
func (r *PostgresDeliveryRepository) Cancel(ctx context.Context, customerID, orderID models.ID) (*domain.Delivery, error) {
	query := `
		UPDATE deliveries
		SET status = 'CANCELED'
		WHERE customer_id = $1 AND order_id = $2 AND status = 'DELIVERING'
		RETURNING customer_id, order_id, address, status, price, currency`

	return r.conditionalUpdate(ctx, query, customerID, orderID, "failed to cancel delivery")
}

func (r *PostgresDeliveryRepository) conditionalUpdate(ctx context.Context, query string, customerID, orderID models.ID, wrap string) (*domain.Delivery, error) {
	var row postgresDelivery
	err := r.db.GetContext(ctx, &row, query, customerID.String(), orderID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrConditionNotMet
		}
		return nil, errors.Wrap(err, wrap)
	}
	return deliveryToDomain(&row), nil
}

func deliveryToDomain(row *postgresDelivery) *domain.Delivery {
	return &domain.Delivery{
		CustomerID: models.ID(row.CustomerID),
		OrderID:    models.ID(row.OrderID),
		Address:    row.Address,
		Status:     domain.DeliveryStatus(row.Status),
		Price:      models.NewMoney(row.Price, row.Currency),
	}
}
