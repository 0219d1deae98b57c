package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/ordermesh/order-system/order-service/domain"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL. The
// order row is keyed by customer and order ID; conditional status stamps
// are WHERE-guarded against the allowed prior statuses.
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

type postgresOrder struct {
	CustomerID      string    `db:"customer_id"`
	OrderID         string    `db:"order_id"`
	ItemID          string    `db:"item_id"`
	Status          string    `db:"status"`
	ItemPrice       int64     `db:"item_price"`
	DeliveryPrice   int64     `db:"delivery_price"`
	TotalPrice      int64     `db:"total_price"`
	Currency        string    `db:"currency"`
	PaymentID       string    `db:"payment_id"`
	DeliveryAddress string    `db:"delivery_address"`
	OrderDate       time.Time `db:"order_date"`
	UpdateDate      time.Time `db:"update_date"`
}

const orderColumns = `customer_id, order_id, item_id, status, item_price, delivery_price, total_price, currency, payment_id, delivery_address, order_date, update_date`

// Store inserts the order row.
func (r *PostgresOrderRepository) Store(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES (:customer_id, :order_id, :item_id, :status, :item_price, :delivery_price, :total_price, :currency, :payment_id, :delivery_address, :order_date, :update_date)`

	if _, err := r.db.NamedExecContext(ctx, query, orderToRow(order)); err != nil {
		return errors.Wrap(err, "failed to store order")
	}
	return nil
}

// Find finds an order by customer and order ID
func (r *PostgresOrderRepository) Find(ctx context.Context, customerID, orderID models.ID) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1 AND order_id = $2`

	var row postgresOrder
	err := r.db.GetContext(ctx, &row, query, customerID.String(), orderID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find order")
	}
	return orderToDomain(&row), nil
}

// UpdateStatus stamps a new status. With prior statuses given the stamp is
// conditional and a terminal or diverged row yields ErrConditionNotMet.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, customerID, orderID models.ID, to domain.OrderStatus, now time.Time, from ...domain.OrderStatus) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET status = $3, update_date = $4
		WHERE customer_id = $1 AND order_id = $2`
	args := []interface{}{customerID.String(), orderID.String(), string(to), now}

	if len(from) > 0 {
		prior := make([]string, len(from))
		for i, s := range from {
			prior[i] = string(s)
		}
		query += ` AND status = ANY($5)`
		args = append(args, pq.Array(prior))
	}
	query += `
		RETURNING ` + orderColumns

	var row postgresOrder
	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrConditionNotMet
		}
		return nil, errors.Wrap(err, "failed to update order status")
	}
	return orderToDomain(&row), nil
}

func orderToRow(order *domain.Order) postgresOrder {
	return postgresOrder{
		CustomerID:      order.CustomerID.String(),
		OrderID:         order.OrderID.String(),
		ItemID:          order.ItemID.String(),
		Status:          string(order.Status),
		ItemPrice:       order.ItemPrice.Amount,
		DeliveryPrice:   order.DeliveryPrice.Amount,
		TotalPrice:      order.TotalPrice.Amount,
		Currency:        order.TotalPrice.Currency,
		PaymentID:       order.PaymentID.String(),
		DeliveryAddress: order.DeliveryAddress,
		OrderDate:       order.OrderDate,
		UpdateDate:      order.UpdateDate,
	}
}

func orderToDomain(row *postgresOrder) *domain.Order {
	return &domain.Order{
		CustomerID:      models.ID(row.CustomerID),
		OrderID:         models.ID(row.OrderID),
		ItemID:          models.ID(row.ItemID),
		Status:          domain.OrderStatus(row.Status),
		ItemPrice:       models.NewMoney(row.ItemPrice, row.Currency),
		DeliveryPrice:   models.NewMoney(row.DeliveryPrice, row.Currency),
		TotalPrice:      models.NewMoney(row.TotalPrice, row.Currency),
		PaymentID:       models.ID(row.PaymentID),
		DeliveryAddress: row.DeliveryAddress,
		OrderDate:       row.OrderDate,
		UpdateDate:      row.UpdateDate,
	}
}
