package infrastructure

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/ordermesh/order-system/customer-service/domain"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// PostgresCustomerRepository implements CustomerRepository using PostgreSQL.
type PostgresCustomerRepository struct {
	db *sqlx.DB
}

// NewPostgresCustomerRepository creates a new PostgresCustomerRepository
func NewPostgresCustomerRepository(db *sqlx.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

type postgresCustomer struct {
	CustomerID string `db:"customer_id"`
	Name       string `db:"name"`
	Address    string `db:"address"`
}

// Find finds a customer by ID
func (r *PostgresCustomerRepository) Find(ctx context.Context, customerID models.ID) (*domain.Customer, error) {
	query := `
		SELECT customer_id, name, address
		FROM customers
		WHERE customer_id = $1`

	var row postgresCustomer
	err := r.db.GetContext(ctx, &row, query, customerID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find customer")
	}

	return &domain.Customer{
		CustomerID: models.ID(row.CustomerID),
		Name:       row.Name,
		Address:    row.Address,
	}, nil
}
