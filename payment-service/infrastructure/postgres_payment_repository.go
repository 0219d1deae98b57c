package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ordermesh/order-system/payment-service/domain"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
)

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	db *sqlx.DB
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(db *sqlx.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

type postgresPayment struct {
	PaymentID     string    `db:"payment_id"`
	PaymentMethod string    `db:"payment_method"`
	Amount        int64     `db:"amount"`
	Currency      string    `db:"currency"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Save inserts a payment record
func (r *PostgresPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			payment_id, payment_method, amount, currency, status,
			created_at, updated_at
		) VALUES (
			:payment_id, :payment_method, :amount, :currency, :status,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, toPostgres(payment))
	if err != nil {
		return errors.Wrap(err, "failed to insert payment")
	}
	return nil
}

// Find finds a payment by ID
func (r *PostgresPaymentRepository) Find(ctx context.Context, paymentID models.ID) (*domain.Payment, error) {
	query := `
		SELECT payment_id, payment_method, amount, currency, status, created_at, updated_at
		FROM payments
		WHERE payment_id = $1`

	var row postgresPayment
	err := r.db.GetContext(ctx, &row, query, paymentID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find payment")
	}

	return toDomain(&row), nil
}

// Cancel transitions PAID -> CANCELED; zero rows means the payment was not
// currently PAID.
func (r *PostgresPaymentRepository) Cancel(ctx context.Context, paymentID models.ID) (*domain.Payment, error) {
	query := `
		UPDATE payments
		SET status = 'CANCELED', updated_at = $2
		WHERE payment_id = $1 AND status = 'PAID'
		RETURNING payment_id, payment_method, amount, currency, status, created_at, updated_at`

	var row postgresPayment
	err := r.db.GetContext(ctx, &row, query, paymentID.String(), time.Now())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrConditionNotMet
		}
		return nil, errors.Wrap(err, "failed to cancel payment")
	}

	return toDomain(&row), nil
}

func toPostgres(payment *domain.Payment) *postgresPayment {
	return &postgresPayment{
		PaymentID:     payment.PaymentID.String(),
		PaymentMethod: payment.PaymentMethod,
		Amount:        payment.Amount.Amount,
		Currency:      payment.Amount.Currency,
		Status:        string(payment.Status),
		CreatedAt:     payment.Timestamps.CreatedAt,
		UpdatedAt:     payment.Timestamps.UpdatedAt,
	}
}

func toDomain(row *postgresPayment) *domain.Payment {
	return &domain.Payment{
		PaymentID:     models.ID(row.PaymentID),
		PaymentMethod: row.PaymentMethod,
		Amount:        models.NewMoney(row.Amount, row.Currency),
		Status:        domain.PaymentStatus(row.Status),
		Timestamps: models.Timestamps{
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}
}
