package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/courtbook/libs/db"
)

// PaymentSession tracks one gateway checkout attempt for a booking.
type PaymentSession struct {
	TransactionID     string    `json:"transactionId"`
	BookingID         string    `json:"bookingId"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	ProviderSessionID string    `json:"-"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

const (
	SessionInitiated = "initiated"
	SessionPaid      = "paid"
	SessionFailed    = "failed"
)

type PaymentRepository struct {
	pool *db.Pool
}

func NewPaymentRepository(pool *db.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *PaymentRepository) Create(ctx context.Context, tx pgx.Tx, s PaymentSession) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payment_sessions (transaction_id, booking_id, amount, currency, provider_session_id, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`, s.TransactionID, s.BookingID, s.Amount, s.Currency, s.ProviderSessionID, s.Status)
	return err
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (PaymentSession, error) {
	var s PaymentSession
	err := r.pool.QueryRow(ctx, `
		SELECT transaction_id, booking_id, amount, currency, COALESCE(provider_session_id, ''), status, created_at, updated_at
		FROM payment_sessions
		WHERE transaction_id = $1
	`, transactionID).Scan(
		&s.TransactionID, &s.BookingID, &s.Amount, &s.Currency, &s.ProviderSessionID, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return PaymentSession{}, err
	}
	return s, nil
}

func (r *PaymentRepository) SetStatus(ctx context.Context, tx pgx.Tx, transactionID, status string) error {
	_, err := tx.Exec(ctx, `
		UPDATE payment_sessions
		SET status = $2,
			updated_at = now()
		WHERE transaction_id = $1
	`, transactionID, status)
	return err
}
