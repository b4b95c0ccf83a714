package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"

	"github.com/Domenick1991/domora/internal/domain"
)

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, user_id, session_id, amount, currency, payment_status, metadata, created_at, updated_at`

func (r *PGPaymentRepository) Create(ctx context.Context, t *domain.PaymentTransaction) error {
	metadata := t.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	_, err := r.db.Exec(ctx, `INSERT INTO payment_transactions (`+paymentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.BookingID, t.UserID, t.SessionID, t.Amount, t.Currency, t.PaymentStatus, metadata, t.CreatedAt, t.UpdatedAt)
	return wrapPG(err, "payment transaction for session %q", t.SessionID)
}

func (r *PGPaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error) {
	var t domain.PaymentTransaction
	err := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_transactions WHERE session_id=$1`, sessionID).
		Scan(&t.ID, &t.BookingID, &t.UserID, &t.SessionID, &t.Amount, &t.Currency, &t.PaymentStatus, &t.Metadata, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, wrapPG(err, "payment transaction for session %q", sessionID)
	}
	return &t, nil
}

func (r *PGPaymentRepository) MarkCaptured(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	return r.settle(ctx, sessionID, domain.PaymentStatusCaptured, at)
}

func (r *PGPaymentRepository) MarkFailed(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	return r.settle(ctx, sessionID, domain.PaymentStatusFailed, at)
}

// settle applies the transaction and booking writes in one transaction. The
// booking row is written only while its payment is unsettled, and only a
// capture confirms the booking.
func (r *PGPaymentRepository) settle(ctx context.Context, sessionID string, status domain.PaymentStatus, at time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, errors.Trace(err)
	}
	defer tx.Rollback(ctx)

	var bookingID string
	err = tx.QueryRow(ctx, `SELECT booking_id FROM payment_transactions WHERE session_id=$1 FOR UPDATE`, sessionID).Scan(&bookingID)
	if err != nil {
		return false, wrapPG(err, "payment transaction for session %q", sessionID)
	}
	if _, err := tx.Exec(ctx, `UPDATE payment_transactions SET payment_status=$1, updated_at=$2 WHERE session_id=$3 AND payment_status = ANY($4)`,
		status, at, sessionID, unsettledPaymentStatuses); err != nil {
		return false, errors.Annotatef(err, "update payment transaction %q", sessionID)
	}

	query, args := settleBookingQuery(bookingID, status, at)
	cmd, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, errors.Annotatef(err, "update booking %q", bookingID)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, errors.Trace(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func settleBookingQuery(bookingID string, status domain.PaymentStatus, at time.Time) (string, []any) {
	query := `UPDATE bookings SET payment_status=$1, updated_at=$2 WHERE id=$3 AND payment_status = ANY($4)`
	args := []any{status, at, bookingID, unsettledPaymentStatuses}
	if status == domain.PaymentStatusCaptured {
		query = `UPDATE bookings SET payment_status=$1, status=$5, updated_at=$2 WHERE id=$3 AND payment_status = ANY($4)`
		args = append(args, domain.BookingStatusConfirmed)
	}
	return query, args
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
