package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"

	"github.com/Domenick1991/domora/internal/domain"
)

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, customer_id, provider_id, service_type, package_id, addon_ids, service_address, scheduled_datetime, status, price_estimate, payment_status, stripe_session_id, notes, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	addonIDs := b.AddonIDs
	if addonIDs == nil {
		addonIDs = []string{}
	}
	_, err := r.db.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		b.ID, b.CustomerID, b.ProviderID, b.ServiceType, b.PackageID, addonIDs, b.ServiceAddress, b.ScheduledAt,
		b.Status, b.PriceEstimate, b.PaymentStatus, b.CheckoutSessionID, b.Notes, b.CreatedAt, b.UpdatedAt)
	return wrapPG(err, "booking %q", b.ID)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	return b, wrapPG(err, "booking %q", id)
}

func (r *PGBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	query, args := bookingListQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Annotate(err, "list bookings")
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, errors.Trace(err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, errors.Trace(rows.Err())
}

func bookingListQuery(filter domain.BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conds = append(conds, "customer_id = $"+strconv.Itoa(len(args)))
	}
	if filter.ProviderID != "" {
		args = append(args, filter.ProviderID)
		conds = append(conds, "provider_id = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return query + ` ORDER BY created_at DESC`, args
}

// Checkout claims flip pending to authorized and back. A release never
// touches a booking that already has a session attached.
const (
	claimCheckoutSQL   = `UPDATE bookings SET payment_status=$1, updated_at=$2 WHERE id=$3 AND payment_status=$4`
	releaseCheckoutSQL = `UPDATE bookings SET payment_status=$1, updated_at=$2 WHERE id=$3 AND payment_status=$4 AND stripe_session_id IS NULL`
)

func (r *PGBookingRepository) ClaimCheckout(ctx context.Context, id string, at time.Time) (bool, error) {
	cmd, err := r.db.Exec(ctx, claimCheckoutSQL,
		domain.PaymentStatusAuthorized, at, id, domain.PaymentStatusPending)
	if err != nil {
		return false, errors.Annotatef(err, "claim checkout for booking %q", id)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *PGBookingRepository) ReleaseCheckout(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, releaseCheckoutSQL,
		domain.PaymentStatusPending, at, id, domain.PaymentStatusAuthorized)
	return errors.Annotatef(err, "release checkout for booking %q", id)
}

func (r *PGBookingRepository) AttachSession(ctx context.Context, id, sessionID string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET stripe_session_id=$1, updated_at=$2 WHERE id=$3`, sessionID, at, id)
	if err != nil {
		return errors.Annotatef(err, "attach session to booking %q", id)
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFoundf("booking %q", id)
	}
	return nil
}

func (r *PGBookingRepository) AssignProvider(ctx context.Context, id, providerID string, at time.Time) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET provider_id=$1, updated_at=$2 WHERE id=$3 RETURNING `+bookingColumns, providerID, at, id)
	b, err := scanBooking(row)
	return b, wrapPG(err, "booking %q", id)
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.CustomerID, &b.ProviderID, &b.ServiceType, &b.PackageID, &b.AddonIDs, &b.ServiceAddress,
		&b.ScheduledAt, &b.Status, &b.PriceEstimate, &b.PaymentStatus, &b.CheckoutSessionID, &b.Notes, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
