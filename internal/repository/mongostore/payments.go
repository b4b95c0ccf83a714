package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/repository"
)

type PaymentRepository struct {
	payments *mongo.Collection
	bookings *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &PaymentRepository{
		payments: db.Collection(paymentsCollection),
		bookings: db.Collection(bookingsCollection),
	}
}

func (r *PaymentRepository) Create(ctx context.Context, t *domain.PaymentTransaction) error {
	_, err := r.payments.InsertOne(ctx, t)
	return wrapMongo(err, fmt.Sprintf("payment transaction for session %q", t.SessionID))
}

func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error) {
	var t domain.PaymentTransaction
	if err := r.payments.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&t); err != nil {
		return nil, wrapMongo(err, fmt.Sprintf("payment transaction for session %q", sessionID))
	}
	return &t, nil
}

func (r *PaymentRepository) MarkCaptured(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	return r.settle(ctx, sessionID, domain.PaymentStatusCaptured, at)
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	return r.settle(ctx, sessionID, domain.PaymentStatusFailed, at)
}

// settle writes the transaction and then the booking. The writes are not
// atomic here; both are conditional on an unsettled status, so a booking
// write lost to a failure is applied again on the next poll or redelivery.
func (r *PaymentRepository) settle(ctx context.Context, sessionID string, status domain.PaymentStatus, at time.Time) (bool, error) {
	txn, err := r.GetBySessionID(ctx, sessionID)
	if err != nil {
		return false, err
	}
	_, err = r.payments.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "payment_status": unsettled()},
		bson.M{"$set": bson.M{"payment_status": status, "updated_at": at}},
	)
	if err != nil {
		return false, errors.Annotatef(err, "update payment transaction %q", sessionID)
	}

	filter, update := settleBookingUpdate(txn.BookingID, status, at)
	res, err := r.bookings.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Annotatef(err, "update booking %q", txn.BookingID)
	}
	return res.ModifiedCount == 1, nil
}

var _ repository.PaymentRepository = (*PaymentRepository)(nil)

func unsettled() bson.M {
	return bson.M{"$in": []domain.PaymentStatus{domain.PaymentStatusPending, domain.PaymentStatusAuthorized}}
}

// settleBookingUpdate writes the booking only while its payment is unsettled;
// a capture also confirms it.
func settleBookingUpdate(bookingID string, status domain.PaymentStatus, at time.Time) (bson.M, bson.M) {
	set := bson.M{"payment_status": status, "updated_at": at}
	if status == domain.PaymentStatusCaptured {
		set["status"] = domain.BookingStatusConfirmed
	}
	return bson.M{"id": bookingID, "payment_status": unsettled()}, bson.M{"$set": set}
}
