package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/repository"
)

type BookingRepository struct {
	coll *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) repository.BookingRepository {
	return &BookingRepository{coll: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	_, err := r.coll.InsertOne(ctx, b)
	return wrapMongo(err, fmt.Sprintf("booking %q", b.ID))
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		return nil, wrapMongo(err, fmt.Sprintf("booking %q", id))
	}
	return &b, nil
}

func bookingFilter(f domain.BookingFilter) bson.M {
	filter := bson.M{}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.ProviderID != "" {
		filter["provider_id"] = f.ProviderID
	}
	return filter
}

func (r *BookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bookingFilter(f), opts)
	if err != nil {
		return nil, errors.Annotate(err, "list bookings")
	}
	bookings := make([]domain.Booking, 0)
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, errors.Annotate(err, "decode bookings")
	}
	return bookings, nil
}

func claimFilter(id string) bson.M {
	return bson.M{"id": id, "payment_status": domain.PaymentStatusPending}
}

// releaseFilter matches only a claim that never got a session attached.
func releaseFilter(id string) bson.M {
	return bson.M{"id": id, "payment_status": domain.PaymentStatusAuthorized, "stripe_session_id": nil}
}

func (r *BookingRepository) ClaimCheckout(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		claimFilter(id),
		bson.M{"$set": bson.M{"payment_status": domain.PaymentStatusAuthorized, "updated_at": at}},
	)
	if err != nil {
		return false, errors.Annotatef(err, "claim checkout for booking %q", id)
	}
	return res.ModifiedCount == 1, nil
}

func (r *BookingRepository) ReleaseCheckout(ctx context.Context, id string, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		releaseFilter(id),
		bson.M{"$set": bson.M{"payment_status": domain.PaymentStatusPending, "updated_at": at}},
	)
	return errors.Annotatef(err, "release checkout for booking %q", id)
}

func (r *BookingRepository) AttachSession(ctx context.Context, id, sessionID string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"stripe_session_id": sessionID, "updated_at": at}},
	)
	if err != nil {
		return errors.Annotatef(err, "attach session to booking %q", id)
	}
	if res.MatchedCount == 0 {
		return errors.NotFoundf("booking %q", id)
	}
	return nil
}

func (r *BookingRepository) AssignProvider(ctx context.Context, id, providerID string, at time.Time) (*domain.Booking, error) {
	var b domain.Booking
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"provider_id": providerID, "updated_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		return nil, wrapMongo(err, fmt.Sprintf("booking %q", id))
	}
	return &b, nil
}

var _ repository.BookingRepository = (*BookingRepository)(nil)
