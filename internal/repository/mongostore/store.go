// Package mongostore implements the repository interfaces on MongoDB. Every
// document carries its own string "id" field; the driver's _id is unused.
package mongostore

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var logger = loggo.GetLogger("domora.repository.mongo")

const (
	usersCollection     = "users"
	packagesCollection  = "service_packages"
	addonsCollection    = "service_addons"
	providersCollection = "provider_profiles"
	bookingsCollection  = "bookings"
	paymentsCollection  = "payment_transactions"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri and ensures the unique indexes exist.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Annotate(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Annotate(err, "ping mongo")
	}
	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Trace(err)
	}
	logger.Infof("connected to mongo database %q", database)
	return s, nil
}

func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := map[string][]string{
		usersCollection:     {"id", "email"},
		packagesCollection:  {"id"},
		addonsCollection:    {"id"},
		providersCollection: {"id", "user_id"},
		bookingsCollection:  {"id"},
		paymentsCollection:  {"id", "session_id"},
	}
	for coll, fields := range unique {
		models := make([]mongo.IndexModel, 0, len(fields))
		for _, f := range fields {
			models = append(models, mongo.IndexModel{
				Keys:    bson.D{{Key: f, Value: 1}},
				Options: options.Index().SetUnique(true),
			})
		}
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Annotatef(err, "create indexes on %s", coll)
		}
	}
	_, err := s.db.Collection(bookingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "provider_id", Value: 1}}},
	})
	return errors.Annotate(err, "create booking indexes")
}

// wrapMongo translates driver errors into the errors taxonomy used by services.
func wrapMongo(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return errors.NewNotFound(err, what+" not found")
	case mongo.IsDuplicateKeyError(err):
		return errors.NewAlreadyExists(err, what+" already exists")
	}
	return errors.Annotate(err, what)
}
