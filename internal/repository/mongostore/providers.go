package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/repository"
)

type ProviderRepository struct {
	coll *mongo.Collection
}

func NewProviderRepository(db *mongo.Database) repository.ProviderRepository {
	return &ProviderRepository{coll: db.Collection(providersCollection)}
}

func (r *ProviderRepository) Create(ctx context.Context, p *domain.ProviderProfile) error {
	_, err := r.coll.InsertOne(ctx, p)
	return wrapMongo(err, fmt.Sprintf("provider profile for user %q", p.UserID))
}

func (r *ProviderRepository) GetByID(ctx context.Context, id string) (*domain.ProviderProfile, error) {
	return r.findOne(ctx, bson.M{"id": id}, fmt.Sprintf("provider profile %q", id))
}

func (r *ProviderRepository) GetByUserID(ctx context.Context, userID string) (*domain.ProviderProfile, error) {
	return r.findOne(ctx, bson.M{"user_id": userID}, fmt.Sprintf("provider profile for user %q", userID))
}

func (r *ProviderRepository) findOne(ctx context.Context, filter bson.M, what string) (*domain.ProviderProfile, error) {
	var p domain.ProviderProfile
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, wrapMongo(err, what)
	}
	return &p, nil
}

var _ repository.ProviderRepository = (*ProviderRepository)(nil)
