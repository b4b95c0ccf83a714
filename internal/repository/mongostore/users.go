package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/repository"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	return wrapMongo(err, fmt.Sprintf("user with email %q", u.Email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"id": id}, fmt.Sprintf("user %q", id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, fmt.Sprintf("user with email %q", email))
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, what string) (*domain.User, error) {
	var u domain.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, wrapMongo(err, what)
	}
	return &u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
