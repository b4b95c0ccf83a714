package mongostore

import (
	"context"
	"fmt"

	"github.com/juju/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/repository"
)

type CatalogRepository struct {
	packages *mongo.Collection
	addons   *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) repository.CatalogRepository {
	return &CatalogRepository{
		packages: db.Collection(packagesCollection),
		addons:   db.Collection(addonsCollection),
	}
}

// ReplaceAll is not atomic on MongoDB: readers may briefly observe an empty
// catalog while the seed runs at startup.
func (r *CatalogRepository) ReplaceAll(ctx context.Context, packages []domain.ServicePackage, addons []domain.ServiceAddon) error {
	if _, err := r.packages.DeleteMany(ctx, bson.M{}); err != nil {
		return errors.Annotate(err, "clear packages")
	}
	if _, err := r.addons.DeleteMany(ctx, bson.M{}); err != nil {
		return errors.Annotate(err, "clear addons")
	}
	if len(packages) > 0 {
		docs := make([]interface{}, 0, len(packages))
		for _, p := range packages {
			docs = append(docs, p)
		}
		if _, err := r.packages.InsertMany(ctx, docs); err != nil {
			return errors.Annotate(err, "insert packages")
		}
	}
	if len(addons) > 0 {
		docs := make([]interface{}, 0, len(addons))
		for _, a := range addons {
			docs = append(docs, a)
		}
		if _, err := r.addons.InsertMany(ctx, docs); err != nil {
			return errors.Annotate(err, "insert addons")
		}
	}
	return nil
}

func typeFilter(st domain.ServiceType) bson.M {
	if st == "" {
		return bson.M{}
	}
	return bson.M{"service_type": st}
}

func (r *CatalogRepository) ListPackages(ctx context.Context, st domain.ServiceType) ([]domain.ServicePackage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "service_type", Value: 1}, {Key: "base_price", Value: 1}})
	cur, err := r.packages.Find(ctx, typeFilter(st), opts)
	if err != nil {
		return nil, errors.Annotate(err, "list packages")
	}
	packages := make([]domain.ServicePackage, 0)
	if err := cur.All(ctx, &packages); err != nil {
		return nil, errors.Annotate(err, "decode packages")
	}
	return packages, nil
}

func (r *CatalogRepository) ListAddons(ctx context.Context, st domain.ServiceType) ([]domain.ServiceAddon, error) {
	opts := options.Find().SetSort(bson.D{{Key: "service_type", Value: 1}, {Key: "price", Value: 1}})
	return r.findAddons(ctx, typeFilter(st), opts)
}

func (r *CatalogRepository) GetPackage(ctx context.Context, id string) (*domain.ServicePackage, error) {
	var p domain.ServicePackage
	if err := r.packages.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		return nil, wrapMongo(err, fmt.Sprintf("service package %q", id))
	}
	return &p, nil
}

func (r *CatalogRepository) GetAddons(ctx context.Context, ids []string) ([]domain.ServiceAddon, error) {
	if len(ids) == 0 {
		return []domain.ServiceAddon{}, nil
	}
	return r.findAddons(ctx, bson.M{"id": bson.M{"$in": ids}})
}

func (r *CatalogRepository) findAddons(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.ServiceAddon, error) {
	cur, err := r.addons.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Annotate(err, "find addons")
	}
	addons := make([]domain.ServiceAddon, 0)
	if err := cur.All(ctx, &addons); err != nil {
		return nil, errors.Annotate(err, "decode addons")
	}
	return addons, nil
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)
