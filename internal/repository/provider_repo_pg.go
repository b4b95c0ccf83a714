package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/domora/internal/domain"
)

type PGProviderRepository struct {
	db *pgxpool.Pool
}

func NewProviderRepository(db *pgxpool.Pool) ProviderRepository {
	return &PGProviderRepository{db: db}
}

const providerColumns = `id, user_id, business_name, description, service_types, service_areas, availability, rating, total_reviews, is_verified, created_at`

func (r *PGProviderRepository) Create(ctx context.Context, p *domain.ProviderProfile) error {
	serviceTypes, areas, availability := p.ServiceTypes, p.ServiceAreas, p.Availability
	if serviceTypes == nil {
		serviceTypes = []domain.ServiceType{}
	}
	if areas == nil {
		areas = []domain.Address{}
	}
	if availability == nil {
		availability = map[string]any{}
	}
	_, err := r.db.Exec(ctx, `INSERT INTO provider_profiles (`+providerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.UserID, p.BusinessName, p.Description, serviceTypes, areas, availability, p.Rating, p.TotalReviews, p.IsVerified, p.CreatedAt)
	return wrapPG(err, "provider profile for user %q", p.UserID)
}

func (r *PGProviderRepository) GetByID(ctx context.Context, id string) (*domain.ProviderProfile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+providerColumns+` FROM provider_profiles WHERE id=$1`, id)
	p, err := scanProvider(row)
	return p, wrapPG(err, "provider profile %q", id)
}

func (r *PGProviderRepository) GetByUserID(ctx context.Context, userID string) (*domain.ProviderProfile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+providerColumns+` FROM provider_profiles WHERE user_id=$1`, userID)
	p, err := scanProvider(row)
	return p, wrapPG(err, "provider profile for user %q", userID)
}

func scanProvider(row rowScanner) (*domain.ProviderProfile, error) {
	var p domain.ProviderProfile
	if err := row.Scan(&p.ID, &p.UserID, &p.BusinessName, &p.Description, &p.ServiceTypes, &p.ServiceAreas, &p.Availability, &p.Rating, &p.TotalReviews, &p.IsVerified, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ ProviderRepository = (*PGProviderRepository)(nil)
