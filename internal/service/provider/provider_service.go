package provider

import (
	"context"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Domenick1991/domora/internal/access"
	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/repository"
)

var logger = loggo.GetLogger("domora.provider")

type ProviderUseCase interface {
	CreateProfile(ctx context.Context, who access.Requester, input CreateProfileInput) (*domain.ProviderProfile, error)
	GetOwnProfile(ctx context.Context, who access.Requester) (*domain.ProviderProfile, error)
}

// Locator geocodes an address in place.
type Locator interface {
	Locate(ctx context.Context, address *domain.Address) bool
}

type CreateProfileInput struct {
	BusinessName string               `json:"business_name" binding:"required"`
	Description  string               `json:"description"`
	ServiceTypes []domain.ServiceType `json:"service_types" binding:"dive,service_type"`
	ServiceAreas []domain.Address     `json:"service_areas" binding:"dive"`
	Availability map[string]any       `json:"availability"`
}

type ProviderService struct {
	profiles repository.ProviderRepository
	locator  Locator
	clock    clock.Clock
}

func NewProviderService(profiles repository.ProviderRepository, locator Locator, clk clock.Clock) *ProviderService {
	if clk == nil {
		clk = clock.WallClock
	}
	return &ProviderService{profiles: profiles, locator: locator, clock: clk}
}

// CreateProfile stores the caller's single provider profile. Service areas
// are geocoded best-effort. The first area is the provider's base for travel
// fees; when it could not be located, no travel fee applies.
func (s *ProviderService) CreateProfile(ctx context.Context, who access.Requester, input CreateProfileInput) (*domain.ProviderProfile, error) {
	if err := access.Authorize(access.CreateProviderProfile, who, access.Resource{OwnerID: who.UserID}); err != nil {
		return nil, err
	}
	_, err := s.profiles.GetByUserID(ctx, who.UserID)
	switch {
	case err == nil:
		return nil, errors.AlreadyExistsf("provider profile for user %q", who.UserID)
	case !errors.Is(err, errors.NotFound):
		return nil, errors.Trace(err)
	}

	for i := range input.ServiceAreas {
		if s.locator != nil {
			s.locator.Locate(ctx, &input.ServiceAreas[i])
		}
	}

	profile := &domain.ProviderProfile{
		ID:           uuid.NewString(),
		UserID:       who.UserID,
		BusinessName: input.BusinessName,
		Description:  input.Description,
		ServiceTypes: input.ServiceTypes,
		ServiceAreas: input.ServiceAreas,
		Availability: input.Availability,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, errors.Trace(err)
	}
	logger.Infof("created provider profile %s for user %s", profile.ID, who.UserID)
	return profile, nil
}

func (s *ProviderService) GetOwnProfile(ctx context.Context, who access.Requester) (*domain.ProviderProfile, error) {
	if who.Role != domain.RoleProvider {
		return nil, errors.Forbiddenf("only providers have profiles")
	}
	profile, err := s.profiles.GetByUserID(ctx, who.UserID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := access.Authorize(access.ViewProviderProfile, who, access.ForProviderProfile(profile)); err != nil {
		return nil, err
	}
	return profile, nil
}

var _ ProviderUseCase = (*ProviderService)(nil)
