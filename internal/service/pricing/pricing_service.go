package pricing

import (
	"context"
	"math"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/geo"
	"github.com/Domenick1991/domora/internal/metrics"
	"github.com/Domenick1991/domora/internal/repository"
)

var logger = loggo.GetLogger("domora.pricing")

type PricingUseCase interface {
	Estimate(ctx context.Context, input EstimateInput) (*domain.PriceEstimate, error)
	Locate(ctx context.Context, address *domain.Address) bool
}

type EstimateInput struct {
	PackageID  string          `json:"package_id" binding:"required"`
	Address    *domain.Address `json:"service_address" binding:"required"`
	AddonIDs   []string        `json:"addon_ids"`
	ProviderID string          `json:"provider_id"`
}

type Config struct {
	FreeRadiusKm float64
	FeePerKm     float64
	Currency     string
	GeoTimeout   time.Duration
}

type PricingService struct {
	catalog   repository.CatalogRepository
	providers repository.ProviderRepository
	geo       geo.Service
	cfg       Config
	metrics   *metrics.Collector
}

type PricingServiceOption func(*PricingService)

func WithMetrics(m *metrics.Collector) PricingServiceOption {
	return func(s *PricingService) {
		s.metrics = m
	}
}

func NewPricingService(
	catalog repository.CatalogRepository,
	providers repository.ProviderRepository,
	geoService geo.Service,
	cfg Config,
	opts ...PricingServiceOption,
) *PricingService {
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	s := &PricingService{
		catalog:   catalog,
		providers: providers,
		geo:       geoService,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Estimate prices a package with addons and, when a provider is given, a
// travel fee. Unknown addon ids are ignored. Geocoding and distance failures
// yield a zero travel fee instead of an error.
func (s *PricingService) Estimate(ctx context.Context, input EstimateInput) (*domain.PriceEstimate, error) {
	pkg, err := s.catalog.GetPackage(ctx, input.PackageID)
	if err != nil {
		return nil, errors.Trace(err)
	}

	estimate := &domain.PriceEstimate{
		BasePrice: pkg.BasePrice,
		Currency:  s.cfg.Currency,
		Breakdown: map[string]float64{pkg.Name: pkg.BasePrice},
	}

	if len(input.AddonIDs) > 0 {
		addons, err := s.catalog.GetAddons(ctx, input.AddonIDs)
		if err != nil {
			return nil, errors.Trace(err)
		}
		for _, a := range addons {
			estimate.AddonsPrice += a.Price
			estimate.Breakdown[a.Name] = a.Price
		}
	}

	fee, err := s.travelFee(ctx, input.ProviderID, input.Address)
	if err != nil {
		return nil, errors.Trace(err)
	}
	estimate.AddonsPrice = roundCents(estimate.AddonsPrice)
	estimate.TravelFee = fee
	estimate.Breakdown[domain.TravelFeeLabel] = fee
	estimate.TotalPrice = roundCents(estimate.BasePrice + estimate.AddonsPrice + estimate.TravelFee)
	return estimate, nil
}

func (s *PricingService) travelFee(ctx context.Context, providerID string, address *domain.Address) (float64, error) {
	if providerID == "" || address == nil {
		return 0, nil
	}
	provider, err := s.providers.GetByID(ctx, providerID)
	if errors.Is(err, errors.NotFound) {
		logger.Debugf("no travel fee: provider %q not found", providerID)
		return 0, nil
	}
	if err != nil {
		return 0, errors.Trace(err)
	}
	origin, ok := provider.Location()
	if !ok {
		return 0, nil
	}

	if !s.Locate(ctx, address) {
		s.metrics.TravelFeeFallback("geocode")
		return 0, nil
	}
	dest, _ := address.Coordinates()

	lookupCtx, cancel := s.lookupContext(ctx)
	defer cancel()
	km, err := s.geo.DrivingDistanceKm(lookupCtx, origin, dest)
	if err != nil {
		logger.Warningf("distance lookup failed, charging no travel fee: %v", err)
		s.metrics.TravelFeeFallback("distance")
		return 0, nil
	}
	return TravelFee(km, s.cfg.FreeRadiusKm, s.cfg.FeePerKm), nil
}

// Locate geocodes address in place unless it already has coordinates. It
// reports whether the address ends up located; failures are only logged.
func (s *PricingService) Locate(ctx context.Context, address *domain.Address) bool {
	if address == nil {
		return false
	}
	if address.Country == "" {
		address.Country = domain.DefaultCountry
	}
	if _, ok := address.Coordinates(); ok {
		return true
	}
	lookupCtx, cancel := s.lookupContext(ctx)
	defer cancel()
	c, err := s.geo.Geocode(lookupCtx, address.String())
	if err != nil {
		logger.Warningf("geocoding %q failed: %v", address.String(), err)
		return false
	}
	address.SetCoordinates(c)
	return true
}

func (s *PricingService) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.GeoTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.GeoTimeout)
}

// TravelFee charges perKm for every kilometre beyond the free radius.
func TravelFee(distanceKm, freeRadiusKm, perKm float64) float64 {
	if distanceKm <= freeRadiusKm {
		return 0
	}
	return roundCents((distanceKm - freeRadiusKm) * perKm)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ PricingUseCase = (*PricingService)(nil)
