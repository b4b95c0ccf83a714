package catalog

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	catalogdata "github.com/Domenick1991/domora/internal/catalog"
	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/repository"
)

var logger = loggo.GetLogger("domora.catalog")

type CatalogUseCase interface {
	ListPackages(ctx context.Context, st domain.ServiceType) ([]domain.ServicePackage, error)
	ListAddons(ctx context.Context, st domain.ServiceType) ([]domain.ServiceAddon, error)
	Seed(ctx context.Context) error
}

type CatalogService struct {
	repo   repository.CatalogRepository
	source func() (*catalogdata.Catalog, error)
}

type CatalogServiceOption func(*CatalogService)

// WithSource replaces the embedded catalog.
func WithSource(source func() (*catalogdata.Catalog, error)) CatalogServiceOption {
	return func(s *CatalogService) {
		s.source = source
	}
}

func NewCatalogService(repo repository.CatalogRepository, opts ...CatalogServiceOption) *CatalogService {
	s := &CatalogService{repo: repo, source: catalogdata.Load}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed replaces the stored catalog with the shipped one. It runs once at
// startup; entry ids are stable so existing bookings keep resolving.
func (s *CatalogService) Seed(ctx context.Context) error {
	c, err := s.source()
	if err != nil {
		return errors.Trace(err)
	}
	if err := s.repo.ReplaceAll(ctx, c.Packages, c.Addons); err != nil {
		return errors.Annotate(err, "seed catalog")
	}
	logger.Infof("seeded catalog with %d packages and %d addons", len(c.Packages), len(c.Addons))
	return nil
}

func (s *CatalogService) ListPackages(ctx context.Context, st domain.ServiceType) ([]domain.ServicePackage, error) {
	if err := checkServiceType(st); err != nil {
		return nil, err
	}
	return s.repo.ListPackages(ctx, st)
}

func (s *CatalogService) ListAddons(ctx context.Context, st domain.ServiceType) ([]domain.ServiceAddon, error) {
	if err := checkServiceType(st); err != nil {
		return nil, err
	}
	return s.repo.ListAddons(ctx, st)
}

func checkServiceType(st domain.ServiceType) error {
	if st != "" && !st.Valid() {
		return errors.NotValidf("service_type %q", st)
	}
	return nil
}

var _ CatalogUseCase = (*CatalogService)(nil)
