package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Domenick1991/domora/internal/access"
	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/metrics"
	"github.com/Domenick1991/domora/internal/repository"
	"github.com/Domenick1991/domora/internal/service/pricing"
)

var logger = loggo.GetLogger("domora.booking")

type BookingUseCase interface {
	CreateBooking(ctx context.Context, who access.Requester, input CreateBookingInput) (*domain.Booking, error)
	ListBookings(ctx context.Context, who access.Requester) ([]domain.Booking, error)
	GetBooking(ctx context.Context, who access.Requester, id string) (*domain.Booking, error)
	AssignProvider(ctx context.Context, bookingID, providerID string) (*domain.Booking, error)
}

type Emitter interface {
	Emit(ctx context.Context, event domain.BookingEvent)
}

type CreateBookingInput struct {
	ServiceType    domain.ServiceType `json:"service_type" binding:"required,service_type"`
	PackageID      string             `json:"package_id" binding:"required"`
	AddonIDs       []string           `json:"addon_ids"`
	ServiceAddress domain.Address     `json:"service_address" binding:"required"`
	ScheduledAt    time.Time          `json:"scheduled_datetime" binding:"required"`
	Notes          *string            `json:"notes"`
}

type BookingService struct {
	bookings  repository.BookingRepository
	catalog   repository.CatalogRepository
	providers repository.ProviderRepository
	pricing   pricing.PricingUseCase
	events    Emitter
	clock     clock.Clock
	metrics   *metrics.Collector
}

type BookingServiceOption func(*BookingService)

func WithEmitter(e Emitter) BookingServiceOption {
	return func(s *BookingService) {
		s.events = e
	}
}

func WithClock(clk clock.Clock) BookingServiceOption {
	return func(s *BookingService) {
		s.clock = clk
	}
}

func WithMetrics(m *metrics.Collector) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	catalog repository.CatalogRepository,
	providers repository.ProviderRepository,
	pricer pricing.PricingUseCase,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:  bookings,
		catalog:   catalog,
		providers: providers,
		pricing:   pricer,
		clock:     clock.WallClock,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking prices and stores a pending booking for a customer. The
// service address is geocoded best-effort before pricing.
func (s *BookingService) CreateBooking(ctx context.Context, who access.Requester, input CreateBookingInput) (*domain.Booking, error) {
	if err := access.Authorize(access.CreateBooking, who, access.Resource{}); err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	if !input.ScheduledAt.After(now) {
		return nil, errors.NotValidf("scheduled_datetime %s in the past", input.ScheduledAt.Format(time.RFC3339))
	}
	pkg, err := s.catalog.GetPackage(ctx, input.PackageID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if pkg.ServiceType != input.ServiceType {
		return nil, errors.NotValidf("package %q for service type %q", pkg.Name, input.ServiceType)
	}

	address := input.ServiceAddress
	s.pricing.Locate(ctx, &address)

	estimate, err := s.pricing.Estimate(ctx, pricing.EstimateInput{
		PackageID: input.PackageID,
		Address:   &address,
		AddonIDs:  input.AddonIDs,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	addonIDs := input.AddonIDs
	if addonIDs == nil {
		addonIDs = []string{}
	}
	booking := &domain.Booking{
		ID:             uuid.NewString(),
		CustomerID:     who.UserID,
		ServiceType:    input.ServiceType,
		PackageID:      input.PackageID,
		AddonIDs:       addonIDs,
		ServiceAddress: address,
		ScheduledAt:    input.ScheduledAt.UTC(),
		Status:         domain.BookingStatusPending,
		PriceEstimate:  *estimate,
		PaymentStatus:  domain.PaymentStatusPending,
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, errors.Trace(err)
	}

	logger.Infof("booking %s created by customer %s, total %.2f %s", booking.ID, who.UserID, estimate.TotalPrice, estimate.Currency)
	s.metrics.BookingCreated(string(booking.ServiceType))
	s.emit(ctx, domain.EventBookingCreated, booking, who.Email)
	return booking, nil
}

// ListBookings returns the bookings visible to who, newest first.
func (s *BookingService) ListBookings(ctx context.Context, who access.Requester) ([]domain.Booking, error) {
	filter, ok := access.BookingScope(who)
	if !ok {
		return []domain.Booking{}, nil
	}
	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return bookings, nil
}

func (s *BookingService) GetBooking(ctx context.Context, who access.Requester, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := access.Authorize(access.ViewBooking, who, access.ForBooking(booking)); err != nil {
		return nil, err
	}
	return booking, nil
}

// AssignProvider sets the provider profile serving a booking. It has no
// HTTP route; assignment workflows call it directly.
func (s *BookingService) AssignProvider(ctx context.Context, bookingID, providerID string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	switch current.Status {
	case domain.BookingStatusPending, domain.BookingStatusConfirmed:
	default:
		return nil, errors.NotValidf("assigning a provider to a %s booking", current.Status)
	}
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, errors.Trace(err)
	}
	updated, err := s.bookings.AssignProvider(ctx, bookingID, providerID, s.clock.Now().UTC())
	if err != nil {
		return nil, errors.Trace(err)
	}
	logger.Infof("booking %s assigned to provider %s", bookingID, providerID)
	return updated, nil
}

func (s *BookingService) emit(ctx context.Context, eventType string, booking *domain.Booking, email string) {
	if s.events == nil {
		return
	}
	s.events.Emit(ctx, domain.NewBookingEvent(eventType, booking, email, s.clock.Now().UTC()))
}

var _ BookingUseCase = (*BookingService)(nil)
