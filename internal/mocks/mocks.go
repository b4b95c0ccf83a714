// Package mocks provides testify doubles for the repository and gateway
// interfaces shared by the service tests.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/domora/internal/checkout"
	"github.com/Domenick1991/domora/internal/domain"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type CatalogRepository struct {
	mock.Mock
}

func (m *CatalogRepository) ReplaceAll(ctx context.Context, packages []domain.ServicePackage, addons []domain.ServiceAddon) error {
	args := m.Called(ctx, packages, addons)
	return args.Error(0)
}

func (m *CatalogRepository) ListPackages(ctx context.Context, st domain.ServiceType) ([]domain.ServicePackage, error) {
	args := m.Called(ctx, st)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServicePackage), args.Error(1)
}

func (m *CatalogRepository) ListAddons(ctx context.Context, st domain.ServiceType) ([]domain.ServiceAddon, error) {
	args := m.Called(ctx, st)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceAddon), args.Error(1)
}

func (m *CatalogRepository) GetPackage(ctx context.Context, id string) (*domain.ServicePackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServicePackage), args.Error(1)
}

func (m *CatalogRepository) GetAddons(ctx context.Context, ids []string) ([]domain.ServiceAddon, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceAddon), args.Error(1)
}

type ProviderRepository struct {
	mock.Mock
}

func (m *ProviderRepository) Create(ctx context.Context, profile *domain.ProviderProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *ProviderRepository) GetByID(ctx context.Context, id string) (*domain.ProviderProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProviderProfile), args.Error(1)
}

func (m *ProviderRepository) GetByUserID(ctx context.Context, userID string) (*domain.ProviderProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProviderProfile), args.Error(1)
}

type BookingRepository struct {
	mock.Mock
}

func (m *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *BookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *BookingRepository) ClaimCheckout(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *BookingRepository) ReleaseCheckout(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *BookingRepository) AttachSession(ctx context.Context, id, sessionID string, at time.Time) error {
	args := m.Called(ctx, id, sessionID, at)
	return args.Error(0)
}

func (m *BookingRepository) AssignProvider(ctx context.Context, id, providerID string, at time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, id, providerID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, txn *domain.PaymentTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *PaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentTransaction), args.Error(1)
}

func (m *PaymentRepository) MarkCaptured(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	args := m.Called(ctx, sessionID, at)
	return args.Bool(0), args.Error(1)
}

func (m *PaymentRepository) MarkFailed(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	args := m.Called(ctx, sessionID, at)
	return args.Bool(0), args.Error(1)
}

type Geo struct {
	mock.Mock
}

func (m *Geo) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(domain.Coordinates), args.Error(1)
}

func (m *Geo) DrivingDistanceKm(ctx context.Context, from, to domain.Coordinates) (float64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Error(1)
}

type Gateway struct {
	mock.Mock
}

func (m *Gateway) CreateSession(ctx context.Context, in checkout.CreateSessionInput) (*checkout.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *Gateway) GetSession(ctx context.Context, id string) (*checkout.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *Gateway) ParseWebhook(payload []byte, signature string) (*checkout.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Event), args.Error(1)
}

type Producer struct {
	mock.Mock
}

func (m *Producer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type PaymentCache struct {
	mock.Mock
}

func (m *PaymentCache) AcquireCheckoutLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, bookingID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *PaymentCache) ReleaseCheckoutLock(ctx context.Context, bookingID string) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *PaymentCache) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *PaymentCache) ForgetEvent(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}
