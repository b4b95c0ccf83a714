package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/domora/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type CatalogRepository interface {
	// ReplaceAll deletes the whole catalog and inserts the given entries.
	ReplaceAll(ctx context.Context, packages []domain.ServicePackage, addons []domain.ServiceAddon) error
	// ListPackages and ListAddons return every entry when st is empty.
	ListPackages(ctx context.Context, st domain.ServiceType) ([]domain.ServicePackage, error)
	ListAddons(ctx context.Context, st domain.ServiceType) ([]domain.ServiceAddon, error)
	GetPackage(ctx context.Context, id string) (*domain.ServicePackage, error)
	// GetAddons returns the addons among ids that exist, skipping unknown ids.
	GetAddons(ctx context.Context, ids []string) ([]domain.ServiceAddon, error)
}

type ProviderRepository interface {
	Create(ctx context.Context, profile *domain.ProviderProfile) error
	GetByID(ctx context.Context, id string) (*domain.ProviderProfile, error)
	GetByUserID(ctx context.Context, userID string) (*domain.ProviderProfile, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	// ClaimCheckout moves payment_status from pending to authorized. It
	// reports false when the booking was not pending.
	ClaimCheckout(ctx context.Context, id string, at time.Time) (bool, error)
	// ReleaseCheckout reverts a claim that produced no checkout session.
	ReleaseCheckout(ctx context.Context, id string, at time.Time) error
	AttachSession(ctx context.Context, id, sessionID string, at time.Time) error
	AssignProvider(ctx context.Context, id, providerID string, at time.Time) (*domain.Booking, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, txn *domain.PaymentTransaction) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error)
	// MarkCaptured sets the transaction to captured and its booking to
	// captured and confirmed. Both writes only apply to unsettled records, so
	// repeating the call is a no-op. It reports whether the booking changed.
	MarkCaptured(ctx context.Context, sessionID string, at time.Time) (bool, error)
	// MarkFailed is MarkCaptured for failed payments; the booking status is
	// left untouched.
	MarkFailed(ctx context.Context, sessionID string, at time.Time) (bool, error)
}

// unsettledPaymentStatuses are the booking payment states reconciliation may
// still move forward.
var unsettledPaymentStatuses = []string{
	string(domain.PaymentStatusPending),
	string(domain.PaymentStatusAuthorized),
}
