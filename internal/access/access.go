// Package access holds the authorization rules for bookings, provider
// profiles and payments. Every read or write of those resources goes through
// Authorize so the rules are applied identically on all paths.
package access

import (
	"context"

	"github.com/juju/errors"

	"github.com/Domenick1991/domora/internal/domain"
)

type Operation string

const (
	CreateBooking         Operation = "booking.create"
	ViewBooking           Operation = "booking.view"
	CreateProviderProfile Operation = "provider_profile.create"
	ViewProviderProfile   Operation = "provider_profile.view"
	CreateCheckout        Operation = "payment.create_checkout"
	ViewPayment           Operation = "payment.view"
)

// Requester is the authenticated caller. ProviderID is the caller's provider
// profile id and is empty for non-providers or providers without a profile.
type Requester struct {
	UserID     string
	Email      string
	Role       domain.Role
	ProviderID string
}

func (r Requester) IsAdmin() bool { return r.Role == domain.RoleAdmin }

// Resource identifies the owners of the object being accessed.
type Resource struct {
	CustomerID string
	ProviderID string
	OwnerID    string
}

func ForBooking(b *domain.Booking) Resource {
	res := Resource{CustomerID: b.CustomerID, OwnerID: b.CustomerID}
	if b.ProviderID != nil {
		res.ProviderID = *b.ProviderID
	}
	return res
}

func ForTransaction(t *domain.PaymentTransaction) Resource {
	return Resource{OwnerID: t.UserID}
}

func ForProviderProfile(p *domain.ProviderProfile) Resource {
	return Resource{OwnerID: p.UserID, ProviderID: p.ID}
}

// Authorize returns nil when who may perform op on res, or a Forbidden error.
func Authorize(op Operation, who Requester, res Resource) error {
	switch op {
	case CreateBooking:
		if who.Role != domain.RoleCustomer {
			return errors.Forbiddenf("only customers can create bookings")
		}
	case ViewBooking:
		if who.IsAdmin() {
			return nil
		}
		switch who.Role {
		case domain.RoleCustomer:
			if res.CustomerID == who.UserID {
				return nil
			}
		case domain.RoleProvider:
			if who.ProviderID != "" && res.ProviderID == who.ProviderID {
				return nil
			}
		}
		return errors.Forbiddenf("access denied")
	case CreateProviderProfile:
		if who.Role != domain.RoleProvider {
			return errors.Forbiddenf("only providers can create profiles")
		}
	case ViewProviderProfile:
		if who.IsAdmin() || res.OwnerID == who.UserID {
			return nil
		}
		return errors.Forbiddenf("access denied")
	case CreateCheckout:
		if res.CustomerID != who.UserID {
			return errors.Forbiddenf("access denied")
		}
	case ViewPayment:
		if who.IsAdmin() || res.OwnerID == who.UserID {
			return nil
		}
		return errors.Forbiddenf("access denied")
	default:
		return errors.Forbiddenf("unknown operation %q", op)
	}
	return nil
}

// BookingScope returns the listing filter for who. The boolean is false when
// who can see no bookings at all, e.g. a provider without a profile.
func BookingScope(who Requester) (domain.BookingFilter, bool) {
	switch who.Role {
	case domain.RoleAdmin:
		return domain.BookingFilter{}, true
	case domain.RoleCustomer:
		return domain.BookingFilter{CustomerID: who.UserID}, true
	case domain.RoleProvider:
		if who.ProviderID == "" {
			return domain.BookingFilter{}, false
		}
		return domain.BookingFilter{ProviderID: who.ProviderID}, true
	}
	return domain.BookingFilter{}, false
}

// ProfileLookup finds the provider profile owned by a user.
type ProfileLookup interface {
	GetByUserID(ctx context.Context, userID string) (*domain.ProviderProfile, error)
}

// Resolve builds the Requester for user, resolving the provider profile id
// for provider-role users.
func Resolve(ctx context.Context, profiles ProfileLookup, user *domain.User) (Requester, error) {
	who := Requester{UserID: user.ID, Email: user.Email, Role: user.Role}
	if user.Role != domain.RoleProvider || profiles == nil {
		return who, nil
	}
	profile, err := profiles.GetByUserID(ctx, user.ID)
	switch {
	case errors.Is(err, errors.NotFound):
		return who, nil
	case err != nil:
		return who, errors.Trace(err)
	}
	who.ProviderID = profile.ID
	return who, nil
}
