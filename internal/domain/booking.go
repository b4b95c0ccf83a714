package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusCaptured   PaymentStatus = "captured"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Settled reports whether reconciliation may no longer change the status.
func (s PaymentStatus) Settled() bool {
	switch s {
	case PaymentStatusCaptured, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type Booking struct {
	ID                string        `json:"id" bson:"id"`
	CustomerID        string        `json:"customer_id" bson:"customer_id"`
	ProviderID        *string       `json:"provider_id" bson:"provider_id"`
	ServiceType       ServiceType   `json:"service_type" bson:"service_type"`
	PackageID         string        `json:"package_id" bson:"package_id"`
	AddonIDs          []string      `json:"addon_ids" bson:"addon_ids"`
	ServiceAddress    Address       `json:"service_address" bson:"service_address"`
	ScheduledAt       time.Time     `json:"scheduled_datetime" bson:"scheduled_datetime"`
	Status            BookingStatus `json:"status" bson:"status"`
	PriceEstimate     PriceEstimate `json:"price_estimate" bson:"price_estimate"`
	PaymentStatus     PaymentStatus `json:"payment_status" bson:"payment_status"`
	CheckoutSessionID *string       `json:"stripe_session_id" bson:"stripe_session_id"`
	Notes             *string       `json:"notes" bson:"notes"`
	CreatedAt         time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" bson:"updated_at"`
}

// AssignedTo reports whether the booking is assigned to the given provider profile.
func (b *Booking) AssignedTo(providerID string) bool {
	return providerID != "" && b.ProviderID != nil && *b.ProviderID == providerID
}

// BookingFilter holds equality constraints for listing bookings. Empty
// fields do not constrain.
type BookingFilter struct {
	CustomerID string
	ProviderID string
}
