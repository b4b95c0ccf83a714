package domain

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventPaymentFailed    = "payment.failed"
)

// BookingEvent is published to the event bus after booking state changes.
type BookingEvent struct {
	Type          string        `json:"type"`
	BookingID     string        `json:"booking_id"`
	CustomerID    string        `json:"customer_id"`
	Email         string        `json:"email,omitempty"`
	ServiceType   ServiceType   `json:"service_type"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TotalPrice    float64       `json:"total_price"`
	Currency      string        `json:"currency"`
	ScheduledAt   time.Time     `json:"scheduled_datetime"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *Booking, email string, at time.Time) BookingEvent {
	return BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		CustomerID:    b.CustomerID,
		Email:         email,
		ServiceType:   b.ServiceType,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		TotalPrice:    b.PriceEstimate.TotalPrice,
		Currency:      b.PriceEstimate.Currency,
		ScheduledAt:   b.ScheduledAt,
		OccurredAt:    at,
	}
}
