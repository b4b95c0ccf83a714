package domain

import "time"

type PaymentTransaction struct {
	ID            string            `json:"id" bson:"id"`
	BookingID     string            `json:"booking_id" bson:"booking_id"`
	UserID        string            `json:"user_id" bson:"user_id"`
	SessionID     string            `json:"session_id" bson:"session_id"`
	Amount        float64           `json:"amount" bson:"amount"`
	Currency      string            `json:"currency" bson:"currency"`
	PaymentStatus PaymentStatus     `json:"payment_status" bson:"payment_status"`
	Metadata      map[string]string `json:"metadata" bson:"metadata"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" bson:"updated_at"`
}
