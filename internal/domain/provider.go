package domain

import "time"

// ProviderProfile is the business profile of a provider-role user. Its ID is
// the identifier stored in Booking.ProviderID.
type ProviderProfile struct {
	ID           string         `json:"id" bson:"id"`
	UserID       string         `json:"user_id" bson:"user_id"`
	BusinessName string         `json:"business_name" bson:"business_name"`
	Description  string         `json:"description" bson:"description"`
	ServiceTypes []ServiceType  `json:"service_types" bson:"service_types"`
	ServiceAreas []Address      `json:"service_areas" bson:"service_areas"`
	Availability map[string]any `json:"availability" bson:"availability"`
	Rating       float64        `json:"rating" bson:"rating"`
	TotalReviews int            `json:"total_reviews" bson:"total_reviews"`
	IsVerified   bool           `json:"is_verified" bson:"is_verified"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
}

// Location is the provider's base for travel fees: the first service area,
// provided it has been geocoded.
func (p *ProviderProfile) Location() (Coordinates, bool) {
	if p == nil || len(p.ServiceAreas) == 0 {
		return Coordinates{}, false
	}
	return p.ServiceAreas[0].Coordinates()
}
