package domain

import "strings"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Address struct {
	Street     string   `json:"street" bson:"street" binding:"required"`
	City       string   `json:"city" bson:"city" binding:"required"`
	PostalCode string   `json:"postal_code" bson:"postal_code" binding:"required"`
	Country    string   `json:"country" bson:"country"`
	Latitude   *float64 `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty" bson:"longitude,omitempty"`
}

// DefaultCountry is applied to addresses submitted without a country.
const DefaultCountry = "Slovenia"

// Coordinates returns the resolved location, if any.
func (a Address) Coordinates() (Coordinates, bool) {
	if a.Latitude == nil || a.Longitude == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *a.Latitude, Lng: *a.Longitude}, true
}

func (a *Address) SetCoordinates(c Coordinates) {
	lat, lng := c.Lat, c.Lng
	a.Latitude = &lat
	a.Longitude = &lng
}

// String formats the address for geocoding lookups.
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
