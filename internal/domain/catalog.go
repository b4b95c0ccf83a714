package domain

type ServiceType string

const (
	ServiceHouseCleaning ServiceType = "house_cleaning"
	ServiceCarWashing    ServiceType = "car_washing"
	ServiceLandscaping   ServiceType = "landscaping"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceHouseCleaning, ServiceCarWashing, ServiceLandscaping:
		return true
	}
	return false
}

// ServicePackage is a purchasable catalog entry. Prices are in EUR.
type ServicePackage struct {
	ID              string      `json:"id" bson:"id" yaml:"-"`
	Name            string      `json:"name" bson:"name" yaml:"name"`
	Description     string      `json:"description" bson:"description" yaml:"description"`
	BasePrice       float64     `json:"base_price" bson:"base_price" yaml:"base_price"`
	DurationMinutes int         `json:"duration_minutes" bson:"duration_minutes" yaml:"duration_minutes"`
	ServiceType     ServiceType `json:"service_type" bson:"service_type" yaml:"service_type"`
	Features        []string    `json:"features" bson:"features" yaml:"features"`
	BestFor         *string     `json:"best_for,omitempty" bson:"best_for,omitempty" yaml:"best_for"`
	MaxSize         *string     `json:"max_size,omitempty" bson:"max_size,omitempty" yaml:"max_size"`
}

type ServiceAddon struct {
	ID              string      `json:"id" bson:"id" yaml:"-"`
	Name            string      `json:"name" bson:"name" yaml:"name"`
	Description     string      `json:"description" bson:"description" yaml:"description"`
	Price           float64     `json:"price" bson:"price" yaml:"price"`
	ServiceType     ServiceType `json:"service_type" bson:"service_type" yaml:"service_type"`
	DurationMinutes *int        `json:"duration_minutes,omitempty" bson:"duration_minutes,omitempty" yaml:"duration_minutes"`
}
