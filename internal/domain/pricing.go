package domain

// TravelFeeLabel is the breakdown key for the travel fee line.
const TravelFeeLabel = "Travel Fee"

// PriceEstimate is embedded in a Booking and never stored on its own.
// Breakdown is presentational; TotalPrice is authoritative.
type PriceEstimate struct {
	BasePrice   float64            `json:"base_price" bson:"base_price"`
	AddonsPrice float64            `json:"addons_price" bson:"addons_price"`
	TravelFee   float64            `json:"travel_fee" bson:"travel_fee"`
	TotalPrice  float64            `json:"total_price" bson:"total_price"`
	Currency    string             `json:"currency" bson:"currency"`
	Breakdown   map[string]float64 `json:"breakdown" bson:"breakdown"`
}
