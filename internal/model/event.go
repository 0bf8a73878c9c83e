package model

import "time"

// GroupDiscountBonus is an extra discount for parties of at least MinCovers.
type GroupDiscountBonus struct {
	MinCovers int `json:"min_covers"`
	Bonus     int `json:"bonus"`
}

// WalkingDistance is the provider-computed walk from the user anchor point.
type WalkingDistance struct {
	DurationText     string  `json:"duration_text"`
	DistanceInMeters float64 `json:"distance_in_meters"`
}

// OfferEvent is one restaurant's active discount instance. Events are fetched
// per request and never persisted.
type OfferEvent struct {
	RestaurantID         string               `json:"restaurant_id"`
	RestaurantName       string               `json:"restaurant_name"`
	StreetName           string               `json:"street_name"`
	Discount             int                  `json:"discount"`
	ItemName             string               `json:"item_name,omitempty"`
	StartTime            TimeOfDay            `json:"start_time"`
	EndTime              TimeOfDay            `json:"end_time"`
	Date                 time.Time            `json:"date"`
	IsToday              bool                 `json:"is_today"`
	IsActiveOnDate       bool                 `json:"is_active_on_date"`
	HasStarted           bool                 `json:"has_started"`
	HasEnded             bool                 `json:"has_ended"`
	CoversRemaining      int                  `json:"covers_remaining"`
	GroupDiscountBonuses []GroupDiscountBonus `json:"group_discount_bonuses,omitempty"`
	WalkingDistance      *WalkingDistance     `json:"walking_distance,omitempty"`
}
