package citymunch

// LatLon is a coordinate as the partner API encodes it.
type LatLon struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CuisineType is a named cuisine known to the catalog.
type CuisineType struct {
	Name string `json:"name"`
}

// Restaurant is a restaurant record as returned by hints and searches.
type Restaurant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	StreetName string `json:"streetName,omitempty"`
}

// SearchHints is the full list of cuisine types and restaurant names.
type SearchHints struct {
	CuisineTypes []CuisineType `json:"cuisineTypes"`
	Restaurants  []Restaurant  `json:"restaurants"`
}

// Geometry is a geocoded place.
type Geometry struct {
	Name      string   `json:"name"`
	Types     []string `json:"types"`
	Center    *LatLon  `json:"center,omitempty"`
	Northeast *LatLon  `json:"northeast,omitempty"`
	Southwest *LatLon  `json:"southwest,omitempty"`
}

// GeocodeResponse is the result of a place-name lookup.
type GeocodeResponse struct {
	IsFound  bool      `json:"isFound"`
	Geometry *Geometry `json:"geometry,omitempty"`
}

// WalkingDistance is the walk from the user point to a restaurant.
type WalkingDistance struct {
	DurationText     string  `json:"durationText"`
	DistanceInMeters float64 `json:"distanceInMeters"`
}

// RestaurantResult is one restaurant search hit.
type RestaurantResult struct {
	Restaurant      Restaurant       `json:"restaurant"`
	WalkingDistance *WalkingDistance `json:"walkingDistance,omitempty"`
}

// RestaurantSearchResponse is the body of an authorised-restaurant search.
type RestaurantSearchResponse struct {
	Results []RestaurantResult `json:"results"`
}

// GroupDiscountBonus is an extra discount for larger parties.
type GroupDiscountBonus struct {
	MinCovers int `json:"minCovers"`
	Bonus     int `json:"bonus"`
}

// Event is a single dated instance of an offer.
type Event struct {
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Discount        int    `json:"discount"`
	CoversRemaining int    `json:"coversRemaining"`
	IsActiveOnDate  bool   `json:"isActiveOnDate"`
	IsToday         bool   `json:"isToday"`
	HasStarted      bool   `json:"hasStarted"`
	HasEnded        bool   `json:"hasEnded"`
}

// Offer is the recurring offer an event belongs to.
type Offer struct {
	ItemName             string               `json:"itemName,omitempty"`
	GroupDiscountBonuses []GroupDiscountBonus `json:"groupDiscountBonuses,omitempty"`
}

// EventResult bundles an event with its restaurant and offer.
type EventResult struct {
	Event      Event      `json:"event"`
	Restaurant Restaurant `json:"restaurant"`
	Offer      Offer      `json:"offer"`
}

// ActiveEventsResponse is the body of an active-event search.
type ActiveEventsResponse struct {
	Events []EventResult `json:"events"`
}
