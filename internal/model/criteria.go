package model

// RestaurantRef identifies a catalog restaurant.
type RestaurantRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchCriteria is the structured form of a free-text search. Values are
// request scoped and never mutated after the parser returns them.
type SearchCriteria struct {
	CuisineType           string            `json:"cuisine_type,omitempty"`
	Restaurants           []RestaurantRef   `json:"restaurants"`
	Location              *ResolvedLocation `json:"location,omitempty"`
	StartTime             *TimeOfDay        `json:"start_time,omitempty"`
	EndTime               *TimeOfDay        `json:"end_time,omitempty"`
	IsLocationFromHistory bool              `json:"is_location_from_history"`
}

// HasTimeWindow reports whether either end of the time window is set.
func (c *SearchCriteria) HasTimeWindow() bool {
	return c.StartTime != nil || c.EndTime != nil
}

// HasNonLocationFacet reports whether a cuisine, restaurant or time window
// was recognised.
func (c *SearchCriteria) HasNonLocationFacet() bool {
	return c.CuisineType != "" || len(c.Restaurants) > 0 || c.HasTimeWindow()
}

// Resolved reports whether at least one facet is present.
func (c *SearchCriteria) Resolved() bool {
	return c.HasNonLocationFacet() || c.Location != nil
}

// SetTimeWindow sets both ends of the window.
func (c *SearchCriteria) SetTimeWindow(start, end TimeOfDay) {
	c.StartTime = &start
	c.EndTime = &end
}
