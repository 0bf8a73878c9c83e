// Package model defines the values that flow between the criteria parser, the
// offer ranking engine and the delivery layer.
package model

// Location type tags reported by the geocoder.
const (
	LocationTypeRoute      = "ROUTE"
	LocationTypePostalCode = "POSTAL_CODE"
	LocationTypeLocality   = "LOCALITY"
)

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ResolvedLocation is a geocoded place. Either Center or both corners of the
// bounding box are set.
type ResolvedLocation struct {
	Name           string   `json:"name"`
	Types          []string `json:"types"`
	Center         *Point   `json:"center,omitempty"`
	Northeast      *Point   `json:"northeast,omitempty"`
	Southwest      *Point   `json:"southwest,omitempty"`
	IsFullPostcode bool     `json:"is_full_postcode"`
	IsStreet       bool     `json:"is_street"`
}

// HasBox reports whether both corners of the bounding box are present.
func (l *ResolvedLocation) HasBox() bool {
	return l != nil && l.Northeast != nil && l.Southwest != nil
}

// Valid reports whether the location carries a point or a full bounding box.
func (l *ResolvedLocation) Valid() bool {
	return l != nil && (l.Center != nil || l.HasBox())
}

// PrimaryType returns the first type tag, or "" when there are none.
func (l *ResolvedLocation) PrimaryType() string {
	if l == nil || len(l.Types) == 0 {
		return ""
	}
	return l.Types[0]
}

// IsPrecise reports whether the location names a street or a full postcode,
// i.e. something a user could be standing on rather than a whole area.
func (l *ResolvedLocation) IsPrecise() bool {
	return l != nil && (l.IsFullPostcode || l.IsStreet)
}

// IsStreetOrPostcode reports whether the primary type tag is a route or a
// postal code.
func (l *ResolvedLocation) IsStreetOrPostcode() bool {
	t := l.PrimaryType()
	return t == LocationTypeRoute || t == LocationTypePostalCode
}
