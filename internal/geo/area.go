package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/citymunch/slack-bot/internal/model"
)

// DefaultAreaThresholdMeters is the box diagonal at or above which a location
// is searched as an area rather than as a point plus radius.
const DefaultAreaThresholdMeters = 1200.0

// wgs84 is the SRID stored alongside encoded points.
const wgs84 = 4326

// IsAreaSearch reports whether loc has both box corners and their distance is
// at least thresholdMeters.
func IsAreaSearch(loc *model.ResolvedLocation, thresholdMeters float64) bool {
	if !loc.HasBox() {
		return false
	}
	return Haversine(*loc.Northeast, *loc.Southwest) >= thresholdMeters
}

// Bounds returns the extent of loc as lon/lat bounds: the box when present,
// otherwise the degenerate bounds of the centre. Returns nil for an empty location.
func Bounds(loc *model.ResolvedLocation) *geom.Bounds {
	switch {
	case loc.HasBox():
		return geom.NewBounds(geom.XY).Set(
			loc.Southwest.Longitude, loc.Southwest.Latitude,
			loc.Northeast.Longitude, loc.Northeast.Latitude,
		)
	case loc != nil && loc.Center != nil:
		return geom.NewBounds(geom.XY).Set(
			loc.Center.Longitude, loc.Center.Latitude,
			loc.Center.Longitude, loc.Center.Latitude,
		)
	default:
		return nil
	}
}

// AnchorPoint returns the point a user-anchored search should measure from:
// the centre, or the middle of the box when no centre is known.
func AnchorPoint(loc *model.ResolvedLocation) *model.Point {
	if loc == nil {
		return nil
	}
	if loc.Center != nil {
		p := *loc.Center
		return &p
	}
	b := Bounds(loc)
	if b == nil {
		return nil
	}
	return &model.Point{
		Latitude:  (b.Min(1) + b.Max(1)) / 2,
		Longitude: (b.Min(0) + b.Max(0)) / 2,
	}
}

// EncodePoint converts p to EWKB with SRID 4326.
func EncodePoint(p model.Point) ([]byte, error) {
	g := geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude}).SetSRID(wgs84)
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode point")
	}
	return data, nil
}

// DecodePoint parses an EWKB point.
func DecodePoint(data []byte) (model.Point, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return model.Point{}, eris.Wrap(err, "geo: decode point")
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return model.Point{}, eris.Errorf("geo: expected point, got %T", g)
	}
	return model.Point{Latitude: pt.Y(), Longitude: pt.X()}, nil
}
