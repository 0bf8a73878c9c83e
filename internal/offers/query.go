package offers

import (
	"github.com/rotisserie/eris"

	"github.com/citymunch/slack-bot/internal/geo"
	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/pkg/citymunch"
)

// BuildRestaurantQuery combines the cuisine, restaurant and location facets
// of c. Large areas are searched by bounding box, everything else by a
// radius around the centre. Streets and full postcodes also send the centre
// as the walking-distance origin.
func BuildRestaurantQuery(c *model.SearchCriteria, cfg Config) (citymunch.RestaurantQuery, error) {
	var q citymunch.RestaurantQuery
	if c.CuisineType != "" {
		q.CuisineTypes = []string{c.CuisineType}
	}
	for _, r := range c.Restaurants {
		q.IDs = append(q.IDs, r.ID)
	}

	loc := c.Location
	if loc == nil {
		return q, nil
	}

	switch {
	case geo.IsAreaSearch(loc, cfg.AreaThresholdMeters):
		q.Northeast = loc.Northeast
		q.Southwest = loc.Southwest
	case loc.Center != nil:
		q.Near = loc.Center
		q.RangeKM = cfg.RadiusKM
	default:
		// A small box without a centre is searched around its midpoint.
		p := geo.AnchorPoint(loc)
		if p == nil {
			return q, eris.Errorf("offers: location %q has neither a centre nor a bounding box", loc.Name)
		}
		q.Near = p
		q.RangeKM = cfg.RadiusKM
	}

	if loc.IsPrecise() && loc.Center != nil {
		q.UserPoint = loc.Center
	}
	return q, nil
}
