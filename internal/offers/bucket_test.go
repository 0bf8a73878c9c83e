package offers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citymunch/slack-bot/internal/geo"
	"github.com/citymunch/slack-bot/internal/model"
)

func at(h, m int) model.TimeOfDay { return model.NewTimeOfDay(h, m) }

func TestInNextTwoHours(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   model.OfferEvent
		now  model.TimeOfDay
		want bool
	}{
		{"started", model.OfferEvent{HasStarted: true, StartTime: at(11, 0)}, at(12, 0), true},
		{"started other day", model.OfferEvent{HasStarted: true}, at(12, 0), true},
		{"within two hours", model.OfferEvent{IsToday: true, StartTime: at(13, 59)}, at(12, 0), true},
		{"exactly two hours", model.OfferEvent{IsToday: true, StartTime: at(14, 0)}, at(12, 0), true},
		{"beyond two hours", model.OfferEvent{IsToday: true, StartTime: at(14, 1)}, at(12, 0), false},
		{"not today", model.OfferEvent{IsToday: false, StartTime: at(12, 30)}, at(12, 0), false},
		{"late night before ten", model.OfferEvent{IsToday: true, StartTime: at(22, 30)}, at(21, 0), false},
		{"late night after ten", model.OfferEvent{IsToday: true, StartTime: at(23, 30)}, at(22, 0), true},
		{"evening seen late", model.OfferEvent{IsToday: true, StartTime: at(21, 0)}, at(22, 15), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InNextTwoHours(tt.ev, tt.now))
		})
	}
}

func TestBucket_PreservesOrder(t *testing.T) {
	t.Parallel()

	events := []model.OfferEvent{
		{RestaurantID: "a", IsToday: true, StartTime: at(18, 0)},
		{RestaurantID: "b", HasStarted: true},
		{RestaurantID: "c", IsToday: true, StartTime: at(12, 30)},
		{RestaurantID: "d", IsToday: false, StartTime: at(12, 30)},
	}
	next, later := Bucket(events, at(12, 0))
	require.Len(t, next, 2)
	require.Len(t, later, 2)
	assert.Equal(t, "b", next[0].RestaurantID)
	assert.Equal(t, "c", next[1].RestaurantID)
	assert.Equal(t, "a", later[0].RestaurantID)
	assert.Equal(t, "d", later[1].RestaurantID)
}

func TestSortByWalkingDistance(t *testing.T) {
	t.Parallel()

	wd := func(m float64) *model.WalkingDistance { return &model.WalkingDistance{DistanceInMeters: m} }
	events := []model.OfferEvent{
		{RestaurantID: "far", WalkingDistance: wd(900)},
		{RestaurantID: "none"},
		{RestaurantID: "near", WalkingDistance: wd(100)},
		{RestaurantID: "mid", WalkingDistance: wd(400)},
	}
	SortByWalkingDistance(events)

	var ids []string
	for _, ev := range events {
		ids = append(ids, ev.RestaurantID)
	}
	assert.Equal(t, []string{"near", "mid", "far", "none"}, ids)

	unsorted := []model.OfferEvent{{RestaurantID: "x"}, {RestaurantID: "y"}}
	SortByWalkingDistance(unsorted)
	assert.Equal(t, "x", unsorted[0].RestaurantID)
}

func TestBuildRestaurantQuery(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	area := &model.SearchCriteria{Location: &model.ResolvedLocation{
		Name:      "Shoreditch",
		Types:     []string{"NEIGHBORHOOD"},
		Center:    &model.Point{Latitude: 51.527, Longitude: -0.08},
		Northeast: &model.Point{Latitude: 51.535, Longitude: -0.07},
		Southwest: &model.Point{Latitude: 51.52, Longitude: -0.09},
	}}
	q, err := BuildRestaurantQuery(area, cfg)
	require.NoError(t, err)
	assert.NotNil(t, q.Northeast)
	assert.NotNil(t, q.Southwest)
	assert.Nil(t, q.Near)
	assert.Nil(t, q.UserPoint)

	postcode := &model.SearchCriteria{
		CuisineType: "Thai",
		Restaurants: []model.RestaurantRef{{ID: "r1"}},
		Location: &model.ResolvedLocation{
			Name:           "EC2A 4BX",
			Types:          []string{model.LocationTypePostalCode},
			Center:         &model.Point{Latitude: 51.52, Longitude: -0.08},
			Northeast:      &model.Point{Latitude: 51.5201, Longitude: -0.0799},
			Southwest:      &model.Point{Latitude: 51.5199, Longitude: -0.0801},
			IsFullPostcode: true,
		},
	}
	q, err = BuildRestaurantQuery(postcode, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Thai"}, q.CuisineTypes)
	assert.Equal(t, []string{"r1"}, q.IDs)
	assert.Nil(t, q.Northeast)
	require.NotNil(t, q.Near)
	assert.InDelta(t, 1.2, q.RangeKM, 1e-9)
	assert.Equal(t, postcode.Location.Center, q.UserPoint)

	small := &model.SearchCriteria{Location: &model.ResolvedLocation{
		Name:      "Tiny",
		Northeast: &model.Point{Latitude: 51.5201, Longitude: -0.0799},
		Southwest: &model.Point{Latitude: 51.5199, Longitude: -0.0801},
	}}
	q, err = BuildRestaurantQuery(small, cfg)
	require.NoError(t, err)
	require.NotNil(t, q.Near)
	assert.Equal(t, geo.AnchorPoint(small.Location), q.Near)

	_, err = BuildRestaurantQuery(&model.SearchCriteria{Location: &model.ResolvedLocation{Name: "Nowhere"}}, cfg)
	assert.Error(t, err)

	q, err = BuildRestaurantQuery(&model.SearchCriteria{CuisineType: "Thai"}, cfg)
	require.NoError(t, err)
	assert.Empty(t, q.Values().Get("nearPoint"))
}
