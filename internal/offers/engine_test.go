package offers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/pkg/citymunch"
	"github.com/citymunch/slack-bot/pkg/citymunch/mocks"
)

var noon = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(client citymunch.Client) *Engine {
	return NewEngine(client, Config{}, WithClock(func() time.Time { return noon }), WithIDGenerator(func() string { return "search-1" }))
}

func streetCriteria() *model.SearchCriteria {
	return &model.SearchCriteria{
		CuisineType: "Thai",
		Location: &model.ResolvedLocation{
			Name:     "Old St",
			Types:    []string{model.LocationTypeRoute},
			Center:   &model.Point{Latitude: 51.5256, Longitude: -0.0875},
			IsStreet: true,
		},
	}
}

func eventResult(id, start, end string, today bool) citymunch.EventResult {
	return citymunch.EventResult{
		Event: citymunch.Event{
			Date:            "2026-10-15",
			StartTime:       start,
			EndTime:         end,
			Discount:        30,
			CoversRemaining: 10,
			IsActiveOnDate:  true,
			IsToday:         today,
		},
		Restaurant: citymunch.Restaurant{ID: id, Name: "R" + id, StreetName: "Old St"},
	}
}

var nameInLine = regexp.MustCompile(` at (R\d+) `)

func restaurantOrder(s string) []string {
	var names []string
	for _, m := range nameInLine.FindAllStringSubmatch(s, -1) {
		names = append(names, m[1])
	}
	return names
}

func TestSearch_TwelveEventsPaginated(t *testing.T) {
	t.Parallel()

	// Distances are deliberately out of order.
	distances := []float64{900, 100, 500, 300, 1100, 700, 1000, 200, 800, 400, 600, 50}
	var restaurants []citymunch.RestaurantResult
	var events []citymunch.EventResult
	for i, d := range distances {
		id := fmt.Sprint(i)
		restaurants = append(restaurants, citymunch.RestaurantResult{
			Restaurant:      citymunch.Restaurant{ID: id, Name: "R" + id, StreetName: "Old St"},
			WalkingDistance: &citymunch.WalkingDistance{DurationText: fmt.Sprintf("%.0fm", d), DistanceInMeters: d},
		})
		start := "12:30"
		if i%2 == 1 {
			start = "18:00"
		}
		events = append(events, eventResult(id, start, "21:00", true))
	}

	client := mocks.NewMockClient(t)
	client.On("SearchRestaurants", mock.Anything, mock.MatchedBy(func(q citymunch.RestaurantQuery) bool {
		return q.UserPoint != nil && q.Near != nil && q.RangeKM == 1.2 && len(q.CuisineTypes) == 1
	})).Return(&citymunch.RestaurantSearchResponse{Results: restaurants}, nil)
	client.On("ActiveEvents", mock.Anything, mock.MatchedBy(func(q citymunch.EventQuery) bool {
		return len(q.RestaurantIDs) == 12 && q.Date.Equal(noon) && q.StartTime == nil
	})).Return(&citymunch.ActiveEventsResponse{Events: events}, nil)

	res, err := newTestEngine(client).Search(context.Background(), streetCriteria())
	require.NoError(t, err)

	assert.True(t, res.HasEvents)
	assert.True(t, res.AddShowMoreButton)
	assert.Equal(t, "search-1", res.SearchID)
	assert.Equal(t, 3, strings.Count(res.Message, "Reserve voucher"))
	assert.Equal(t, 7, strings.Count(res.MessageAfterShowingMore, "Reserve voucher"))

	assert.True(t, strings.HasPrefix(res.Message, "*Next two hours near Old St*:\n"))
	assert.Contains(t, res.MessageAfterShowingMore, "*On later near Old St*:\n")

	// Even ids start soon, odd ids later; each bucket is nearest first.
	order := restaurantOrder(res.Message + "\n" + res.MessageAfterShowingMore)
	assert.Equal(t, []string{"R2", "R10", "R8", "R0", "R6", "R4", "R11", "R1", "R7", "R3"}, order)
}

func TestSearch_NoRestaurants(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("SearchRestaurants", mock.Anything, mock.Anything).Return(&citymunch.RestaurantSearchResponse{}, nil)

	_, err := newTestEngine(client).Search(context.Background(), streetCriteria())
	assert.Equal(t, model.KindNoRestaurantsFound, model.KindOf(err))
}

func TestSearch_NoActiveEvents(t *testing.T) {
	t.Parallel()

	ended := eventResult("1", "12:00", "13:00", true)
	ended.Event.HasEnded = true
	inactive := eventResult("1", "18:00", "19:00", true)
	inactive.Event.IsActiveOnDate = false

	client := mocks.NewMockClient(t)
	client.On("SearchRestaurants", mock.Anything, mock.Anything).Return(&citymunch.RestaurantSearchResponse{
		Results: []citymunch.RestaurantResult{{Restaurant: citymunch.Restaurant{ID: "1", Name: "R1"}}},
	}, nil)
	client.On("ActiveEvents", mock.Anything, mock.Anything).Return(&citymunch.ActiveEventsResponse{
		Events: []citymunch.EventResult{ended, inactive},
	}, nil)

	_, err := newTestEngine(client).Search(context.Background(), streetCriteria())
	assert.Equal(t, model.KindNoOffersFound, model.KindOf(err))
}

func TestSearch_NamedRestaurantWithoutOffers(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("SearchRestaurants", mock.Anything, mock.MatchedBy(func(q citymunch.RestaurantQuery) bool {
		return strings.Join(q.IDs, ",") == "t1,t2"
	})).Return(&citymunch.RestaurantSearchResponse{
		Results: []citymunch.RestaurantResult{
			{Restaurant: citymunch.Restaurant{ID: "t1", Name: "Thali Cafe (Clifton)"}},
			{Restaurant: citymunch.Restaurant{ID: "t2", Name: "Thali Cafe (Easton)"}},
		},
	}, nil)
	client.On("ActiveEvents", mock.Anything, mock.Anything).Return(&citymunch.ActiveEventsResponse{}, nil)

	c := &model.SearchCriteria{Restaurants: []model.RestaurantRef{
		{ID: "t1", Name: "Thali Cafe (Clifton)"},
		{ID: "t2", Name: "Thali Cafe (Easton)"},
	}}
	res, err := newTestEngine(client).Search(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, res.HasEvents)
	assert.False(t, res.AddShowMoreButton)
	assert.Equal(t,
		"Thali Cafe (Clifton) doesn't have any offers coming up today.\n<https://cmun.ch/slack/t1|View on CityMunch>\n"+
			"Thali Cafe (Easton) doesn't have any offers coming up today.\n<https://cmun.ch/slack/t2|View on CityMunch>\n",
		res.Message)
}

func TestSearch_TimeWindowPassedToEvents(t *testing.T) {
	t.Parallel()

	c := streetCriteria()
	c.SetTimeWindow(model.NewTimeOfDay(12, 0), model.NewTimeOfDay(14, 30))

	client := mocks.NewMockClient(t)
	client.On("SearchRestaurants", mock.Anything, mock.Anything).Return(&citymunch.RestaurantSearchResponse{
		Results: []citymunch.RestaurantResult{{Restaurant: citymunch.Restaurant{ID: "1", Name: "R1"}}},
	}, nil)
	client.On("ActiveEvents", mock.Anything, mock.MatchedBy(func(q citymunch.EventQuery) bool {
		return q.StartTime != nil && q.StartTime.String() == "12:00" && q.EndTime.String() == "14:30"
	})).Return(&citymunch.ActiveEventsResponse{Events: []citymunch.EventResult{eventResult("1", "12:00", "14:30", true)}}, nil)

	res, err := newTestEngine(client).Search(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, res.AddShowMoreButton)
	assert.Empty(t, res.MessageAfterShowingMore)
}

func TestSearch_ClientError(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("SearchRestaurants", mock.Anything, mock.Anything).Return(nil, errors.New("503"))

	_, err := newTestEngine(client).Search(context.Background(), streetCriteria())
	require.Error(t, err)
	assert.Equal(t, model.KindUnknown, model.KindOf(err))
}

func TestSearch_UnresolvedCriteria(t *testing.T) {
	t.Parallel()

	_, err := newTestEngine(mocks.NewMockClient(t)).Search(context.Background(), &model.SearchCriteria{})
	assert.Equal(t, model.KindParseFailure, model.KindOf(err))
}
