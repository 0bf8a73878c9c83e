// Package offers finds today's offer events for parsed criteria and renders
// them as a paginated chat message.
package offers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/citymunch/slack-bot/internal/geo"
	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/pkg/citymunch"
)

// Config holds ranking and rendering parameters.
type Config struct {
	AreaThresholdMeters float64
	RadiusKM            float64
	MaxLines            int
	FirstPageLines      int
	LinkBaseURL         string
	Location            *time.Location
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		AreaThresholdMeters: geo.DefaultAreaThresholdMeters,
		RadiusKM:            1.2,
		MaxLines:            10,
		FirstPageLines:      3,
		LinkBaseURL:         "https://cmun.ch",
		Location:            time.UTC,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator overrides the search ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// Engine runs searches against the partner API.
type Engine struct {
	client citymunch.Client
	cfg    Config
	now    func() time.Time
	newID  func() string
}

// NewEngine creates an Engine. Zero-valued config fields take their defaults.
func NewEngine(client citymunch.Client, cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.AreaThresholdMeters <= 0 {
		cfg.AreaThresholdMeters = def.AreaThresholdMeters
	}
	if cfg.RadiusKM <= 0 {
		cfg.RadiusKM = def.RadiusKM
	}
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = def.MaxLines
	}
	if cfg.FirstPageLines <= 0 {
		cfg.FirstPageLines = def.FirstPageLines
	}
	if cfg.LinkBaseURL == "" {
		cfg.LinkBaseURL = def.LinkBaseURL
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}

	e := &Engine{
		client: client,
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search finds and renders today's offers for c. It fails with
// KindNoRestaurantsFound or KindNoOffersFound when nothing matches, except
// that named restaurants without offers produce a result with HasEvents
// false.
func (e *Engine) Search(ctx context.Context, c *model.SearchCriteria) (*model.SearchResult, error) {
	if c == nil || !c.Resolved() {
		return nil, model.NewSearchError(model.KindParseFailure, "offers: criteria have no facets")
	}

	rq, err := BuildRestaurantQuery(c, e.cfg)
	if err != nil {
		return nil, err
	}

	restaurants, err := e.client.SearchRestaurants(ctx, rq)
	if err != nil {
		return nil, eris.Wrap(err, "offers: search restaurants")
	}
	if len(restaurants.Results) == 0 {
		return nil, model.NewSearchError(model.KindNoRestaurantsFound, "offers: no restaurants match")
	}

	now := e.now().In(e.cfg.Location)
	ids := make([]string, 0, len(restaurants.Results))
	for _, r := range restaurants.Results {
		ids = append(ids, r.Restaurant.ID)
	}

	resp, err := e.client.ActiveEvents(ctx, citymunch.EventQuery{
		RestaurantIDs: ids,
		Date:          now,
		StartTime:     c.StartTime,
		EndTime:       c.EndTime,
	})
	if err != nil {
		return nil, eris.Wrap(err, "offers: active events")
	}

	events := activeEvents(resp.Events, restaurants.Results)
	if len(events) == 0 {
		if len(c.Restaurants) > 0 {
			return &model.SearchResult{
				ParsedCriteria: c,
				HasEvents:      false,
				Message:        e.noOffersMessage(c.Restaurants),
				SearchID:       e.newID(),
			}, nil
		}
		return nil, model.NewSearchError(model.KindNoOffersFound, "offers: nothing on today")
	}

	nextTwoHours, onLater := Bucket(events, clockTime(now))
	SortByWalkingDistance(nextTwoHours)
	SortByWalkingDistance(onLater)

	lines := e.render(c.Location, nextTwoHours, onLater)
	message, more := Paginate(lines, e.cfg.MaxLines, e.cfg.FirstPageLines)

	zap.L().Debug("offers: search complete",
		zap.Int("restaurants", len(ids)),
		zap.Int("events", len(events)),
		zap.Int("next_two_hours", len(nextTwoHours)),
		zap.Int("on_later", len(onLater)),
	)

	return &model.SearchResult{
		ParsedCriteria:          c,
		HasEvents:               true,
		Message:                 message,
		MessageAfterShowingMore: more,
		AddShowMoreButton:       more != "",
		SearchID:                e.newID(),
	}, nil
}

// activeEvents converts the wire events that are active today and not yet
// ended, attaching street names and walking distances from the restaurant
// search.
func activeEvents(results []citymunch.EventResult, restaurants []citymunch.RestaurantResult) []model.OfferEvent {
	byID := make(map[string]citymunch.RestaurantResult, len(restaurants))
	for _, r := range restaurants {
		if _, seen := byID[r.Restaurant.ID]; !seen {
			byID[r.Restaurant.ID] = r
		}
	}

	events := make([]model.OfferEvent, 0, len(results))
	for _, res := range results {
		if !res.Event.IsActiveOnDate || res.Event.HasEnded {
			continue
		}
		ev, err := toOfferEvent(res, byID[res.Restaurant.ID])
		if err != nil {
			zap.L().Warn("offers: skipping malformed event",
				zap.String("restaurant_id", res.Restaurant.ID),
				zap.Error(err),
			)
			continue
		}
		events = append(events, ev)
	}
	return events
}

func toOfferEvent(res citymunch.EventResult, rr citymunch.RestaurantResult) (model.OfferEvent, error) {
	start, err := model.ParseTimeOfDay(res.Event.StartTime)
	if err != nil {
		return model.OfferEvent{}, err
	}
	end, err := model.ParseTimeOfDay(res.Event.EndTime)
	if err != nil {
		return model.OfferEvent{}, err
	}
	var date time.Time
	if res.Event.Date != "" {
		if date, err = citymunch.ParseDate(res.Event.Date); err != nil {
			return model.OfferEvent{}, eris.Wrapf(err, "offers: parse date %q", res.Event.Date)
		}
	}

	street := res.Restaurant.StreetName
	if street == "" {
		street = rr.Restaurant.StreetName
	}
	name := res.Restaurant.Name
	if name == "" {
		name = rr.Restaurant.Name
	}

	ev := model.OfferEvent{
		RestaurantID:    res.Restaurant.ID,
		RestaurantName:  name,
		StreetName:      street,
		Discount:        res.Event.Discount,
		ItemName:        res.Offer.ItemName,
		StartTime:       start,
		EndTime:         end,
		Date:            date,
		IsToday:         res.Event.IsToday,
		IsActiveOnDate:  res.Event.IsActiveOnDate,
		HasStarted:      res.Event.HasStarted,
		HasEnded:        res.Event.HasEnded,
		CoversRemaining: res.Event.CoversRemaining,
	}
	for _, b := range res.Offer.GroupDiscountBonuses {
		ev.GroupDiscountBonuses = append(ev.GroupDiscountBonuses, model.GroupDiscountBonus{MinCovers: b.MinCovers, Bonus: b.Bonus})
	}
	if rr.WalkingDistance != nil {
		ev.WalkingDistance = &model.WalkingDistance{
			DurationText:     rr.WalkingDistance.DurationText,
			DistanceInMeters: rr.WalkingDistance.DistanceInMeters,
		}
	}
	return ev, nil
}

func clockTime(t time.Time) model.TimeOfDay {
	return model.NewTimeOfDay(t.Hour(), t.Minute())
}
