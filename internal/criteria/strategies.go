package criteria

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/internal/store"
)

// singleStrategies is the path for text without a location cue. Order
// matters: a restaurant match wins outright, cuisine and meal time
// accumulate, and explicit location phrasing ends the parse.
func (p *Parser) singleStrategies(text string) []strategy {
	normalized := normalize(text)
	return []strategy{
		{"restaurant", p.restaurantOnly(text)},
		{"cuisine", p.cuisine(text)},
		{"meal_time", mealTime(normalized)},
		{"saved_location", p.savedLocation(singleSavedLocationName(normalized))},
		{"near_me", p.nearMe(nearMeTexts[normalized])},
		{"geocode", p.optionalGeocode(text)},
		{"accumulated", p.acceptAccumulated},
	}
}

// mixedStrategies is the path for "<left> in|near|around <right>". The left
// half must name a cuisine, restaurant or meal time; the right half must
// resolve to a location.
func (p *Parser) mixedStrategies(left, right string) []strategy {
	leftNorm := normalize(left)
	rightNorm := normalize(right)

	savedName := ""
	if store.IsSavedLocationOption(rightNorm) {
		savedName = rightNorm
	}

	return []strategy{
		{"cuisine", p.cuisine(left)},
		{"restaurant", p.restaurants(left)},
		{"meal_time", mealTime(leftNorm)},
		{"require_facet", requireFacet(left)},
		{"saved_location", p.savedLocation(savedName)},
		{"near_me", p.nearMe(rightNorm == "me")},
		{"geocode", p.requiredGeocode(right)},
	}
}

func (p *Parser) restaurantOnly(text string) func(context.Context, *parseState) (Outcome, error) {
	return func(ctx context.Context, st *parseState) (Outcome, error) {
		refs, err := p.catalog.MatchRestaurants(ctx, text)
		if err != nil {
			return NoMatch, eris.Wrap(err, "criteria: match restaurants")
		}
		if len(refs) == 0 {
			return NoMatch, nil
		}
		st.criteria.Restaurants = refs
		return Terminal, nil
	}
}

func (p *Parser) restaurants(text string) func(context.Context, *parseState) (Outcome, error) {
	return func(ctx context.Context, st *parseState) (Outcome, error) {
		refs, err := p.catalog.MatchRestaurants(ctx, text)
		if err != nil {
			return NoMatch, eris.Wrap(err, "criteria: match restaurants")
		}
		if len(refs) == 0 {
			return NoMatch, nil
		}
		st.criteria.Restaurants = refs
		return Matched, nil
	}
}

func (p *Parser) cuisine(text string) func(context.Context, *parseState) (Outcome, error) {
	return func(ctx context.Context, st *parseState) (Outcome, error) {
		name, ok, err := p.catalog.MatchCuisineType(ctx, text)
		if err != nil {
			return NoMatch, eris.Wrap(err, "criteria: match cuisine")
		}
		if !ok {
			return NoMatch, nil
		}
		st.criteria.CuisineType = name
		return Matched, nil
	}
}

func mealTime(normalized string) func(context.Context, *parseState) (Outcome, error) {
	return func(_ context.Context, st *parseState) (Outcome, error) {
		switch normalized {
		case "lunch":
			st.criteria.SetTimeWindow(lunchStart, lunchEnd)
		case "dinner":
			st.criteria.SetTimeWindow(dinnerStart, dinnerEnd)
		default:
			return NoMatch, nil
		}
		return Matched, nil
	}
}

// singleSavedLocationName returns the saved-location name in "home",
// "near work" and the like, or "".
func singleSavedLocationName(normalized string) string {
	name := strings.TrimPrefix(normalized, "near ")
	if store.IsSavedLocationOption(name) {
		return name
	}
	return ""
}

// savedLocation adopts the user's saved location called name. A missing
// saved location is not a match.
func (p *Parser) savedLocation(name string) func(context.Context, *parseState) (Outcome, error) {
	return func(ctx context.Context, st *parseState) (Outcome, error) {
		if name == "" || st.userID == "" || p.prefs == nil {
			return NoMatch, nil
		}
		loc, err := p.prefs.SavedLocation(ctx, st.userID, name)
		if err != nil {
			return NoMatch, eris.Wrapf(err, "criteria: saved location %s", name)
		}
		if loc == nil {
			return NoMatch, nil
		}
		zap.L().Debug("criteria: adopted saved location",
			zap.String("user_id", st.userID),
			zap.String("name", name),
			zap.String("location", loc.Name),
		)
		st.criteria.Location = loc
		st.criteria.IsLocationFromHistory = true
		return Terminal, nil
	}
}

// nearMe adopts the user's most recent search location inside the recent
// window, or fails asking for a location.
func (p *Parser) nearMe(applies bool) func(context.Context, *parseState) (Outcome, error) {
	return func(ctx context.Context, st *parseState) (Outcome, error) {
		if !applies {
			return NoMatch, nil
		}
		loc, err := p.latestLocation(ctx, st.userID, p.now().Add(-p.recentWindow))
		if err != nil {
			return NoMatch, err
		}
		if loc == nil {
			return NoMatch, model.NewSearchError(model.KindNeedsLocation, "criteria: user must say where they are")
		}
		zap.L().Debug("criteria: adopted location from recent search",
			zap.String("user_id", st.userID),
			zap.String("location", loc.Name),
		)
		st.criteria.Location = loc
		st.criteria.IsLocationFromHistory = true
		return Terminal, nil
	}
}

// optionalGeocode tries the whole text as a place. Geocoding failures are
// ignored. Text already consumed as a cuisine or meal time is not geocoded.
func (p *Parser) optionalGeocode(text string) func(context.Context, *parseState) (Outcome, error) {
	return func(ctx context.Context, st *parseState) (Outcome, error) {
		if st.criteria.HasNonLocationFacet() {
			return NoMatch, nil
		}
		loc, err := p.geocoder.Resolve(ctx, text)
		if err != nil {
			zap.L().Debug("criteria: text is not a place", zap.String("text", text), zap.Error(err))
			return NoMatch, nil
		}
		st.criteria.Location = loc
		return Terminal, nil
	}
}

// acceptAccumulated finishes a single-path parse that found a cuisine or
// time window, borrowing the user's last known location when possible.
func (p *Parser) acceptAccumulated(ctx context.Context, st *parseState) (Outcome, error) {
	if st.criteria.CuisineType == "" && !st.criteria.HasTimeWindow() {
		return NoMatch, nil
	}
	if st.criteria.Location == nil && st.userID != "" {
		loc, err := p.latestLocation(ctx, st.userID, time.Time{})
		if err != nil {
			zap.L().Warn("criteria: history backfill failed", zap.String("user_id", st.userID), zap.Error(err))
		} else if loc != nil {
			zap.L().Debug("criteria: adopted location from last search",
				zap.String("user_id", st.userID),
				zap.String("location", loc.Name),
			)
			st.criteria.Location = loc
			st.criteria.IsLocationFromHistory = true
		}
	}
	return Terminal, nil
}

func requireFacet(left string) func(context.Context, *parseState) (Outcome, error) {
	return func(_ context.Context, st *parseState) (Outcome, error) {
		if !st.criteria.HasNonLocationFacet() {
			return NoMatch, model.NewSearchError(model.KindParseFailure, "criteria: %q is not a cuisine, restaurant or meal time", left)
		}
		return NoMatch, nil
	}
}

// requiredGeocode resolves the location half of a mixed query; failure is
// fatal.
func (p *Parser) requiredGeocode(text string) func(context.Context, *parseState) (Outcome, error) {
	return func(ctx context.Context, st *parseState) (Outcome, error) {
		loc, err := p.geocoder.Resolve(ctx, text)
		if err != nil {
			return NoMatch, model.WrapSearchError(model.KindGeocodeFailed, err, "criteria: could not geocode %q", text)
		}
		st.criteria.Location = loc
		return Terminal, nil
	}
}
