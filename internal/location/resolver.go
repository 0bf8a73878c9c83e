// Package location turns free text into a geocoded place.
package location

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/pkg/citymunch"
)

var (
	// leadingCue matches a conversational "in ", "near " or "around " prefix.
	leadingCue = regexp.MustCompile(`(?i)^(in|near|around)\s+`)

	// fullPostcode matches a complete UK postcode such as "EC2A 4BX".
	fullPostcode = regexp.MustCompile(`(?i)^[A-Z]{1,2}[0-9][0-9A-Z]?\s?[0-9][A-Z]{2}$`)
)

// Resolver geocodes place names through the partner API.
type Resolver struct {
	client citymunch.Client
}

// NewResolver creates a Resolver.
func NewResolver(client citymunch.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve geocodes text. It fails with KindLocationNotFound when the provider
// has no match; transport errors are returned wrapped and untagged.
func (r *Resolver) Resolve(ctx context.Context, text string) (*model.ResolvedLocation, error) {
	place := StripCue(text)
	if place == "" {
		return nil, model.NewSearchError(model.KindLocationNotFound, "location: empty place name")
	}

	resp, err := r.client.Geocode(ctx, place)
	if err != nil {
		return nil, eris.Wrapf(err, "location: geocode %q", place)
	}
	if !resp.IsFound || resp.Geometry == nil {
		return nil, model.NewSearchError(model.KindLocationNotFound, "location: could not geocode %q", place)
	}

	loc := fromGeometry(resp.Geometry)
	if !loc.Valid() {
		return nil, model.NewSearchError(model.KindLocationNotFound, "location: %q has no coordinates", place)
	}
	loc.IsFullPostcode = IsFullPostcode(place)

	zap.L().Debug("location: resolved",
		zap.String("text", place),
		zap.String("name", loc.Name),
		zap.Strings("types", loc.Types),
	)
	return loc, nil
}

// StripCue trims text and removes one leading "in", "near" or "around".
func StripCue(text string) string {
	text = strings.TrimSpace(text)
	return strings.TrimSpace(leadingCue.ReplaceAllString(text, ""))
}

// IsFullPostcode reports whether text is a complete UK postcode.
func IsFullPostcode(text string) bool {
	return fullPostcode.MatchString(strings.TrimSpace(text))
}

func fromGeometry(g *citymunch.Geometry) *model.ResolvedLocation {
	return &model.ResolvedLocation{
		Name:      g.Name,
		Types:     g.Types,
		Center:    toPoint(g.Center),
		Northeast: toPoint(g.Northeast),
		Southwest: toPoint(g.Southwest),
		IsStreet:  slices.Contains(g.Types, model.LocationTypeRoute),
	}
}

func toPoint(ll *citymunch.LatLon) *model.Point {
	if ll == nil {
		return nil
	}
	return &model.Point{Latitude: ll.Latitude, Longitude: ll.Longitude}
}
