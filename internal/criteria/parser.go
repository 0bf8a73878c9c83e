// Package criteria turns free-text search phrases into structured search
// criteria.
package criteria

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/citymunch/slack-bot/internal/catalog"
	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/internal/store"
)

// DefaultRecentLocationWindow bounds how old a past search location may be
// for "near me" style queries.
const DefaultRecentLocationWindow = 6 * time.Hour

var (
	mixedPattern   = regexp.MustCompile(`(?i)^.+ (in|around|near) .+$`)
	mixedSeparator = regexp.MustCompile(`(?i) (in|around|near) `)
	trailingPlease = regexp.MustCompile(`(?i)please$`)
)

// Meal-time windows.
var (
	lunchStart  = model.NewTimeOfDay(12, 0)
	lunchEnd    = model.NewTimeOfDay(14, 30)
	dinnerStart = model.NewTimeOfDay(17, 0)
	dinnerEnd   = model.NewTimeOfDay(20, 30)
)

var nearMeTexts = map[string]bool{"near me": true, "around me": true, "here": true}

// Catalog matches text against known cuisines and restaurants.
type Catalog interface {
	MatchCuisineType(ctx context.Context, text string) (string, bool, error)
	MatchRestaurants(ctx context.Context, text string) ([]model.RestaurantRef, error)
}

// Geocoder resolves free text to a location.
type Geocoder interface {
	Resolve(ctx context.Context, text string) (*model.ResolvedLocation, error)
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// WithRecentLocationWindow overrides DefaultRecentLocationWindow.
func WithRecentLocationWindow(d time.Duration) Option {
	return func(p *Parser) {
		if d > 0 {
			p.recentWindow = d
		}
	}
}

// Parser classifies search text into cuisine, restaurant, location and time
// window facets.
type Parser struct {
	catalog      Catalog
	geocoder     Geocoder
	history      store.HistoryStore
	prefs        store.PreferenceStore
	now          func() time.Time
	recentWindow time.Duration

	pending sync.WaitGroup
}

// NewParser creates a Parser. history and prefs may share one store.
func NewParser(cat Catalog, geocoder Geocoder, history store.HistoryStore, prefs store.PreferenceStore, opts ...Option) *Parser {
	p := &Parser{
		catalog:      cat,
		geocoder:     geocoder,
		history:      history,
		prefs:        prefs,
		now:          time.Now,
		recentWindow: DefaultRecentLocationWindow,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse turns text into criteria. Failures carry a model.ErrorKind. Every
// parse, successful or not, is recorded to the history store in the
// background.
func (p *Parser) Parse(ctx context.Context, text, userID string) (*model.SearchCriteria, error) {
	text = Preprocess(text)

	var (
		c   *model.SearchCriteria
		err error
	)
	if left, right, ok := SplitMixed(text); ok {
		c, err = p.parseMixed(ctx, text, left, right, userID)
	} else {
		c, err = p.parseSingle(ctx, text, userID)
	}

	p.record(ctx, text, userID, c)
	return c, err
}

// Wait blocks until background history writes have finished.
func (p *Parser) Wait() {
	p.pending.Wait()
}

func (p *Parser) parseSingle(ctx context.Context, text, userID string) (*model.SearchCriteria, error) {
	st := &parseState{userID: userID}
	name, done, err := runStrategies(ctx, st, p.singleStrategies(text))
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, model.NewSearchError(model.KindParseFailure, "criteria: could not parse %q", text)
	}
	zap.L().Debug("criteria: parsed", zap.String("text", text), zap.String("path", "single"), zap.String("strategy", name))
	return finish(st), nil
}

func (p *Parser) parseMixed(ctx context.Context, text, left, right, userID string) (*model.SearchCriteria, error) {
	st := &parseState{userID: userID}
	name, done, err := runStrategies(ctx, st, p.mixedStrategies(left, right))
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, model.NewSearchError(model.KindParseFailure, "criteria: could not parse %q", text)
	}
	zap.L().Debug("criteria: parsed", zap.String("text", text), zap.String("path", "mixed"), zap.String("strategy", name))
	return finish(st), nil
}

func finish(st *parseState) *model.SearchCriteria {
	c := st.criteria
	if c.Restaurants == nil {
		c.Restaurants = []model.RestaurantRef{}
	}
	return &c
}

func (p *Parser) record(ctx context.Context, text, userID string, c *model.SearchCriteria) {
	if p.history == nil {
		return
	}
	q := store.Query{UserID: userID, Text: text, Criteria: c, CreatedAt: p.now().UTC()}
	bg := context.WithoutCancel(ctx)

	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		if err := p.history.SaveQuery(bg, q); err != nil {
			zap.L().Warn("criteria: record search query", zap.String("user_id", userID), zap.Error(err))
		}
	}()
}

// Preprocess trims text and drops one trailing full stop and a trailing
// "please".
func Preprocess(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimSpace(strings.TrimSuffix(text, "."))
	if loc := trailingPlease.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[:loc[0]])
	}
	return text
}

// SplitMixed splits "<A> in|around|near <B>" at the first cue word.
func SplitMixed(text string) (left, right string, ok bool) {
	if !mixedPattern.MatchString(text) {
		return "", "", false
	}
	loc := mixedSeparator.FindStringIndex(text)
	if loc == nil {
		return "", "", false
	}
	return text[:loc[0]], text[loc[1]:], true
}

func normalize(text string) string {
	return catalog.Normalize(text)
}

func (p *Parser) latestLocation(ctx context.Context, userID string, since time.Time) (*model.ResolvedLocation, error) {
	if userID == "" || p.history == nil {
		return nil, nil
	}
	loc, err := p.history.LatestLocation(ctx, userID, since)
	if err != nil {
		return nil, eris.Wrapf(err, "criteria: latest location for %s", userID)
	}
	return loc, nil
}
