// Package search ties parsing and offer ranking together for the delivery
// layer.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/internal/showmore"
	"github.com/citymunch/slack-bot/internal/store"
)

// HelpText is shown for an empty search.
const HelpText = "Search for today's offers by cuisine, restaurant, place or meal time. " +
	"For example: \"chinese in old street\", \"lunch near EC2A 4BX\", \"Thali Cafe\" or \"dinner near me\"."

const (
	locationMessage = "Sorry, I don't understand the location. Try a street name or postcode, like \"lunch near EC2A 4BX\"."
	nothingMessage  = "Sorry, we couldn't find anything on today for that search. Try another search."
)

// UserMessage maps a failed search to what the user should see.
func UserMessage(err error) string {
	if model.IsLocationKind(err) {
		return locationMessage
	}
	return nothingMessage
}

// Parser turns text into criteria.
type Parser interface {
	Parse(ctx context.Context, text, userID string) (*model.SearchCriteria, error)
}

// Ranker finds and renders offers for criteria.
type Ranker interface {
	Search(ctx context.Context, c *model.SearchCriteria) (*model.SearchResult, error)
}

// Service runs end-to-end searches.
type Service struct {
	parser   Parser
	ranker   Ranker
	showMore showmore.Store
	history  store.HistoryStore
	prefs    store.PreferenceStore
}

// NewService creates a Service. showMore, history and prefs may be nil.
func NewService(parser Parser, ranker Ranker, showMore showmore.Store, history store.HistoryStore, prefs store.PreferenceStore) *Service {
	return &Service{parser: parser, ranker: ranker, showMore: showMore, history: history, prefs: prefs}
}

// Search parses text and returns today's offers. Empty text yields HelpText.
// The second page, if any, is kept for ShowMore.
func (s *Service) Search(ctx context.Context, text, userID string) (*model.SearchResult, error) {
	if strings.TrimSpace(text) == "" {
		return &model.SearchResult{Message: HelpText}, nil
	}

	c, err := s.parser.Parse(ctx, text, userID)
	if err != nil {
		return nil, err
	}

	res, err := s.ranker.Search(ctx, c)
	if err != nil {
		return nil, err
	}

	if res.AddShowMoreButton && s.showMore != nil {
		if err := s.showMore.Save(ctx, res.SearchID, res.MessageAfterShowingMore); err != nil {
			zap.L().Warn("search: save second page", zap.String("search_id", res.SearchID), zap.Error(err))
		}
	}
	return res, nil
}

// ShowMore returns the second page of an earlier search.
func (s *Service) ShowMore(ctx context.Context, searchID string) (string, bool, error) {
	if s.showMore == nil {
		return "", false, nil
	}
	return s.showMore.Get(ctx, searchID)
}

// SaveLocation stores the user's most recent search location under name.
func (s *Service) SaveLocation(ctx context.Context, userID, name string) (*model.ResolvedLocation, error) {
	if !store.IsSavedLocationOption(name) {
		return nil, eris.Errorf("search: %q is not a saved location name", name)
	}
	if s.history == nil || s.prefs == nil {
		return nil, eris.New("search: no store configured")
	}

	loc, err := s.history.LatestLocation(ctx, userID, time.Time{})
	if err != nil {
		return nil, eris.Wrap(err, "search: latest location")
	}
	if loc == nil {
		return nil, model.NewSearchError(model.KindNeedsLocation, "search: user %s has not searched a location yet", userID)
	}
	if err := s.prefs.SaveLocation(ctx, userID, name, loc); err != nil {
		return nil, eris.Wrap(err, "search: save location")
	}
	return loc, nil
}

// ShouldPromptForNotifications reports whether to offer daily notifications
// to the user after this search.
func (s *Service) ShouldPromptForNotifications(ctx context.Context, userID string) bool {
	if s.history == nil {
		return false
	}
	ok, err := store.ShouldPromptForNotifications(ctx, s.history, userID)
	if err != nil {
		zap.L().Warn("search: notification prompt check", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return ok
}
