package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// SavedLocationOption is a location name users may save.
type SavedLocationOption struct {
	Name     string `json:"name"`
	SaveText string `json:"save_text"`
}

// SavedLocationOptions lists the names users may save a location under.
var SavedLocationOptions = []SavedLocationOption{
	{Name: "work", SaveText: `If you save this location, you can just type "/citymunch lunch near work" in the future.`},
	{Name: "home", SaveText: `If you save this location, you can just type "/citymunch dinner near home" in the future.`},
}

// IsSavedLocationOption reports whether name is one of SavedLocationOptions.
func IsSavedLocationOption(name string) bool {
	for _, opt := range SavedLocationOptions {
		if opt.Name == name {
			return true
		}
	}
	return false
}

// notificationPromptCounts are the search counts at which a repeat user is
// offered daily notifications.
var notificationPromptCounts = map[int]bool{3: true, 20: true}

// ShouldPromptForNotifications reports whether the user has just reached a
// prompt threshold and has searched somewhere before.
func ShouldPromptForNotifications(ctx context.Context, h HistoryStore, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	n, err := h.CountQueries(ctx, userID)
	if err != nil {
		return false, eris.Wrap(err, "store: count queries")
	}
	if !notificationPromptCounts[n] {
		return false, nil
	}

	loc, err := h.LatestLocation(ctx, userID, time.Time{})
	if err != nil {
		return false, eris.Wrap(err, "store: latest location")
	}
	return loc != nil, nil
}
