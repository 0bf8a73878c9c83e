package catalog

import (
	"regexp"
	"strings"

	"github.com/citymunch/slack-bot/internal/model"
)

// branchSuffix matches names carrying a "(...)" or "@ ..." branch suffix.
var branchSuffix = regexp.MustCompile(`.+[(@]`)

// Snapshot is an immutable view of the partner catalog. A new Snapshot is
// built on every refresh; existing ones are never modified.
type Snapshot struct {
	CuisineTypes []string              `yaml:"cuisine_types"`
	Restaurants  []model.RestaurantRef `yaml:"restaurants"`
}

// MatchCuisineType returns the canonical cuisine name for text, or false.
// A trailing "s" is tolerated so "burger" finds "Burgers".
func (s *Snapshot) MatchCuisineType(text string) (string, bool) {
	needle := normalizeCuisine(text)
	if needle == "" {
		return "", false
	}
	if name, ok := s.findCuisine(needle); ok {
		return name, true
	}
	return s.findCuisine(needle + "s")
}

func (s *Snapshot) findCuisine(needle string) (string, bool) {
	for _, name := range s.CuisineTypes {
		if Normalize(name) == needle {
			return name, true
		}
	}
	return "", false
}

// MatchRestaurants returns every restaurant whose name matches text exactly,
// with "&" spelled "and", or with its branch suffix removed.
func (s *Snapshot) MatchRestaurants(text string) []model.RestaurantRef {
	needle := Normalize(text)
	if needle == "" {
		return nil
	}

	var matches []model.RestaurantRef
	for _, r := range s.Restaurants {
		if restaurantNameMatches(Normalize(r.Name), needle) {
			matches = append(matches, r)
		}
	}
	return matches
}

func restaurantNameMatches(name, needle string) bool {
	if name == needle {
		return true
	}
	if strings.Contains(name, "&") && strings.TrimSpace(strings.ReplaceAll(name, "&", "and")) == needle {
		return true
	}
	if branchSuffix.MatchString(name) {
		base := name[:strings.IndexAny(name, "(@")]
		if strings.TrimSpace(base) == needle {
			return true
		}
	}
	return false
}
