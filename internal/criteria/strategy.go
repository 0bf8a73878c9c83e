package criteria

import (
	"context"

	"github.com/citymunch/slack-bot/internal/model"
)

// Outcome is the result of applying one parsing strategy.
type Outcome int

const (
	// NoMatch means the strategy did not recognise anything.
	NoMatch Outcome = iota
	// Matched means a facet was recorded and parsing continues.
	Matched
	// Terminal means parsing is complete.
	Terminal
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Terminal:
		return "terminal"
	default:
		return "no_match"
	}
}

// parseState is the criteria accumulated so far for one parse.
type parseState struct {
	userID   string
	criteria model.SearchCriteria
}

// strategy is one named step of a parse path.
type strategy struct {
	name  string
	apply func(ctx context.Context, st *parseState) (Outcome, error)
}

// runStrategies applies strategies in order until one is terminal or fails.
// It reports whether a terminal strategy was reached.
func runStrategies(ctx context.Context, st *parseState, strategies []strategy) (string, bool, error) {
	for _, s := range strategies {
		out, err := s.apply(ctx, st)
		if err != nil {
			return s.name, false, err
		}
		if out == Terminal {
			return s.name, true, nil
		}
	}
	return "", false, nil
}
