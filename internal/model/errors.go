package model

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrorKind classifies a failed parse or search.
type ErrorKind int

const (
	// KindUnknown is returned by KindOf for errors that are not search errors.
	KindUnknown ErrorKind = iota
	// KindParseFailure means the text matched nothing usable.
	KindParseFailure
	// KindNeedsLocation means the caller must ask the user where they are.
	KindNeedsLocation
	// KindLocationNotFound means the geocoder had no match.
	KindLocationNotFound
	// KindGeocodeFailed means the location half of a mixed query could not be resolved.
	KindGeocodeFailed
	// KindNoRestaurantsFound means the restaurant search came back empty.
	KindNoRestaurantsFound
	// KindNoOffersFound means no active events remain for today.
	KindNoOffersFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindParseFailure:
		return "parse_failure"
	case KindNeedsLocation:
		return "needs_location"
	case KindLocationNotFound:
		return "location_not_found"
	case KindGeocodeFailed:
		return "geocode_failed"
	case KindNoRestaurantsFound:
		return "no_restaurants_found"
	case KindNoOffersFound:
		return "no_offers_found"
	default:
		return "unknown"
	}
}

// SearchError is a terminal parse or search failure tagged with its kind.
type SearchError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

// NewSearchError creates a SearchError without an underlying cause.
func NewSearchError(kind ErrorKind, format string, args ...any) *SearchError {
	return &SearchError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapSearchError tags err with kind.
func WrapSearchError(kind ErrorKind, err error, format string, args ...any) *SearchError {
	return &SearchError{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first SearchError in err's chain.
func KindOf(err error) ErrorKind {
	var se *SearchError
	if errors.As(err, &se) || errors.As(eris.Cause(err), &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsLocationKind reports whether err should be answered with a prompt about
// the user's location rather than a generic "nothing found".
func IsLocationKind(err error) bool {
	switch KindOf(err) {
	case KindNeedsLocation, KindLocationNotFound, KindGeocodeFailed:
		return true
	default:
		return false
	}
}
