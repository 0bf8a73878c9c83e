package citymunch

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/citymunch/slack-bot/internal/model"
)

// dateLayout is the ISO local date format the partner API expects.
const dateLayout = "2006-01-02"

// RestaurantQuery filters an authorised-restaurant search. Filters combine
// additively; a zero query matches every authorised restaurant.
type RestaurantQuery struct {
	CuisineTypes []string
	IDs          []string

	// Box search.
	Northeast *model.Point
	Southwest *model.Point

	// Point search.
	Near    *model.Point
	RangeKM float64

	// UserPoint asks the API to compute walking distances from here.
	UserPoint *model.Point
}

// Values encodes the query string.
func (q RestaurantQuery) Values() url.Values {
	v := url.Values{}
	if len(q.CuisineTypes) > 0 {
		v.Set("cuisineTypes", strings.Join(q.CuisineTypes, ","))
	}
	if len(q.IDs) > 0 {
		v.Set("ids", strings.Join(q.IDs, ","))
	}
	if q.Northeast != nil && q.Southwest != nil {
		v.Set("northeastPoint", FormatPoint(*q.Northeast))
		v.Set("southwestPoint", FormatPoint(*q.Southwest))
	}
	if q.Near != nil {
		v.Set("nearPoint", FormatPoint(*q.Near))
		v.Set("rangeInKilometers", strconv.FormatFloat(q.RangeKM, 'f', -1, 64))
	}
	if q.UserPoint != nil {
		v.Set("userPoint", FormatPoint(*q.UserPoint))
	}
	return v
}

// EventQuery filters an active-event search.
type EventQuery struct {
	RestaurantIDs []string
	Date          time.Time
	StartTime     *model.TimeOfDay
	EndTime       *model.TimeOfDay
	IncludeEnded  bool
}

// Values encodes the query string. Date is used as both start and end date.
func (q EventQuery) Values() url.Values {
	day := q.Date.Format(dateLayout)
	v := url.Values{}
	v.Set("ids", strings.Join(q.RestaurantIDs, ","))
	v.Set("includeEnded", strconv.FormatBool(q.IncludeEnded))
	v.Set("startDate", day)
	v.Set("endDate", day)
	if q.StartTime != nil {
		v.Set("startTime", q.StartTime.String())
	}
	if q.EndTime != nil {
		v.Set("endTime", q.EndTime.String())
	}
	return v
}

// FormatPoint renders p as "lat,lon".
func FormatPoint(p model.Point) string {
	return fmt.Sprintf("%s,%s",
		strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		strconv.FormatFloat(p.Longitude, 'f', -1, 64),
	)
}

// ParseDate parses an API date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
