package offers

import (
	"sort"

	"github.com/citymunch/slack-bot/internal/model"
)

// lateNight is when events stop counting as "within two hours" unless the
// clock has also passed it.
var lateNight = model.NewTimeOfDay(22, 0)

const twoHours = 120

// Bucket splits events into those in the next two hours and those on later,
// preserving order. now is the local time of day.
func Bucket(events []model.OfferEvent, now model.TimeOfDay) (nextTwoHours, onLater []model.OfferEvent) {
	for _, ev := range events {
		if InNextTwoHours(ev, now) {
			nextTwoHours = append(nextTwoHours, ev)
		} else {
			onLater = append(onLater, ev)
		}
	}
	return nextTwoHours, onLater
}

// InNextTwoHours reports whether ev belongs in the "next two hours" bucket:
// it has started, it is a late-night event and it is already late night, or
// it starts today within two hours. The window does not wrap past midnight.
func InNextTwoHours(ev model.OfferEvent, now model.TimeOfDay) bool {
	if ev.HasStarted {
		return true
	}
	if !ev.IsToday {
		return false
	}
	if ev.StartTime >= lateNight {
		return now >= lateNight
	}
	return now+twoHours >= ev.StartTime
}

// SortByWalkingDistance orders events nearest first when any carries a
// walking distance. Events without one go last, keeping their order.
func SortByWalkingDistance(events []model.OfferEvent) {
	hasAny := false
	for _, ev := range events {
		if ev.WalkingDistance != nil {
			hasAny = true
			break
		}
	}
	if !hasAny {
		return
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].WalkingDistance, events[j].WalkingDistance
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.DistanceInMeters < b.DistanceInMeters
		}
	})
}
