package offers

import (
	"fmt"
	"strings"
	"time"

	"github.com/citymunch/slack-bot/internal/model"
)

var monthNames = [...]string{"Jan", "Feb", "March", "April", "May", "June", "July", "Aug", "Sept", "Oct", "Nov", "Dec"}

// FormatTime renders a time of day in 12-hour form without a leading zero,
// dropping ":00" minutes: 17:00 is "5pm", 09:05 is "9:05am".
func FormatTime(t model.TimeOfDay) string {
	h, m := t.Hour(), t.Minute()

	var s string
	switch {
	case h == 0 || h == 24:
		s = fmt.Sprintf("12:%02dam", m)
	case h == 12:
		s = fmt.Sprintf("12:%02dpm", m)
	case h > 12:
		s = fmt.Sprintf("%d:%02dpm", h-12, m)
	default:
		s = fmt.Sprintf("%d:%02dam", h, m)
	}
	return strings.Replace(s, ":00", "", 1)
}

// FormatDate renders a date as "15 Oct 2026".
func FormatDate(d time.Time) string {
	return fmt.Sprintf("%d %s %d", d.Day(), monthNames[d.Month()-1], d.Year())
}

// headerSuffix is "near <name>" for streets and postcodes, "in <name>" for
// wider areas, or "" without a location.
func headerSuffix(loc *model.ResolvedLocation) string {
	if loc == nil {
		return ""
	}
	if loc.IsStreetOrPostcode() {
		return "near " + loc.Name
	}
	return "in " + loc.Name
}

func header(title, suffix string) string {
	if suffix != "" {
		title += " " + suffix
	}
	return "*" + title + "*:\n"
}

func (e *Engine) link(restaurantID, label string) string {
	return fmt.Sprintf("<%s/slack/%s|%s>", strings.TrimRight(e.cfg.LinkBaseURL, "/"), restaurantID, label)
}

// render produces one entry per event, each bucket's header prefixed to its
// first entry.
func (e *Engine) render(loc *model.ResolvedLocation, nextTwoHours, onLater []model.OfferEvent) []string {
	suffix := headerSuffix(loc)
	lines := make([]string, 0, len(nextTwoHours)+len(onLater))
	for i, ev := range nextTwoHours {
		prefix := ""
		if i == 0 {
			prefix = header("Next two hours", suffix)
		}
		lines = append(lines, prefix+e.eventLine(ev))
	}
	for i, ev := range onLater {
		prefix := ""
		if i == 0 {
			prefix = header("On later", suffix)
		}
		lines = append(lines, prefix+e.eventLine(ev))
	}
	return lines
}

func (e *Engine) eventLine(ev model.OfferEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d%% off", ev.Discount)
	if ev.ItemName != "" {
		fmt.Fprintf(&b, " *%s*", ev.ItemName)
	}
	fmt.Fprintf(&b, " at %s (%s) - %s-%s", ev.RestaurantName, ev.StreetName, FormatTime(ev.StartTime), FormatTime(ev.EndTime))

	if !ev.IsToday && !ev.Date.IsZero() {
		b.WriteString(" on " + FormatDate(ev.Date))
	}
	if ev.WalkingDistance != nil {
		fmt.Fprintf(&b, " (%s away)", ev.WalkingDistance.DurationText)
	}
	switch {
	case ev.CoversRemaining == 0:
		b.WriteString(" (all gone!)")
	case ev.CoversRemaining <= 5:
		fmt.Fprintf(&b, " (%d left)", ev.CoversRemaining)
	}
	if len(ev.GroupDiscountBonuses) > 0 {
		bonus := ev.GroupDiscountBonuses[0]
		fmt.Fprintf(&b, "\nGroups of %d+ get %d%%", bonus.MinCovers, bonus.Bonus+ev.Discount)
	}
	b.WriteString("\n" + e.link(ev.RestaurantID, "Reserve voucher"))

	return strings.TrimSpace(b.String())
}

// noOffersMessage tells the user each named restaurant has nothing today.
func (e *Engine) noOffersMessage(restaurants []model.RestaurantRef) string {
	var b strings.Builder
	for _, r := range restaurants {
		fmt.Fprintf(&b, "%s doesn't have any offers coming up today.\n", r.Name)
		b.WriteString(e.link(r.ID, "View on CityMunch") + "\n")
	}
	return b.String()
}

// Paginate caps lines at maxLines and splits them into the first page and
// the remainder, each joined by newlines.
func Paginate(lines []string, maxLines, firstPage int) (message, more string) {
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	if len(lines) <= firstPage {
		return strings.Join(lines, "\n"), ""
	}
	return strings.Join(lines[:firstPage], "\n"), strings.Join(lines[firstPage:], "\n")
}
