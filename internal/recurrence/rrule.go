package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// rruleWeekdays maps the 1=Sunday..7=Saturday convention onto rrule-go's
// weekday values.
var rruleWeekdays = [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

var rruleDayNames = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// RRuleString renders the rule in RFC 5545 RRULE form for interop with
// calendar clients, e.g. "FREQ=WEEKLY;BYDAY=TU". The non-recurring rule has
// no RRULE representation and renders as the empty string.
func (r Rule) RRuleString() string {
	switch r.Kind() {
	case KindHourly:
		return "FREQ=HOURLY"
	case KindDaily:
		return "FREQ=DAILY"
	case KindWeekly:
		return fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", rruleDayNames[clamp(r.Weekday(), 1, 7)-1])
	case KindMonthly:
		return fmt.Sprintf("FREQ=MONTHLY;BYMONTHDAY=%d", clamp(r.Day(), 1, 31))
	default:
		return ""
	}
}

// RRule builds an rrule-go rule anchored at dtstart for consumers that expand
// occurrences through an iCalendar library. Returns an error for the
// non-recurring rule, which has no RFC 5545 equivalent.
func (r Rule) RRule(dtstart time.Time) (*rrule.RRule, error) {
	opt := rrule.ROption{Dtstart: dtstart}

	switch r.Kind() {
	case KindHourly:
		opt.Freq = rrule.HOURLY
	case KindDaily:
		opt.Freq = rrule.DAILY
	case KindWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[clamp(r.Weekday(), 1, 7)-1]}
	case KindMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{clamp(r.Day(), 1, 31)}
	default:
		return nil, fmt.Errorf("rule %q has no RRULE form", r)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build RRULE for %q: %w", r, err)
	}
	return rule, nil
}
