// Package recurrence computes reminder occurrences from a recurrence rule and
// an anchor time. All calculations are pure calendar arithmetic in an injected
// timezone; the engine holds no state and is safe for concurrent use.
package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// Engine evaluates rules against anchor times. The location is the calendar
// context every occurrence is computed in; it is injected rather than read
// from the system so results are reproducible.
type Engine struct {
	loc *time.Location
}

// NewEngine creates an engine operating in the given timezone.
// A nil location falls back to time.Local.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{loc: loc}
}

// Location returns the calendar context the engine evaluates in.
func (e *Engine) Location() *time.Location { return e.loc }

// Next computes the first occurrence strictly after anchor. It returns None
// exactly when the rule is non-recurring; every other rule always yields a
// next occurrence. Degenerate payloads are clamped, never rejected: a
// slightly adjusted reminder beats a missed one.
func (e *Engine) Next(rule Rule, anchor time.Time) mo.Option[time.Time] {
	a := anchor.In(e.loc)

	switch rule.Kind() {
	case KindHourly:
		// Component construction instead of Add(time.Hour) keeps the
		// result on a wall-clock hour boundary across DST shifts. When
		// the next hour falls into a spring-forward gap, time.Date can
		// resolve it backwards onto the anchor itself; step a real hour
		// in that case so the result is always after the anchor.
		next := time.Date(a.Year(), a.Month(), a.Day(), a.Hour()+1, a.Minute(), a.Second(), a.Nanosecond(), e.loc)
		if !next.After(a) {
			next = a.Add(time.Hour)
		}
		return mo.Some(next)

	case KindDaily:
		// One calendar day, not 86400s: hour/minute survive DST
		// transitions. A time inside a spring-forward gap resolves to a
		// nearby valid instant (possibly an hour before the requested
		// wall clock); the advanced date keeps the result monotonic.
		return mo.Some(time.Date(a.Year(), a.Month(), a.Day()+1, a.Hour(), a.Minute(), a.Second(), a.Nanosecond(), e.loc))

	case KindWeekly:
		target := time.Weekday(clamp(rule.Weekday(), 1, 7) - 1)
		d := a.AddDate(0, 0, 1)
		for i := 0; i < 7 && d.Weekday() != target; i++ {
			d = d.AddDate(0, 0, 1)
		}
		// Reapply the anchor's time of day to the found date. If that
		// local time does not exist (DST gap), time.Date yields a
		// nearby valid instant rather than failing.
		return mo.Some(time.Date(d.Year(), d.Month(), d.Day(), a.Hour(), a.Minute(), a.Second(), a.Nanosecond(), e.loc))

	case KindMonthly:
		want := clamp(rule.Day(), 1, 31)

		// Try the anchor's own month first, clamping the requested day
		// to that month's length.
		day := minInt(want, daysInMonth(a.Year(), a.Month()))
		candidate := time.Date(a.Year(), a.Month(), day, a.Hour(), a.Minute(), a.Second(), a.Nanosecond(), e.loc)
		if candidate.After(a) {
			return mo.Some(candidate)
		}

		// Advance one month, rolling the year, and clamp against the
		// target month's length. Moving a full month forward guarantees
		// the result is after the anchor.
		year, month := a.Year(), a.Month()+1
		if month > time.December {
			year, month = year+1, time.January
		}
		day = minInt(want, daysInMonth(year, month))
		return mo.Some(time.Date(year, month, day, a.Hour(), a.Minute(), a.Second(), a.Nanosecond(), e.loc))

	default:
		return mo.None[time.Time]()
	}
}

// Occurrences unfolds up to count occurrences starting at start. A future
// start (relative to the explicit now) counts as the first occurrence; a
// one-shot rule therefore yields [start] if start is still ahead and nothing
// otherwise. Truncation against a series end date is deliberately the
// caller's job; the engine only generates.
func (e *Engine) Occurrences(rule Rule, start time.Time, count int, now time.Time) []time.Time {
	if count <= 0 {
		return nil
	}

	var out []time.Time
	if start.After(now) {
		out = append(out, start.In(e.loc))
	}
	if !rule.IsRecurring() {
		return out
	}

	last := start
	for len(out) < count {
		next, ok := e.Next(rule, last).Get()
		if !ok {
			break
		}
		out = append(out, next)
		last = next
	}
	return out
}

// daysInMonth returns the number of days in the given month; day 0 of the
// following month normalizes to its last day.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
