package recurrence

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies the recurrence variant a Rule carries.
type Kind string

const (
	KindNone    Kind = "none"
	KindHourly  Kind = "hourly"
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

// Rule is an immutable recurrence rule. The variant (and its payload for
// weekly/monthly) is the sole carrier of recurrence semantics; rules have no
// identity and are safe to copy and compare with ==.
//
// The zero value is the "none" rule.
type Rule struct {
	kind    Kind
	weekday int // weekly: 1=Sunday .. 7=Saturday
	day     int // monthly: 1..31, clamped to the target month at evaluation
}

// None returns the non-recurring rule.
func None() Rule { return Rule{kind: KindNone} }

// Hourly returns a rule that repeats every hour.
func Hourly() Rule { return Rule{kind: KindHourly} }

// Daily returns a rule that repeats every calendar day.
func Daily() Rule { return Rule{kind: KindDaily} }

// Weekly returns a rule that repeats on the given day of week,
// 1=Sunday .. 7=Saturday regardless of locale. Out-of-range values are
// clamped into [1,7] rather than rejected.
func Weekly(weekday int) Rule {
	return Rule{kind: KindWeekly, weekday: clamp(weekday, 1, 7)}
}

// Monthly returns a rule that repeats on the given day of month, 1..31.
// Out-of-range values are clamped into [1,31]; at evaluation time the day is
// further clamped to the length of the target month.
func Monthly(day int) Rule {
	return Rule{kind: KindMonthly, day: clamp(day, 1, 31)}
}

// Kind reports which variant this rule is. The zero Rule is KindNone.
func (r Rule) Kind() Kind {
	if r.kind == "" {
		return KindNone
	}
	return r.kind
}

// Weekday returns the day of week (1=Sunday .. 7=Saturday) for weekly rules,
// 0 otherwise.
func (r Rule) Weekday() int { return r.weekday }

// Day returns the requested day of month for monthly rules, 0 otherwise.
func (r Rule) Day() int { return r.day }

// IsRecurring reports whether the rule produces more than one occurrence.
func (r Rule) IsRecurring() bool { return r.Kind() != KindNone }

func (r Rule) String() string {
	switch r.Kind() {
	case KindHourly:
		return "hourly"
	case KindDaily:
		return "daily"
	case KindWeekly:
		return fmt.Sprintf("weekly(%s)", time.Weekday(r.weekday-1))
	case KindMonthly:
		return fmt.Sprintf("monthly(%d)", r.day)
	default:
		return "none"
	}
}

// ruleJSON is the compact tagged wire form, e.g. {"type":"weekly","weekday":3}.
type ruleJSON struct {
	Type    Kind `json:"type"`
	Weekday int  `json:"weekday,omitempty"`
	Day     int  `json:"day,omitempty"`
}

func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(ruleJSON{Type: r.Kind(), Weekday: r.weekday, Day: r.day})
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw ruleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse recurrence rule: %w", err)
	}
	switch raw.Type {
	case KindNone, "":
		*r = None()
	case KindHourly:
		*r = Hourly()
	case KindDaily:
		*r = Daily()
	case KindWeekly:
		*r = Weekly(raw.Weekday)
	case KindMonthly:
		*r = Monthly(raw.Day)
	default:
		return fmt.Errorf("unknown recurrence rule type %q", raw.Type)
	}
	return nil
}

// EncodeRule serializes a rule to its tagged JSON form. Storage code calls
// this explicitly when writing a record; the inverse is DecodeRule.
func EncodeRule(r Rule) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRule parses the tagged JSON form produced by EncodeRule.
// Payload values outside their valid range are clamped, matching the
// constructors; only malformed JSON or an unknown type tag is an error.
func DecodeRule(data []byte) (Rule, error) {
	var r Rule
	if err := json.Unmarshal(data, &r); err != nil {
		return None(), err
	}
	return r, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
