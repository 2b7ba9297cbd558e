package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/Cerebrovinny/memoss-ios-sub001/internal/recurrence"
)

// Status is the lifecycle state of a reminder record.
type Status string

const (
	StatusScheduled Status = "scheduled"
	// StatusDone marks a completed one-shot reminder.
	StatusDone Status = "done"
	// StatusSeriesEnded is terminal: the next computed occurrence fell past
	// SeriesEndAt. There is no transition out of it.
	StatusSeriesEnded Status = "series_ended"
)

// Reminder is the host record the recurrence engine is consulted for. It owns
// the anchor date (ScheduledAt), the rule, and the optional series end date;
// the engine itself stores nothing.
type Reminder struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Notes       string          `json:"notes"`
	Tags        string          `json:"tags"`
	Rule        recurrence.Rule `json:"rule"`
	ScheduledAt *time.Time      `json:"scheduled_at"` // next trigger; nil once the series has ended
	SeriesEndAt *time.Time      `json:"series_end_at"`
	Status      Status          `json:"status"`
	NotifiedAt  *time.Time      `json:"notified_at"` // last delivery for the current occurrence
	CreatedAt   time.Time       `json:"created_at"`
}

// IsRecurring returns true if this reminder has a recurrence rule.
func (r *Reminder) IsRecurring() bool {
	return r.Rule.IsRecurring()
}

// Advancement is the outcome of advancing a reminder past a completed
// occurrence.
type Advancement int

const (
	// AdvanceCompleted: no further occurrences, the reminder is done.
	AdvanceCompleted Advancement = iota
	// AdvanceRescheduled: the next occurrence was adopted as the new
	// scheduled time.
	AdvanceRescheduled
	// AdvanceSeriesEnded: the next occurrence fell past the series end
	// date; the series is over.
	AdvanceSeriesEnded
)

// Advance moves the record past a completed occurrence, given the engine's
// next-occurrence result for the current scheduled time.
//
//   - absent next: a one-shot reminder, mark it done.
//   - next after SeriesEndAt (when set): terminal series end, do not
//     reschedule.
//   - otherwise: adopt next as the scheduled time and clear the delivery
//     marker so the new occurrence fires.
func (r *Reminder) Advance(next mo.Option[time.Time]) Advancement {
	if r.Status == StatusSeriesEnded {
		return AdvanceSeriesEnded
	}

	n, ok := next.Get()
	if !ok {
		r.Status = StatusDone
		return AdvanceCompleted
	}

	if r.SeriesEndAt != nil && n.After(*r.SeriesEndAt) {
		r.Status = StatusSeriesEnded
		r.ScheduledAt = nil
		return AdvanceSeriesEnded
	}

	r.ScheduledAt = &n
	r.NotifiedAt = nil
	r.Status = StatusScheduled
	return AdvanceRescheduled
}
