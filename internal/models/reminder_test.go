package models

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cerebrovinny/memoss-ios-sub001/internal/recurrence"
)

func TestReminder_Advance_OneShotCompletes(t *testing.T) {
	at := time.Date(2024, 5, 16, 9, 0, 0, 0, time.UTC)
	r := &Reminder{Rule: recurrence.None(), ScheduledAt: &at, Status: StatusScheduled}

	got := r.Advance(mo.None[time.Time]())
	assert.Equal(t, AdvanceCompleted, got)
	assert.Equal(t, StatusDone, r.Status)
}

func TestReminder_Advance_Reschedules(t *testing.T) {
	at := time.Date(2024, 5, 16, 9, 0, 0, 0, time.UTC)
	notified := at.Add(time.Minute)
	next := at.AddDate(0, 0, 1)
	r := &Reminder{
		Rule:        recurrence.Daily(),
		ScheduledAt: &at,
		NotifiedAt:  &notified,
		Status:      StatusScheduled,
	}

	got := r.Advance(mo.Some(next))
	assert.Equal(t, AdvanceRescheduled, got)
	assert.Equal(t, StatusScheduled, r.Status)
	require.NotNil(t, r.ScheduledAt)
	assert.True(t, next.Equal(*r.ScheduledAt))
	assert.Nil(t, r.NotifiedAt, "delivery marker must reset for the new occurrence")
}

func TestReminder_Advance_SeriesEndTruncates(t *testing.T) {
	// A weekly reminder whose series ends before the next computed
	// occurrence must terminate instead of rescheduling.
	at := time.Date(2024, 5, 16, 9, 0, 0, 0, time.UTC)
	end := at.AddDate(0, 0, 3)
	next := at.AddDate(0, 0, 7)
	r := &Reminder{
		Rule:        recurrence.Weekly(5),
		ScheduledAt: &at,
		SeriesEndAt: &end,
		Status:      StatusScheduled,
	}

	got := r.Advance(mo.Some(next))
	assert.Equal(t, AdvanceSeriesEnded, got)
	assert.Equal(t, StatusSeriesEnded, r.Status)
	assert.Nil(t, r.ScheduledAt)
}

func TestReminder_Advance_NextOnSeriesEndStillRuns(t *testing.T) {
	// An occurrence exactly on the end date is still inside the series.
	at := time.Date(2024, 5, 16, 9, 0, 0, 0, time.UTC)
	next := at.AddDate(0, 0, 7)
	end := next
	r := &Reminder{
		Rule:        recurrence.Weekly(5),
		ScheduledAt: &at,
		SeriesEndAt: &end,
		Status:      StatusScheduled,
	}

	got := r.Advance(mo.Some(next))
	assert.Equal(t, AdvanceRescheduled, got)
	require.NotNil(t, r.ScheduledAt)
	assert.True(t, next.Equal(*r.ScheduledAt))
}

func TestReminder_Advance_NoTransitionOutOfSeriesEnded(t *testing.T) {
	r := &Reminder{Rule: recurrence.Daily(), Status: StatusSeriesEnded}

	got := r.Advance(mo.Some(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, AdvanceSeriesEnded, got)
	assert.Equal(t, StatusSeriesEnded, r.Status)
	assert.Nil(t, r.ScheduledAt)
}

func TestReminder_IsRecurring(t *testing.T) {
	assert.False(t, (&Reminder{Rule: recurrence.None()}).IsRecurring())
	assert.True(t, (&Reminder{Rule: recurrence.Monthly(15)}).IsRecurring())
}
