// Package scheduler runs the delivery loop: it watches for reminders whose
// trigger time has passed, hands them to a Notifier, and advances recurring
// series past completed occurrences.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/Cerebrovinny/memoss-ios-sub001/internal/models"
	"github.com/Cerebrovinny/memoss-ios-sub001/internal/recurrence"
)

// Notifier delivers a due reminder. The actual transport (APNs, Telegram,
// email, ...) is the host application's concern; the shipped LogNotifier just
// writes to the log.
type Notifier interface {
	Notify(ctx context.Context, reminder *models.Reminder) error
}

// ReminderStore is the slice of the repository the scheduler needs.
type ReminderStore interface {
	GetDue(ctx context.Context, until time.Time) ([]*models.Reminder, error)
	GetPassedRecurring(ctx context.Context, until time.Time) ([]*models.Reminder, error)
	SetNotifiedAt(ctx context.Context, id uuid.UUID, notifiedAt *time.Time) error
	UpdateSchedule(ctx context.Context, id uuid.UUID, scheduledAt *time.Time, status models.Status) error
}

type Scheduler struct {
	store         ReminderStore
	notifier      Notifier
	engine        *recurrence.Engine
	checkInterval time.Duration
	notifyCh      chan struct{}
}

func New(store ReminderStore, notifier Notifier, engine *recurrence.Engine, checkInterval time.Duration) *Scheduler {
	if checkInterval <= 0 {
		checkInterval = time.Minute
	}
	return &Scheduler{
		store:         store,
		notifier:      notifier,
		engine:        engine,
		checkInterval: checkInterval,
		notifyCh:      make(chan struct{}, 1),
	}
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		case <-s.notifyCh:
			log.Println("Scheduler triggered by notification")
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	now := time.Now()
	// Advance before delivering: a reminder delivered on this tick keeps
	// its occurrence until the next tick, leaving a window to complete it.
	s.advancePassed(ctx, now)
	s.deliverDue(ctx, now)
}

func (s *Scheduler) deliverDue(ctx context.Context, now time.Time) {
	due, err := s.store.GetDue(ctx, now)
	if err != nil {
		log.Printf("Failed to get due reminders: %v", err)
		return
	}

	for _, reminder := range due {
		if err := s.notifier.Notify(ctx, reminder); err != nil {
			log.Printf("Failed to deliver reminder %s: %v", reminder.ID, err)
			continue
		}

		if err := s.store.SetNotifiedAt(ctx, reminder.ID, &now); err != nil {
			log.Printf("Failed to mark reminder %s notified: %v", reminder.ID, err)
			continue
		}
		log.Printf("Delivered reminder %s (%q)", reminder.ID, reminder.Title)
	}
}

// advancePassed moves recurring reminders whose delivered occurrence has
// passed on to their next occurrence, or ends their series.
func (s *Scheduler) advancePassed(ctx context.Context, now time.Time) {
	passed, err := s.store.GetPassedRecurring(ctx, now)
	if err != nil {
		log.Printf("Failed to get passed recurring reminders: %v", err)
		return
	}

	for _, reminder := range passed {
		outcome := AdvanceReminder(s.engine, reminder)
		if err := s.store.UpdateSchedule(ctx, reminder.ID, reminder.ScheduledAt, reminder.Status); err != nil {
			log.Printf("Failed to persist advancement for reminder %s: %v", reminder.ID, err)
			continue
		}

		switch outcome {
		case models.AdvanceRescheduled:
			log.Printf("Scheduled next occurrence of reminder %s at %s", reminder.ID, reminder.ScheduledAt.Format("2006-01-02 15:04"))
		case models.AdvanceSeriesEnded:
			log.Printf("Series ended for reminder %s", reminder.ID)
		case models.AdvanceCompleted:
			log.Printf("Completed reminder %s", reminder.ID)
		}
	}
}

// AdvanceReminder applies the advancement contract to a reminder after its
// current occurrence completed: consult the engine for the occurrence
// following the current scheduled time and let the record take the matching
// transition. The caller persists the mutated record.
func AdvanceReminder(engine *recurrence.Engine, reminder *models.Reminder) models.Advancement {
	next := mo.None[time.Time]()
	if reminder.ScheduledAt != nil {
		next = engine.Next(reminder.Rule, *reminder.ScheduledAt)
	}
	return reminder.Advance(next)
}

// LogNotifier writes deliveries to the process log. It stands in for the host
// platform's notification transport.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, reminder *models.Reminder) error {
	line := "⏰ Reminder: " + reminder.Title
	if reminder.Notes != "" {
		line += ": " + reminder.Notes
	}
	if reminder.IsRecurring() {
		line += " (repeats " + reminder.Rule.String() + ")"
	}
	log.Println(line)
	return nil
}
