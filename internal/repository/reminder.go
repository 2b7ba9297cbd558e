package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Cerebrovinny/memoss-ios-sub001/internal/database"
	"github.com/Cerebrovinny/memoss-ios-sub001/internal/models"
	"github.com/Cerebrovinny/memoss-ios-sub001/internal/recurrence"
)

// ReminderRepository persists reminder records. The recurrence rule crosses
// the storage boundary through the explicit recurrence.EncodeRule/DecodeRule
// pair; the derived rrule column is interop-only and never read back into the
// record.
type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const reminderColumns = `id, title, notes, tags, rule, scheduled_at, series_end_at, status, notified_at, created_at`

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	if reminder.Status == "" {
		reminder.Status = models.StatusScheduled
	}

	ruleJSON, err := recurrence.EncodeRule(reminder.Rule)
	if err != nil {
		return fmt.Errorf("failed to encode recurrence rule: %w", err)
	}

	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO reminders (id, title, notes, tags, rule, rrule, scheduled_at, series_end_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		reminder.ID, reminder.Title, reminder.Notes, reminder.Tags, ruleJSON, reminder.Rule.RRuleString(),
		reminder.ScheduledAt, reminder.SeriesEndAt, reminder.Status,
	).Scan(&reminder.CreatedAt)
}

func (r *ReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = $1`, id,
	)
	return scanReminder(row)
}

func (r *ReminderRepository) List(ctx context.Context) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders ORDER BY scheduled_at ASC NULLS LAST`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	ruleJSON, err := recurrence.EncodeRule(reminder.Rule)
	if err != nil {
		return fmt.Errorf("failed to encode recurrence rule: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx,
		`UPDATE reminders
		 SET title = $1, notes = $2, tags = $3, rule = $4, rrule = $5,
		     scheduled_at = $6, series_end_at = $7, status = $8, notified_at = $9
		 WHERE id = $10`,
		reminder.Title, reminder.Notes, reminder.Tags, ruleJSON, reminder.Rule.RRuleString(),
		reminder.ScheduledAt, reminder.SeriesEndAt, reminder.Status, reminder.NotifiedAt,
		reminder.ID,
	)
	return err
}

// UpdateSchedule persists an advancement outcome: the new scheduled time (nil
// when the series ended or the reminder completed), the status, and a cleared
// delivery marker.
func (r *ReminderRepository) UpdateSchedule(ctx context.Context, id uuid.UUID, scheduledAt *time.Time, status models.Status) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET scheduled_at = $1, status = $2, notified_at = NULL WHERE id = $3`,
		scheduledAt, status, id,
	)
	return err
}

func (r *ReminderRepository) SetNotifiedAt(ctx context.Context, id uuid.UUID, notifiedAt *time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET notified_at = $1 WHERE id = $2`,
		notifiedAt, id,
	)
	return err
}

func (r *ReminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	return err
}

// GetDue returns scheduled reminders whose trigger time has passed and which
// have not yet been delivered for the current occurrence.
func (r *ReminderRepository) GetDue(ctx context.Context, until time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE status = $1 AND notified_at IS NULL
		   AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		 ORDER BY scheduled_at ASC`,
		models.StatusScheduled, until,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

// GetPassedRecurring returns recurring reminders whose current occurrence has
// both passed and been delivered, i.e. the candidates for series advancement.
func (r *ReminderRepository) GetPassedRecurring(ctx context.Context, until time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE status = $1 AND notified_at IS NOT NULL
		   AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		   AND rule->>'type' <> 'none'
		 ORDER BY scheduled_at ASC`,
		models.StatusScheduled, until,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepository) Search(ctx context.Context, keyword string) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE title ILIKE $1 OR notes ILIKE $1 OR tags ILIKE $1
		 ORDER BY scheduled_at ASC NULLS LAST`,
		"%"+keyword+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	var ruleJSON []byte
	if err := row.Scan(&reminder.ID, &reminder.Title, &reminder.Notes, &reminder.Tags, &ruleJSON,
		&reminder.ScheduledAt, &reminder.SeriesEndAt, &reminder.Status, &reminder.NotifiedAt,
		&reminder.CreatedAt); err != nil {
		return nil, err
	}

	rule, err := recurrence.DecodeRule(ruleJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode recurrence rule for reminder %s: %w", reminder.ID, err)
	}
	reminder.Rule = rule
	return reminder, nil
}
