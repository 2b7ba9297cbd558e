package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Cerebrovinny/memoss-ios-sub001/internal/config"
	"github.com/Cerebrovinny/memoss-ios-sub001/internal/database"
	"github.com/Cerebrovinny/memoss-ios-sub001/internal/models"
	"github.com/Cerebrovinny/memoss-ios-sub001/internal/recurrence"
	"github.com/Cerebrovinny/memoss-ios-sub001/internal/repository"
	"github.com/Cerebrovinny/memoss-ios-sub001/internal/scheduler"
)

const timeLayout = "2006-01-02 15:04"

// app bundles the wiring every command needs.
type app struct {
	cfg       *config.Config
	db        *database.DB
	reminders *repository.ReminderRepository
	engine    *recurrence.Engine
	loc       *time.Location
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("DATABASE_URI is required")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &app{
		cfg:       cfg,
		db:        db,
		reminders: repository.NewReminderRepository(db),
		engine:    recurrence.NewEngine(loc),
		loc:       loc,
	}, nil
}

func (a *app) close() {
	a.db.Close()
}

func main() {
	root := &cobra.Command{
		Use:           "memossd",
		Short:         "Personal reminders service with recurring schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(), addCmd(), listCmd(), nextCmd(), completeCmd(), removeCmd())

	if err := root.Execute(); err != nil {
		log.Fatalf("memossd: %v", err)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder delivery daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			sched := scheduler.New(a.reminders, scheduler.LogNotifier{}, a.engine, a.cfg.CheckInterval)

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Println("Shutting down...")
				cancel()
			}()

			sched.Start(ctx)
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	var (
		at     string
		notes  string
		tags   string
		repeat string
		until  string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			scheduledAt, err := time.ParseInLocation(timeLayout, at, a.loc)
			if err != nil {
				return fmt.Errorf("invalid --at value %q (want %q): %w", at, timeLayout, err)
			}

			rule, err := parseRepeat(repeat)
			if err != nil {
				return err
			}

			reminder := &models.Reminder{
				Title:       args[0],
				Notes:       notes,
				Tags:        tags,
				Rule:        rule,
				ScheduledAt: &scheduledAt,
				Status:      models.StatusScheduled,
			}

			if until != "" {
				endAt, err := time.ParseInLocation(timeLayout, until, a.loc)
				if err != nil {
					return fmt.Errorf("invalid --until value %q: %w", until, err)
				}
				reminder.SeriesEndAt = &endAt
			}

			if err := a.reminders.Create(cmd.Context(), reminder); err != nil {
				return fmt.Errorf("failed to create reminder: %w", err)
			}

			fmt.Printf("Created %s: %q at %s (%s)\n",
				reminder.ID, reminder.Title, scheduledAt.Format(timeLayout), rule)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "scheduled time, e.g. \"2026-09-01 09:30\"")
	cmd.Flags().StringVar(&notes, "notes", "", "additional notes")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&repeat, "repeat", "none", "none, hourly, daily, weekly:<sun..sat>, monthly:<1-31>")
	cmd.Flags().StringVar(&until, "until", "", "series end time (recurring reminders only)")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

func listCmd() *cobra.Command {
	var keyword string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			var reminders []*models.Reminder
			if keyword != "" {
				reminders, err = a.reminders.Search(cmd.Context(), keyword)
			} else {
				reminders, err = a.reminders.List(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("failed to list reminders: %w", err)
			}

			if len(reminders) == 0 {
				fmt.Println("No reminders.")
				return nil
			}
			for _, r := range reminders {
				fmt.Println(formatReminder(r, a.loc))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&keyword, "search", "", "filter by keyword in title, notes or tags")
	return cmd
}

func nextCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "next <id>",
		Short: "Preview the coming occurrences of a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			reminder, err := loadReminder(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			if reminder.ScheduledAt == nil {
				fmt.Println("No occurrences: reminder has no scheduled time.")
				return nil
			}

			occurrences := a.engine.Occurrences(reminder.Rule, *reminder.ScheduledAt, count, time.Now())
			if len(occurrences) == 0 {
				fmt.Println("No upcoming occurrences.")
				return nil
			}
			for _, occ := range occurrences {
				marker := ""
				if reminder.SeriesEndAt != nil && occ.After(*reminder.SeriesEndAt) {
					marker = "  (past series end)"
				}
				fmt.Printf("%s%s\n", occ.In(a.loc).Format(timeLayout), marker)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 5, "maximum number of occurrences to show")
	return cmd
}

func completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete the current occurrence and advance the series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			reminder, err := loadReminder(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			if reminder.Status != models.StatusScheduled {
				return fmt.Errorf("reminder %s is %s, nothing to complete", reminder.ID, reminder.Status)
			}

			outcome := scheduler.AdvanceReminder(a.engine, reminder)
			if err := a.reminders.UpdateSchedule(cmd.Context(), reminder.ID, reminder.ScheduledAt, reminder.Status); err != nil {
				return fmt.Errorf("failed to persist advancement: %w", err)
			}

			switch outcome {
			case models.AdvanceCompleted:
				fmt.Println("Done. One-shot reminder completed.")
			case models.AdvanceSeriesEnded:
				fmt.Println("Done. Series has ended.")
			case models.AdvanceRescheduled:
				fmt.Printf("Done. Next occurrence: %s\n", reminder.ScheduledAt.In(a.loc).Format(timeLayout))
			}
			return nil
		},
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid reminder id %q: %w", args[0], err)
			}
			if err := a.reminders.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete reminder: %w", err)
			}
			fmt.Println("Removed.")
			return nil
		},
	}
}

func loadReminder(ctx context.Context, a *app, rawID string) (*models.Reminder, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder id %q: %w", rawID, err)
	}
	reminder, err := a.reminders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder %s: %w", id, err)
	}
	return reminder, nil
}

var weekdayNames = map[string]int{
	"sun": 1, "mon": 2, "tue": 3, "wed": 4, "thu": 5, "fri": 6, "sat": 7,
}

// parseRepeat turns the CLI form (none, hourly, daily, weekly:tue,
// monthly:31) into a recurrence rule.
func parseRepeat(s string) (recurrence.Rule, error) {
	kind, arg, _ := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")

	switch kind {
	case "", "none":
		return recurrence.None(), nil
	case "hourly":
		return recurrence.Hourly(), nil
	case "daily":
		return recurrence.Daily(), nil
	case "weekly":
		if wd, ok := weekdayNames[arg]; ok {
			return recurrence.Weekly(wd), nil
		}
		if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= 7 {
			return recurrence.Weekly(n), nil
		}
		return recurrence.None(), fmt.Errorf("invalid weekday %q (want sun..sat or 1-7)", arg)
	case "monthly":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > 31 {
			return recurrence.None(), fmt.Errorf("invalid day of month %q (want 1-31)", arg)
		}
		return recurrence.Monthly(n), nil
	default:
		return recurrence.None(), fmt.Errorf("invalid repeat %q", s)
	}
}

func formatReminder(r *models.Reminder, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-24q", r.ID, r.Title)

	if r.ScheduledAt != nil {
		fmt.Fprintf(&b, "  at %s", r.ScheduledAt.In(loc).Format(timeLayout))
	}
	fmt.Fprintf(&b, "  [%s]", r.Status)
	if r.IsRecurring() {
		fmt.Fprintf(&b, "  repeats %s", r.Rule)
	}
	if r.SeriesEndAt != nil {
		fmt.Fprintf(&b, "  until %s", r.SeriesEndAt.In(loc).Format(timeLayout))
	}
	if r.Tags != "" {
		fmt.Fprintf(&b, "  #%s", r.Tags)
	}
	return b.String()
}
