package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/versebot/pkg/models"
)

// DefaultReminderHour is when the daily due-count reminder fires (local time)
const DefaultReminderHour = 9

// Notifier delivers the daily reminder. The transport (push, chat, terminal)
// lives outside this core.
type Notifier interface {
	SendDueReminder(summary models.DueSummary) error
}

// SummarySource provides the dashboard due counts
type SummarySource interface {
	DueSummary(ctx context.Context, now time.Time) (models.DueSummary, error)
}

// Scheduler manages the recurring reminder job
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	summary   SummarySource
}

// New creates a new scheduler instance
func New(notifier Notifier, summary SummarySource) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		notifier:  notifier,
		summary:   summary,
	}
}

// Start schedules the daily reminder and begins running in the background.
// REMINDER_HOUR overrides the default send time.
func (s *Scheduler) Start() error {
	hour := DefaultReminderHour
	if hourStr := os.Getenv("REMINDER_HOUR"); hourStr != "" {
		if h, err := strconv.Atoi(hourStr); err == nil && h >= 0 && h <= 23 {
			hour = h
		}
	}

	_, err := s.scheduler.Every(1).Day().At(fmt.Sprintf("%02d:00", hour)).Do(s.sendReminder)
	if err != nil {
		return fmt.Errorf("failed to schedule daily reminder: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sendReminder() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summary, err := s.summary.DueSummary(ctx, time.Now())
	if err != nil {
		log.Printf("scheduler: failed to get due summary: %v", err)
		return
	}
	if summary.Due == 0 {
		return
	}
	if err := s.notifier.SendDueReminder(summary); err != nil {
		log.Printf("scheduler: failed to send reminder: %v", err)
	}
}
