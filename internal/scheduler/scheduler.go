package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/tapspeak/internal/progress"
	"github.com/example/tapspeak/pkg/models"
)

// Default window in which due-review reminders may fire
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 20
)

// Notifier receives due-review reminders. Implementations own the delivery
// channel; the engine never triggers UI side effects itself.
type Notifier interface {
	SendReminder(userID string, dueCount int) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	ledger    *progress.Ledger
	notifier  Notifier
}

// New creates a new scheduler instance
func New(ledger *progress.Ledger, notifier Notifier) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	return &Scheduler{
		scheduler: s,
		ledger:    ledger,
		notifier:  notifier,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	// Hourly check for users with reviews due today
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders checks each user's due words and notifies users with
// at least one review pending
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().Hour()

	startHour := DefaultNotificationStartHour
	endHour := DefaultNotificationEndHour

	if startHourStr := os.Getenv("NOTIFICATION_START_HOUR"); startHourStr != "" {
		if h, err := strconv.Atoi(startHourStr); err == nil && h >= 0 && h <= 23 {
			startHour = h
		}
	}

	if endHourStr := os.Getenv("NOTIFICATION_END_HOUR"); endHourStr != "" {
		if h, err := strconv.Atoi(endHourStr); err == nil && h >= 0 && h <= 23 {
			endHour = h
		}
	}

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	users, err := s.ledger.Users()
	if err != nil {
		log.Printf("Failed to list users for reminders: %v", err)
		return
	}

	today := models.Today()
	for _, uid := range users {
		due, err := s.ledger.DueWordIDs(uid, nil, today)
		if err != nil {
			log.Printf("Failed to get due words for user %s: %v", uid, err)
			continue
		}
		if len(due) == 0 {
			continue
		}
		if err := s.notifier.SendReminder(uid, len(due)); err != nil {
			log.Printf("Failed to send reminder to user %s: %v", uid, err)
		}
	}
}
