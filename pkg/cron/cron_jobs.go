package cron

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"rndvx/internal/models"
	"rndvx/internal/services"
	"rndvx/pkg/utils"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the periodic jobs: the hourly meeting reminder sweep and the
// daily recurrence top-up. Runs are single passes with no overlap protection;
// both jobs are idempotent (reminder_sent_at guard, latest-instance anchor).
type Scheduler struct {
	db     *sql.DB
	mailer services.Mailer
	c      *cron.Cron
}

func NewScheduler(db *sql.DB, mailer services.Mailer) *Scheduler {
	return &Scheduler{db: db, mailer: mailer, c: cron.New()}
}

func (s *Scheduler) Start() {
	// Hourly reminder sweep for meetings starting within 24h
	_, err := s.c.AddFunc("0 * * * *", func() {
		if err := s.RunReminderJob(context.Background()); err != nil {
			utils.Logger.Errorf("Reminder job failed: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule reminder job: %v", err)
	}

	// Daily top-up of recurring meeting instances
	_, err = s.c.AddFunc("0 0 * * *", func() {
		if err := s.RunRecurrenceJob(context.Background()); err != nil {
			utils.Logger.Errorf("Recurrence job failed: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule recurrence job: %v", err)
	}

	s.c.Start()
	utils.Logger.Info("Scheduler started (reminders hourly, recurrence top-up daily at midnight)")
}

func (s *Scheduler) Stop() {
	s.c.Stop()
	utils.Logger.Info("Scheduler stopped")
}

// RunReminderJob mails attendees of meetings starting within the next 24 hours
// that have not been reminded yet, then stamps reminder_sent_at.
func (s *Scheduler) RunReminderJob(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	now := time.Now().UTC()
	windowStart := now.Format(models.DateTimeLayout)
	windowEnd := now.Add(24 * time.Hour).Format(models.DateTimeLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, date_time FROM meetings
		WHERE date_time >= ? AND date_time <= ?
		  AND reminder_sent_at IS NULL
		  AND status IN (?, ?)
	`, windowStart, windowEnd, models.MeetingStatusConfirmed, models.MeetingStatusPendingQuorum)
	if err != nil {
		return err
	}
	defer rows.Close()

	type dueMeeting struct {
		id       int
		title    string
		dateTime string
	}
	due := make([]dueMeeting, 0)
	for rows.Next() {
		var m dueMeeting
		if err := rows.Scan(&m.id, &m.title, &m.dateTime); err != nil {
			utils.Logger.Errorf("Failed to scan due meeting: %v", err)
			continue
		}
		due = append(due, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range due {
		dateTime, err := time.Parse(models.DateTimeLayout, m.dateTime)
		if err != nil {
			utils.Logger.Errorf("Failed to parse date for meeting %d: %v", m.id, err)
			continue
		}

		emailRows, err := s.db.QueryContext(ctx, `
			SELECT u.email FROM rsvps r
			JOIN users u ON u.id = r.user_id
			WHERE r.meeting_id = ? AND r.status != ?
		`, m.id, models.RsvpStatusNo)
		if err != nil {
			utils.Logger.Errorf("Failed to fetch attendees for meeting %d: %v", m.id, err)
			continue
		}

		emails := make([]string, 0)
		for emailRows.Next() {
			var email string
			if err := emailRows.Scan(&email); err != nil {
				utils.Logger.Errorf("Failed to scan attendee: %v", err)
				continue
			}
			emails = append(emails, email)
		}
		emailRows.Close()

		var wg sync.WaitGroup
		for _, email := range emails {
			wg.Add(1)
			go func(to string) {
				defer wg.Done()
				if err := s.mailer.SendMeetingReminder(to, m.title, dateTime); err != nil {
					utils.Logger.Errorf("failed to send reminder email to %s: %v", to, err)
				}
			}(email)
		}
		wg.Wait()

		_, err = s.db.ExecContext(ctx, `UPDATE meetings SET reminder_sent_at = ? WHERE id = ?`,
			now.Format(models.DateTimeLayout), m.id)
		if err != nil {
			utils.Logger.Errorf("Failed to stamp reminder for meeting %d: %v", m.id, err)
			continue
		}

		utils.Logger.Infof("Sent reminders for meeting %d to %d attendees", m.id, len(emails))
	}

	return nil
}

// RunRecurrenceJob generates the next batch for recurring parents whose latest
// instance falls within the next 7 days.
func (s *Scheduler) RunRecurrenceJob(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organizer_id, date_time FROM meetings
		WHERE recurrence != ? AND parent_meeting_id IS NULL
	`, models.RecurrenceNone)
	if err != nil {
		return err
	}
	defer rows.Close()

	type parent struct {
		id          int
		organizerID int
		dateTime    string
	}
	parents := make([]parent, 0)
	for rows.Next() {
		var p parent
		if err := rows.Scan(&p.id, &p.organizerID, &p.dateTime); err != nil {
			utils.Logger.Errorf("Failed to scan recurring parent: %v", err)
			continue
		}
		parents = append(parents, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	horizon := time.Now().UTC().Add(7 * 24 * time.Hour).Format(models.DateTimeLayout)
	generator := &services.RecurrenceService{DB: s.db}

	for _, p := range parents {
		latest := p.dateTime
		err := s.db.QueryRowContext(ctx, `
			SELECT date_time FROM meetings WHERE parent_meeting_id = ? ORDER BY date_time DESC LIMIT 1
		`, p.id).Scan(&latest)
		if err != nil && err != sql.ErrNoRows {
			utils.Logger.Errorf("Failed to find latest instance for meeting %d: %v", p.id, err)
			continue
		}

		if latest > horizon {
			continue
		}

		if _, err := generator.GenerateInstances(ctx, p.id, p.organizerID, 4); err != nil {
			utils.Logger.Errorf("Failed to generate instances for meeting %d: %v", p.id, err)
			continue
		}
		utils.Logger.Infof("Generated instances for recurring meeting %d", p.id)
	}

	return nil
}
