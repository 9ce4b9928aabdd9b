package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/shared/jobs"
	"github.com/xpch/platform/shared/mail"
	"github.com/xpch/platform/shared/models"
)

// reminder is a pending kick-off mail for one match.
type reminder struct {
	entry cron.EntryID
	email string
}

func reminderJobName(matchID string) string {
	return "match-reminder-" + matchID
}

// scheduleReminder queues the kick-off mail for match. Matches that start in
// the past, or have no one to notify, get no reminder.
func (s *SportsCommandService) scheduleReminder(match *models.Match, email string) {
	if email == "" {
		return
	}
	entry := log.WithFields(log.Fields{"match_id": match.ID, "at": match.StartTime})

	// Held across ScheduleOnce so a job that fires at once still finds its entry.
	s.mu.Lock()
	defer s.mu.Unlock()

	matchID := match.ID
	id, err := s.scheduler.ScheduleOnce(reminderJobName(matchID), match.StartTime, func(ctx context.Context) error {
		s.forgetReminder(matchID)
		return s.SendMatchReminder(ctx, matchID, email)
	})
	if errors.Is(err, jobs.ErrInPast) {
		entry.Info("match already started; no reminder scheduled")
		return
	}
	if err != nil {
		entry.WithError(err).Error("failed to schedule match reminder")
		return
	}
	s.reminders[matchID] = reminder{entry: id, email: email}
}

// rescheduleReminder moves the reminder to the match's new start time. A
// match with nothing pending, say one first set in the past, gets a fresh
// reminder for its creator.
func (s *SportsCommandService) rescheduleReminder(match *models.Match) {
	email := match.CreatorEmail
	if r, ok := s.forgetReminder(match.ID); ok {
		s.scheduler.Cancel(r.entry)
		email = r.email
	}
	s.scheduleReminder(match, email)
}

func (s *SportsCommandService) forgetReminder(matchID string) (reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[matchID]
	delete(s.reminders, matchID)
	return r, ok
}

// PendingReminders reports how many matches still have a reminder queued.
func (s *SportsCommandService) PendingReminders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reminders)
}

// SendMatchReminder mails email that match is about to start.
func (s *SportsCommandService) SendMatchReminder(ctx context.Context, matchID, email string) error {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("reminder for match %s: %w", matchID, mapStoreError(err))
	}
	home, err := s.teams.GetByID(ctx, match.HomeTeam)
	if err != nil {
		return fmt.Errorf("reminder for match %s: %w", matchID, mapStoreError(err))
	}
	away, err := s.teams.GetByID(ctx, match.AwayTeam)
	if err != nil {
		return fmt.Errorf("reminder for match %s: %w", matchID, mapStoreError(err))
	}
	country, err := s.countries.GetByID(ctx, match.CountryID)
	if err != nil {
		return fmt.Errorf("reminder for match %s: %w", matchID, mapStoreError(err))
	}

	body := fmt.Sprintf(
		"A new match between %s and %s is scheduled to start by %s today in %s at the %s stadium.",
		home.Name, away.Name, match.StartTime.Format("03:04:05 PM"), country.Name, match.Stadium,
	)
	err = s.mailer.Send(ctx, mail.Message{
		To:      email,
		Subject: "Match Reminder",
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to send match reminder: %w", err)
	}
	log.WithFields(log.Fields{"match_id": matchID, "to": email}).Info("sent match reminder")
	return nil
}
